package auth

import "context"

// Identity is the resolved acting account for one request. It is set once by
// the guard before the handler runs and must be treated as read-only after.
type Identity struct {
	ID       string
	Username string
}

// Anonymous reports whether no authenticated account backs this identity.
func (id Identity) Anonymous() bool {
	return id.ID == ""
}

type identityKey struct{}

// WithIdentity stores the resolved identity on the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext retrieves the identity set by the guard. The zero value
// is an anonymous viewer.
func IdentityFromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	if id, ok := ctx.Value(identityKey{}).(Identity); ok {
		return id
	}
	return Identity{}
}
