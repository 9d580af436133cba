package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/models"
)

// AccessTokenCookie is the cookie carrying the access token. Tokens are
// delivered both as httpOnly cookies and in the JSON body so non-browser
// clients can use the Authorization header instead.
const AccessTokenCookie = "accessToken"

// AccountResolver looks up the account referenced by a verified token.
type AccountResolver interface {
	FindByID(ctx context.Context, id string) (models.Account, error)
}

// Guard authenticates inbound requests. It never trusts client-supplied
// identity outside the verified token.
type Guard struct {
	issuer   *TokenIssuer
	accounts AccountResolver
}

// NewGuard constructs a Guard.
func NewGuard(issuer *TokenIssuer, accounts AccountResolver) *Guard {
	if issuer == nil || accounts == nil {
		panic("auth: guard requires an issuer and an account resolver")
	}
	return &Guard{issuer: issuer, accounts: accounts}
}

// Authenticate extracts the presented access token, verifies it, and resolves
// the acting identity. It fails with an Unauthorized classification when no
// token is presented, the token is invalid or expired, or the referenced
// account no longer exists.
func (g *Guard) Authenticate(r *http.Request) (Identity, error) {
	token := bearerToken(r)
	if token == "" {
		return Identity{}, errs.E(errs.Unauthorized, "missing access token")
	}

	claims, err := g.issuer.Verify(token, AccessToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			return Identity{}, errs.Wrap(errs.Unauthorized, "access token expired", err)
		default:
			return Identity{}, errs.Wrap(errs.Unauthorized, "invalid access token", err)
		}
	}

	account, err := g.accounts.FindByID(r.Context(), claims.AccountID())
	if err != nil {
		return Identity{}, errs.Wrap(errs.Unauthorized, "unknown account", err)
	}

	return Identity{ID: account.ID, Username: account.Username}, nil
}

// Require rejects unauthenticated requests with the standard error envelope
// and otherwise runs next with the identity on the request context.
func (g *Guard) Require(reject func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := g.Authenticate(r)
			if err != nil {
				reject(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// Optional resolves the identity when a valid token is presented and treats
// every other request as anonymous. Viewer-relative fields then resolve to
// false instead of failing the read.
func (g *Guard) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity, err := g.Authenticate(r); err == nil {
				r = r.WithContext(WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
