package auth

import "github.com/videotube/backend/internal/errs"

// Owned is any resource with an immutable owning account.
type Owned interface {
	OwnedBy() string
}

// AssertOwner fails with a Forbidden classification unless the acting identity
// owns the resource. The comparison uses the resource's canonical owner field
// only; there is no administrator override.
func AssertOwner(resource Owned, actor Identity) error {
	if actor.Anonymous() {
		return errs.E(errs.Unauthorized, "authentication required")
	}
	if resource.OwnedBy() != actor.ID {
		return errs.E(errs.Forbidden, "you do not own this resource")
	}
	return nil
}
