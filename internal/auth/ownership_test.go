package auth

import (
	"testing"

	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/models"
)

func TestAssertOwner(t *testing.T) {
	video := models.Video{ID: "v1", OwnerID: "account-1"}

	if err := AssertOwner(video, Identity{ID: "account-1"}); err != nil {
		t.Fatalf("expected owner to pass, got %v", err)
	}

	if err := AssertOwner(video, Identity{}); errs.CodeOf(err) != errs.Unauthorized {
		t.Fatalf("expected unauthorized for anonymous actor, got %v", err)
	}

	if err := AssertOwner(video, Identity{ID: "account-2"}); errs.CodeOf(err) != errs.Forbidden {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}
