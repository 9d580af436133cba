package handlers

import (
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/errs"
)

// UserHandler serves channel-facing read endpoints for accounts.
type UserHandler struct {
	Views Aggregator
}

// ChannelProfile handles GET /api/v1/users/{username}/channel. Works for
// anonymous viewers; the isSubscribed flag is then always false.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "username is required"))
		return
	}

	profile, err := h.Views.ChannelProfile(ctx, username, auth.IdentityFromContext(ctx).ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, profile)
}

// WatchHistory handles GET /api/v1/users/history for the signed-in account.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	page, err := h.Views.WatchHistory(ctx, identity.ID, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}
