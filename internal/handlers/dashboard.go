package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/query"
)

// DashboardHandler serves the signed-in owner's channel dashboard.
type DashboardHandler struct {
	Views Aggregator
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	stats, err := h.Views.ChannelStats(ctx, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, stats)
}

// Videos handles GET /api/v1/dashboard/videos. Unlike the public listing,
// the owner also sees their unpublished uploads.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	filter := query.VideoFilter{
		OwnerID:            identity.ID,
		IncludeUnpublished: true,
	}
	page, err := h.Views.Videos(ctx, filter, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}
