package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/models"
)

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore
	Views     Aggregator
	NowFunc   func() time.Time
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type playlistPayload struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func publicPlaylist(p models.Playlist) playlistPayload {
	return playlistPayload{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "name is required"))
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     identity.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, publicPlaylist(playlist))
}

// Get handles GET /api/v1/playlists/{playlistId}. Only published member
// videos appear in the view.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	view, err := h.Views.PlaylistByID(ctx, r.PathValue("playlistId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, view)
}

// ListByUser handles GET /api/v1/users/{userId}/playlists.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := h.Views.PlaylistsByOwner(ctx, r.PathValue("userId"), pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Update handles PATCH /api/v1/playlists/{playlistId}; owner only.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := r.PathValue("playlistId")

	playlist, err := h.owned(w, r, playlistID)
	if err != nil {
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" {
		name = playlist.Name
	}
	if description == "" {
		description = playlist.Description
	}

	if err := h.Playlists.UpdateDetails(ctx, playlistID, name, description); err != nil {
		respondError(ctx, w, err)
		return
	}
	playlist.Name, playlist.Description = name, description
	respondJSON(ctx, w, http.StatusOK, publicPlaylist(playlist))
}

// Delete handles DELETE /api/v1/playlists/{playlistId}; owner only.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := r.PathValue("playlistId")

	if _, err := h.owned(w, r, playlistID); err != nil {
		return
	}
	if err := h.Playlists.Delete(ctx, playlistID); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "playlist deleted"})
}

// AddVideo handles POST /api/v1/playlists/{playlistId}/videos/{videoId};
// owner only. Adding the same video twice is a no-op.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := r.PathValue("playlistId")
	videoID := r.PathValue("videoId")

	if _, err := h.owned(w, r, playlistID); err != nil {
		return
	}
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Playlists.AddVideo(ctx, playlistID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "video added to playlist"})
}

// RemoveVideo handles DELETE /api/v1/playlists/{playlistId}/videos/{videoId};
// owner only.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlistID := r.PathValue("playlistId")

	if _, err := h.owned(w, r, playlistID); err != nil {
		return
	}
	if err := h.Playlists.RemoveVideo(ctx, playlistID, r.PathValue("videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "video removed from playlist"})
}

// owned loads the playlist and enforces ownership, writing the failure
// response itself.
func (h PlaylistHandler) owned(w http.ResponseWriter, r *http.Request, playlistID string) (models.Playlist, error) {
	ctx := r.Context()

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondError(ctx, w, err)
		return models.Playlist{}, err
	}
	if err := auth.AssertOwner(playlist, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return models.Playlist{}, err
	}
	return playlist, nil
}
