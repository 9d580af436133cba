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

// CommentHandler implements comment endpoints scoped to a video.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	Views    Aggregator
	NowFunc  func() time.Time
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentPayload struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func publicComment(c models.Comment) commentPayload {
	return commentPayload{
		ID:        c.ID,
		VideoID:   c.VideoID,
		OwnerID:   c.OwnerID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// List handles GET /api/v1/videos/{videoId}/comments.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := h.Views.CommentsByVideo(ctx, r.PathValue("videoId"), auth.IdentityFromContext(ctx).ID, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Create handles POST /api/v1/videos/{videoId}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)
	videoID := r.PathValue("videoId")

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "content is required"))
		return
	}

	// Commenting on a missing video must 404, not silently create.
	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   identity.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Comments.Create(ctx, comment); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, publicComment(comment))
}

// Update handles PATCH /api/v1/comments/{commentId}; owner only.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID := r.PathValue("commentId")

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(comment, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "content is required"))
		return
	}

	if err := h.Comments.UpdateContent(ctx, commentID, content); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment.Content = content
	respondJSON(ctx, w, http.StatusOK, publicComment(comment))
}

// Delete handles DELETE /api/v1/comments/{commentId}; owner only.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	commentID := r.PathValue("commentId")

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(comment, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
