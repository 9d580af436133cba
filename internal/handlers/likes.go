package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
)

// LikeHandler implements the like toggles. Toggling twice lands back where it
// started; at most one like row ever exists per account and target.
type LikeHandler struct {
	Likes LikeStore
}

type likeResponse struct {
	Liked bool `json:"liked"`
}

// ToggleVideo handles POST /api/v1/likes/video/{videoId}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeVideo, r.PathValue("videoId"))
}

// ToggleComment handles POST /api/v1/likes/comment/{commentId}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeComment, r.PathValue("commentId"))
}

// ToggleTweet handles POST /api/v1/likes/tweet/{tweetId}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTweet, r.PathValue("tweetId"))
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, target models.LikeTarget, targetID string) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	liked, err := h.Likes.Toggle(ctx, identity.ID, target, targetID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, likeResponse{Liked: liked})
}
