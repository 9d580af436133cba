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

// TweetHandler implements short-post endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	Views   Aggregator
	NowFunc func() time.Time
}

type tweetRequest struct {
	Content string `json:"content"`
}

type tweetPayload struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func publicTweet(t models.Tweet) tweetPayload {
	return tweetPayload{ID: t.ID, OwnerID: t.OwnerID, Content: t.Content, CreatedAt: t.CreatedAt}
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "content is required"))
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   identity.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, publicTweet(tweet))
}

// ListByUser handles GET /api/v1/users/{userId}/tweets.
func (h TweetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := h.Views.TweetsByOwner(ctx, r.PathValue("userId"), auth.IdentityFromContext(ctx).ID, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Update handles PATCH /api/v1/tweets/{tweetId}; owner only.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID := r.PathValue("tweetId")

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(tweet, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "content is required"))
		return
	}

	if err := h.Tweets.UpdateContent(ctx, tweetID, content); err != nil {
		respondError(ctx, w, err)
		return
	}
	tweet.Content = content
	respondJSON(ctx, w, http.StatusOK, publicTweet(tweet))
}

// Delete handles DELETE /api/v1/tweets/{tweetId}; owner only.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweetID := r.PathValue("tweetId")

	tweet, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(tweet, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "tweet deleted"})
}
