package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
)

// SubscriptionHandler implements channel subscription endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Views         Aggregator
}

type subscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}

// Toggle handles POST /api/v1/subscriptions/{channelId}. Subscribing to your
// own channel is rejected; toggling twice removes the subscription again.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	subscribed, err := h.Subscriptions.Toggle(ctx, identity.ID, r.PathValue("channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, subscriptionResponse{Subscribed: subscribed})
}

// Subscribers handles GET /api/v1/channels/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := h.Views.Subscribers(ctx, r.PathValue("channelId"), pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// SubscribedChannels handles GET /api/v1/users/{userId}/subscriptions.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	page, err := h.Views.SubscribedChannels(ctx, r.PathValue("userId"), pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}
