package handlers

import (
	"net/http"

	"github.com/videotube/backend/internal/auth"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts      AccountStore
	Sessions      SessionManager
	Guard         *auth.Guard
	Videos        VideoStore
	Comments      CommentStore
	Tweets        TweetStore
	Likes         LikeStore
	Subscriptions SubscriptionStore
	Playlists     PlaylistStore
	Views         Aggregator
	Blobs         BlobStore
	AuthLimiter   RateLimiter
	UploadLimiter RateLimiter
	Cookies       CookieConfig
	ExposeTraces  bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	exposeTraces = deps.ExposeTraces

	reject := func(w http.ResponseWriter, r *http.Request, err error) {
		respondError(r.Context(), w, err)
	}
	require := deps.Guard.Require(reject)
	optional := deps.Guard.Optional()

	protected := func(h http.HandlerFunc) http.Handler { return require(h) }
	public := func(h http.HandlerFunc) http.Handler { return optional(h) }

	health := HealthHandler{}
	account := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions, Blobs: deps.Blobs, Cookies: deps.Cookies}
	users := UserHandler{Views: deps.Views}
	videos := VideoHandler{Videos: deps.Videos, Accounts: deps.Accounts, Views: deps.Views, Blobs: deps.Blobs}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos, Views: deps.Views}
	tweets := TweetHandler{Tweets: deps.Tweets, Views: deps.Views}
	likes := LikeHandler{Likes: deps.Likes}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions, Views: deps.Views}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Videos: deps.Videos, Views: deps.Views}
	dashboard := DashboardHandler{Views: deps.Views}

	mux.HandleFunc("GET /healthz", health.Handle)

	// Credential lifecycle. Register and login are rate limited per client IP.
	mux.HandleFunc("POST /api/v1/auth/register", rateLimited(deps.AuthLimiter, "register", account.Register))
	mux.HandleFunc("POST /api/v1/auth/login", rateLimited(deps.AuthLimiter, "login", account.Login))
	mux.HandleFunc("POST /api/v1/auth/refresh", rateLimited(deps.AuthLimiter, "refresh", account.Refresh))
	mux.Handle("POST /api/v1/auth/logout", protected(account.Logout))
	mux.Handle("GET /api/v1/auth/me", protected(account.Me))
	mux.Handle("PATCH /api/v1/auth/me", protected(account.UpdateDetails))
	mux.Handle("POST /api/v1/auth/change-password", protected(account.ChangePassword))
	mux.Handle("PATCH /api/v1/auth/me/avatar", protected(account.UpdateAvatar))
	mux.Handle("PATCH /api/v1/auth/me/cover", protected(account.UpdateCover))

	// Channels and accounts.
	mux.Handle("GET /api/v1/users/{username}/channel", public(users.ChannelProfile))
	mux.Handle("GET /api/v1/users/history", protected(users.WatchHistory))

	// Videos.
	mux.Handle("GET /api/v1/videos", public(videos.List))
	mux.Handle("POST /api/v1/videos", require(rateLimited(deps.UploadLimiter, "upload", videos.Create)))
	mux.Handle("GET /api/v1/videos/{videoId}", public(videos.Detail))
	mux.Handle("PATCH /api/v1/videos/{videoId}", protected(videos.Update))
	mux.Handle("DELETE /api/v1/videos/{videoId}", protected(videos.Delete))
	mux.Handle("PATCH /api/v1/videos/{videoId}/publish", protected(videos.TogglePublish))

	// Comments.
	mux.Handle("GET /api/v1/videos/{videoId}/comments", public(comments.List))
	mux.Handle("POST /api/v1/videos/{videoId}/comments", protected(comments.Create))
	mux.Handle("PATCH /api/v1/comments/{commentId}", protected(comments.Update))
	mux.Handle("DELETE /api/v1/comments/{commentId}", protected(comments.Delete))

	// Tweets.
	mux.Handle("POST /api/v1/tweets", protected(tweets.Create))
	mux.Handle("GET /api/v1/users/{userId}/tweets", public(tweets.ListByUser))
	mux.Handle("PATCH /api/v1/tweets/{tweetId}", protected(tweets.Update))
	mux.Handle("DELETE /api/v1/tweets/{tweetId}", protected(tweets.Delete))

	// Likes.
	mux.Handle("POST /api/v1/likes/video/{videoId}", protected(likes.ToggleVideo))
	mux.Handle("POST /api/v1/likes/comment/{commentId}", protected(likes.ToggleComment))
	mux.Handle("POST /api/v1/likes/tweet/{tweetId}", protected(likes.ToggleTweet))

	// Subscriptions.
	mux.Handle("POST /api/v1/subscriptions/{channelId}", protected(subscriptions.Toggle))
	mux.Handle("GET /api/v1/channels/{channelId}/subscribers", public(subscriptions.Subscribers))
	mux.Handle("GET /api/v1/users/{userId}/subscriptions", public(subscriptions.SubscribedChannels))

	// Playlists.
	mux.Handle("POST /api/v1/playlists", protected(playlists.Create))
	mux.Handle("GET /api/v1/playlists/{playlistId}", public(playlists.Get))
	mux.Handle("GET /api/v1/users/{userId}/playlists", public(playlists.ListByUser))
	mux.Handle("PATCH /api/v1/playlists/{playlistId}", protected(playlists.Update))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}", protected(playlists.Delete))
	mux.Handle("POST /api/v1/playlists/{playlistId}/videos/{videoId}", protected(playlists.AddVideo))
	mux.Handle("DELETE /api/v1/playlists/{playlistId}/videos/{videoId}", protected(playlists.RemoveVideo))

	// Dashboard.
	mux.Handle("GET /api/v1/dashboard/stats", protected(dashboard.Stats))
	mux.Handle("GET /api/v1/dashboard/videos", protected(dashboard.Videos))
}
