package handlers

import (
	"context"
	"io"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/query"
	"github.com/videotube/backend/internal/storage"
)

// AccountStore captures the persistence operations required by the account
// handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.Account, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url, key string) error
	UpdateCover(ctx context.Context, id, url, key string) error
	AddToWatchHistory(ctx context.Context, accountID, videoID string) error
}

// SessionManager controls the credential lifecycle for accounts.
type SessionManager interface {
	Login(ctx context.Context, accountID string) (models.TokenPair, error)
	Rotate(ctx context.Context, presented string) (models.TokenPair, error)
	Revoke(ctx context.Context, accountID string) error
}

// VideoStore captures persistence for video workflows.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	UpdateDetails(ctx context.Context, id, title, description, thumbnailURL, thumbnailKey string) error
	SetPublished(ctx context.Context, id string, published bool) error
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// CommentStore captures persistence for comment workflows.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) error
	Delete(ctx context.Context, id string) error
}

// LikeStore toggles like membership for a target entity.
type LikeStore interface {
	Toggle(ctx context.Context, likedBy string, target models.LikeTarget, targetID string) (bool, error)
}

// SubscriptionStore toggles subscription membership between accounts.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// PlaylistStore captures persistence for playlist workflows.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	UpdateDetails(ctx context.Context, id, name, description string) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// Aggregator runs the relational view pipelines backing read endpoints.
type Aggregator interface {
	VideoByID(ctx context.Context, videoID, viewerID string) (query.VideoDetailView, error)
	Videos(ctx context.Context, filter query.VideoFilter, page query.PageRequest) (query.Page[query.VideoListItem], error)
	ChannelProfile(ctx context.Context, username, viewerID string) (query.ChannelProfileView, error)
	Subscribers(ctx context.Context, channelID string, page query.PageRequest) (query.Page[query.OwnerSummary], error)
	SubscribedChannels(ctx context.Context, subscriberID string, page query.PageRequest) (query.Page[query.OwnerSummary], error)
	ChannelStats(ctx context.Context, channelID string) (query.ChannelStatsView, error)
	TweetsByOwner(ctx context.Context, ownerID, viewerID string, page query.PageRequest) (query.Page[query.TweetView], error)
	CommentsByVideo(ctx context.Context, videoID, viewerID string, page query.PageRequest) (query.Page[query.CommentView], error)
	PlaylistByID(ctx context.Context, playlistID string) (query.PlaylistView, error)
	PlaylistsByOwner(ctx context.Context, ownerID string, page query.PageRequest) (query.Page[query.PlaylistListItem], error)
	WatchHistory(ctx context.Context, accountID string, page query.PageRequest) (query.Page[query.WatchHistoryItem], error)
}

// BlobStore saves and removes uploaded media objects.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader) (storage.Object, error)
	Delete(ctx context.Context, key string) error
}
