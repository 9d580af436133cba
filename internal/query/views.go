package query

import "time"

// The view models below are the only shapes the aggregation pipelines emit.
// They carry public-safe account fields exclusively; password digests and
// refresh tokens never reach a join projection.

// OwnerSummary is the public projection of an owning account.
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// ChannelSummary extends OwnerSummary with viewer-relative subscription facts.
type ChannelSummary struct {
	OwnerSummary
	SubscribersCount int64 `json:"subscribersCount"`
	IsSubscribed     bool  `json:"isSubscribed"`
}

// VideoDetailView is the denormalized read-model for a single video.
type VideoDetailView struct {
	ID          string         `json:"id"`
	VideoURL    string         `json:"videoUrl"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Duration    float64        `json:"duration"`
	Views       int64          `json:"views"`
	CreatedAt   time.Time      `json:"createdAt"`
	Owner       ChannelSummary `json:"owner"`
	LikesCount  int64          `json:"likesCount"`
	IsLiked     bool           `json:"isLiked"`
}

// VideoListItem is one row of a video listing.
type VideoListItem struct {
	ID           string       `json:"id"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	CreatedAt    time.Time    `json:"createdAt"`
	Published    bool         `json:"published"`
	Owner        OwnerSummary `json:"owner"`
}

// ChannelProfileView is the read-model for a user's channel page.
type ChannelProfileView struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	AvatarURL         string    `json:"avatarUrl"`
	CoverURL          string    `json:"coverUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	SubscribersCount  int64     `json:"subscribersCount"`
	SubscribedToCount int64     `json:"subscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
}

// TweetView is one tweet annotated with like facts.
type TweetView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// CommentView is one comment annotated with like facts.
type CommentView struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	CreatedAt  time.Time    `json:"createdAt"`
	Owner      OwnerSummary `json:"owner"`
	LikesCount int64        `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
}

// PlaylistVideoItem is a published video embedded in a playlist view.
type PlaylistVideoItem struct {
	ID           string       `json:"id"`
	VideoURL     string       `json:"videoUrl"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	CreatedAt    time.Time    `json:"createdAt"`
	Owner        OwnerSummary `json:"owner"`
}

// PlaylistView is the full read-model for a single playlist.
type PlaylistView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Owner       OwnerSummary        `json:"owner"`
	TotalVideos int64               `json:"totalVideos"`
	TotalViews  int64               `json:"totalViews"`
	Videos      []PlaylistVideoItem `json:"videos"`
}

// PlaylistListItem is one row of an owner's playlist listing.
type PlaylistListItem struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	Owner          OwnerSummary `json:"owner"`
	TotalVideos    int64        `json:"totalVideos"`
	TotalViews     int64        `json:"totalViews"`
	FirstThumbnail string       `json:"firstThumbnail"`
}

// WatchHistoryItem is one video reference from an account's watch history.
type WatchHistoryItem struct {
	VideoID      string       `json:"videoId"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	Title        string       `json:"title"`
	Duration     float64      `json:"duration"`
	Views        int64        `json:"views"`
	WatchedAt    time.Time    `json:"watchedAt"`
	Owner        OwnerSummary `json:"owner"`
}

// ChannelStatsView aggregates totals for a channel dashboard.
type ChannelStatsView struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}
