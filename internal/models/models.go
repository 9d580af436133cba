package models

import "time"

// Account represents a registered channel owner on the platform.
// PasswordHash and RefreshToken never leave the persistence layer.
type Account struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	AvatarURL    string
	AvatarKey    string
	CoverURL     string
	CoverKey     string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Video is an uploaded media entry. The blob store holds the actual files;
// the keys allow best-effort cleanup when the video is replaced or deleted.
type Video struct {
	ID           string
	OwnerID      string
	VideoURL     string
	VideoKey     string
	ThumbnailURL string
	ThumbnailKey string
	Title        string
	Description  string
	Duration     float64
	Views        int64
	Published    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment is attached to exactly one video.
type Comment struct {
	ID        string
	VideoID   string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short standalone post by an account.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlist groups an ordered set of videos owned by a single account.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy implements the ownership predicate for videos.
func (v Video) OwnedBy() string { return v.OwnerID }

// OwnedBy implements the ownership predicate for comments.
func (c Comment) OwnedBy() string { return c.OwnerID }

// OwnedBy implements the ownership predicate for tweets.
func (t Tweet) OwnedBy() string { return t.OwnerID }

// OwnedBy implements the ownership predicate for playlists.
func (p Playlist) OwnedBy() string { return p.OwnerID }

// LikeTarget names the kind of entity a like points at.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

// Like records that an account liked exactly one target entity.
// At most one like may exist per (liker, target) pair.
type Like struct {
	ID        string
	LikedBy   string
	Target    LikeTarget
	TargetID  string
	CreatedAt time.Time
}

// Subscription records that one account follows another's channel.
// At most one may exist per (subscriber, channel) pair, and an account
// can never subscribe to itself.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// TokenPair groups the bearer credentials issued to authenticated accounts.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
