package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// LikeRepository toggles likes. Partial unique indexes on (liked_by, target)
// guarantee at most one like per pair even under concurrent toggles.
type LikeRepository interface {
	// Toggle removes an existing like for the (liker, target) pair or creates
	// one when none exists. It returns whether the target is liked afterwards.
	Toggle(ctx context.Context, likedBy string, target models.LikeTarget, targetID string) (bool, error)
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle flips the like state for the given target.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, likedBy string, target models.LikeTarget, targetID string) (bool, error) {
	column, err := likeColumn(target)
	if err != nil {
		return false, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx,
		`DELETE FROM likes WHERE liked_by = $1 AND `+column+` = $2`,
		likedBy, targetID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx,
		`INSERT INTO likes (id, liked_by, `+column+`, created_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), likedBy, targetID, time.Now().UTC())
	if err != nil {
		// A concurrent toggle winning the insert race surfaces as a conflict
		// rather than a second like record.
		translated := translateConstraint(err)
		if errors.Is(translated, ErrConflict) || errors.Is(translated, ErrNotFound) {
			return false, translated
		}
		return false, fmt.Errorf("insert like: %w", err)
	}
	return true, nil
}

func likeColumn(target models.LikeTarget) (string, error) {
	switch target {
	case models.LikeVideo:
		return "video_id", nil
	case models.LikeComment:
		return "comment_id", nil
	case models.LikeTweet:
		return "tweet_id", nil
	default:
		return "", fmt.Errorf("unknown like target %q", target)
	}
}
