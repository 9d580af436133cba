package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/db"
)

// ErrSelfSubscription indicates an account tried to subscribe to itself.
var ErrSelfSubscription = errors.New("cannot subscribe to own channel")

// SubscriptionRepository toggles channel subscriptions. A unique constraint on
// (subscriber_id, channel_id) keeps at most one record per pair.
type SubscriptionRepository interface {
	// Toggle unsubscribes when a subscription exists and subscribes otherwise.
	// It returns whether the subscriber follows the channel afterwards.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Toggle flips the subscription state of subscriber towards channel.
func (r *PostgresSubscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscription
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
    `, uuid.NewString(), subscriberID, channelID, time.Now().UTC())
	if err != nil {
		translated := translateConstraint(err)
		if errors.Is(translated, ErrConflict) || errors.Is(translated, ErrNotFound) {
			return false, translated
		}
		return false, fmt.Errorf("insert subscription: %w", err)
	}
	return true, nil
}
