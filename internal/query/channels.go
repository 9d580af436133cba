package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/logging"
)

// ChannelProfile runs the user-channel pipeline: the account matched by
// username joined with both directions of the subscription graph, annotated
// with whether the viewer is among the channel's subscribers.
func (s *Service) ChannelProfile(ctx context.Context, username, viewerID string) (ChannelProfileView, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return ChannelProfileView{}, ErrNotFound
	}

	ctx, op := logging.StartOp(ctx, "query.channel_profile")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return ChannelProfileView{}, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT a.id, a.username, a.full_name, a.email, a.avatar_url, a.cover_url, a.created_at,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = a.id),
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = a.id),
               EXISTS (SELECT 1 FROM subscriptions s
                       WHERE s.channel_id = a.id AND s.subscriber_id = NULLIF($2, ''))
        FROM accounts a
        WHERE a.username = $1
    `, username, viewerID)

	var view ChannelProfileView
	if err := row.Scan(&view.ID, &view.Username, &view.FullName, &view.Email,
		&view.AvatarURL, &view.CoverURL, &view.CreatedAt,
		&view.SubscribersCount, &view.SubscribedToCount, &view.IsSubscribed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ChannelProfileView{}, ErrNotFound
		}
		return ChannelProfileView{}, fmt.Errorf("channel profile pipeline: %w", err)
	}
	return view, nil
}

// Subscribers lists the accounts subscribed to a channel, newest first.
func (s *Service) Subscribers(ctx context.Context, channelID string, page PageRequest) (Page[OwnerSummary], error) {
	return s.subscriptionEdge(ctx, channelID, "channel", `s.channel_id = $1`, `a.id = s.subscriber_id`, page)
}

// SubscribedChannels lists the channels an account subscribes to, newest first.
func (s *Service) SubscribedChannels(ctx context.Context, subscriberID string, page PageRequest) (Page[OwnerSummary], error) {
	return s.subscriptionEdge(ctx, subscriberID, "subscriber", `s.subscriber_id = $1`, `a.id = s.channel_id`, page)
}

func (s *Service) subscriptionEdge(ctx context.Context, accountID, kind, where, join string, page PageRequest) (Page[OwnerSummary], error) {
	if err := ValidateID(accountID, kind); err != nil {
		return Page[OwnerSummary]{}, err
	}
	page = page.Normalize()

	ctx, op := logging.StartOp(ctx, "query.subscription_edge")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return Page[OwnerSummary]{}, err
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions s WHERE `+where, accountID,
	).Scan(&total); err != nil {
		return Page[OwnerSummary]{}, fmt.Errorf("count subscriptions: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT a.id, a.username, a.full_name, a.avatar_url
        FROM subscriptions s
        JOIN accounts a ON `+join+`
        WHERE `+where+`
        ORDER BY s.created_at DESC
        LIMIT $2 OFFSET $3
    `, accountID, page.Limit, page.Offset())
	if err != nil {
		return Page[OwnerSummary]{}, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var items []OwnerSummary
	for rows.Next() {
		var item OwnerSummary
		if err := rows.Scan(&item.ID, &item.Username, &item.FullName, &item.AvatarURL); err != nil {
			return Page[OwnerSummary]{}, fmt.Errorf("scan subscription row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[OwnerSummary]{}, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return NewPage(items, total, page), nil
}

// ChannelStats aggregates dashboard totals for one channel.
func (s *Service) ChannelStats(ctx context.Context, channelID string) (ChannelStatsView, error) {
	if err := ValidateID(channelID, "channel"); err != nil {
		return ChannelStatsView{}, err
	}

	ctx, op := logging.StartOp(ctx, "query.channel_stats")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return ChannelStatsView{}, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT (SELECT COUNT(*) FROM videos v WHERE v.owner_id = $1),
               (SELECT COALESCE(SUM(v.views), 0) FROM videos v WHERE v.owner_id = $1),
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = $1),
               (SELECT COUNT(*) FROM likes l
                JOIN videos v ON v.id = l.video_id
                WHERE v.owner_id = $1)
    `, channelID)

	var view ChannelStatsView
	if err := row.Scan(&view.TotalVideos, &view.TotalViews, &view.TotalSubscribers, &view.TotalLikes); err != nil {
		return ChannelStatsView{}, fmt.Errorf("channel stats pipeline: %w", err)
	}
	return view, nil
}
