package query

import (
	"context"
	"fmt"

	"github.com/videotube/backend/internal/logging"
)

// WatchHistory runs the watch-history pipeline for an account: history entries
// joined with the referenced video and its owner, most recently watched first.
// History entries whose video has since been deleted drop out of the join.
func (s *Service) WatchHistory(ctx context.Context, accountID string, page PageRequest) (Page[WatchHistoryItem], error) {
	if err := ValidateID(accountID, "account"); err != nil {
		return Page[WatchHistoryItem]{}, err
	}
	page = page.Normalize()

	ctx, op := logging.StartOp(ctx, "query.watch_history")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return Page[WatchHistoryItem]{}, err
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        WHERE wh.account_id = $1
    `, accountID).Scan(&total); err != nil {
		return Page[WatchHistoryItem]{}, fmt.Errorf("count watch history: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.thumbnail_url, v.title, v.duration_seconds, v.views, wh.watched_at,
               a.id, a.username, a.full_name, a.avatar_url
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN accounts a ON a.id = v.owner_id
        WHERE wh.account_id = $1
        ORDER BY wh.watched_at DESC
        LIMIT $2 OFFSET $3
    `, accountID, page.Limit, page.Offset())
	if err != nil {
		return Page[WatchHistoryItem]{}, fmt.Errorf("list watch history: %w", err)
	}
	defer rows.Close()

	var items []WatchHistoryItem
	for rows.Next() {
		var item WatchHistoryItem
		if err := rows.Scan(&item.VideoID, &item.ThumbnailURL, &item.Title, &item.Duration,
			&item.Views, &item.WatchedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL); err != nil {
			return Page[WatchHistoryItem]{}, fmt.Errorf("scan history row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[WatchHistoryItem]{}, fmt.Errorf("iterate watch history: %w", err)
	}

	return NewPage(items, total, page), nil
}
