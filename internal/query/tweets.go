package query

import (
	"context"
	"fmt"

	"github.com/videotube/backend/internal/logging"
)

// TweetsByOwner runs the tweet-list pipeline for one author: owner join, like
// facts, viewer-relative liked flag, newest first.
func (s *Service) TweetsByOwner(ctx context.Context, ownerID, viewerID string, page PageRequest) (Page[TweetView], error) {
	if err := ValidateID(ownerID, "owner"); err != nil {
		return Page[TweetView]{}, err
	}
	page = page.Normalize()

	ctx, op := logging.StartOp(ctx, "query.tweets_by_owner")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return Page[TweetView]{}, err
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM tweets t WHERE t.owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return Page[TweetView]{}, fmt.Errorf("count tweets: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT t.id, t.content, t.created_at,
               a.id, a.username, a.full_name, a.avatar_url,
               (SELECT COUNT(*) FROM likes l WHERE l.tweet_id = t.id),
               EXISTS (SELECT 1 FROM likes l
                       WHERE l.tweet_id = t.id AND l.liked_by = NULLIF($2, ''))
        FROM tweets t
        JOIN accounts a ON a.id = t.owner_id
        WHERE t.owner_id = $1
        ORDER BY t.created_at DESC
        LIMIT $3 OFFSET $4
    `, ownerID, viewerID, page.Limit, page.Offset())
	if err != nil {
		return Page[TweetView]{}, fmt.Errorf("list tweets: %w", err)
	}
	defer rows.Close()

	var items []TweetView
	for rows.Next() {
		var item TweetView
		if err := rows.Scan(&item.ID, &item.Content, &item.CreatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL,
			&item.LikesCount, &item.IsLiked); err != nil {
			return Page[TweetView]{}, fmt.Errorf("scan tweet row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[TweetView]{}, fmt.Errorf("iterate tweets: %w", err)
	}

	return NewPage(items, total, page), nil
}
