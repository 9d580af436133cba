package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/logging"
)

// CommentsByVideo runs the comment-thread pipeline for one video: owner join,
// like facts, viewer-relative liked flag, newest first. A missing video yields
// ErrNotFound rather than an empty page, so callers can distinguish "no
// comments yet" from "no such video".
func (s *Service) CommentsByVideo(ctx context.Context, videoID, viewerID string, page PageRequest) (Page[CommentView], error) {
	if err := ValidateID(videoID, "video"); err != nil {
		return Page[CommentView]{}, err
	}
	page = page.Normalize()

	ctx, op := logging.StartOp(ctx, "query.comments_by_video")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return Page[CommentView]{}, err
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM videos WHERE id = $1)`, videoID,
	).Scan(&exists); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Page[CommentView]{}, fmt.Errorf("check video exists: %w", err)
	}
	if !exists {
		return Page[CommentView]{}, ErrNotFound
	}

	var total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM comments c WHERE c.video_id = $1`, videoID,
	).Scan(&total); err != nil {
		return Page[CommentView]{}, fmt.Errorf("count comments: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.content, c.created_at,
               a.id, a.username, a.full_name, a.avatar_url,
               (SELECT COUNT(*) FROM likes l WHERE l.comment_id = c.id),
               EXISTS (SELECT 1 FROM likes l
                       WHERE l.comment_id = c.id AND l.liked_by = NULLIF($2, ''))
        FROM comments c
        JOIN accounts a ON a.id = c.owner_id
        WHERE c.video_id = $1
        ORDER BY c.created_at DESC
        LIMIT $3 OFFSET $4
    `, videoID, viewerID, page.Limit, page.Offset())
	if err != nil {
		return Page[CommentView]{}, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []CommentView
	for rows.Next() {
		var item CommentView
		if err := rows.Scan(&item.ID, &item.Content, &item.CreatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL,
			&item.LikesCount, &item.IsLiked); err != nil {
			return Page[CommentView]{}, fmt.Errorf("scan comment row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[CommentView]{}, fmt.Errorf("iterate comments: %w", err)
	}

	return NewPage(items, total, page), nil
}
