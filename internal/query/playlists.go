package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/logging"
)

// PlaylistByID runs the playlist-detail pipeline: the playlist row with its
// owner, plus every published member video joined with its own owner, in
// playlist order. Totals are computed over the published members only.
func (s *Service) PlaylistByID(ctx context.Context, playlistID string) (PlaylistView, error) {
	if err := ValidateID(playlistID, "playlist"); err != nil {
		return PlaylistView{}, err
	}

	ctx, op := logging.StartOp(ctx, "query.playlist_by_id")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return PlaylistView{}, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
               a.id, a.username, a.full_name, a.avatar_url
        FROM playlists p
        JOIN accounts a ON a.id = p.owner_id
        WHERE p.id = $1
    `, playlistID)

	var view PlaylistView
	if err := row.Scan(&view.ID, &view.Name, &view.Description, &view.CreatedAt, &view.UpdatedAt,
		&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PlaylistView{}, ErrNotFound
		}
		return PlaylistView{}, fmt.Errorf("playlist pipeline: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.video_url, v.thumbnail_url, v.title, v.description,
               v.duration_seconds, v.views, v.created_at,
               a.id, a.username, a.full_name, a.avatar_url
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id AND v.published
        JOIN accounts a ON a.id = v.owner_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.position
    `, playlistID)
	if err != nil {
		return PlaylistView{}, fmt.Errorf("playlist videos pipeline: %w", err)
	}
	defer rows.Close()

	view.Videos = []PlaylistVideoItem{}
	for rows.Next() {
		var item PlaylistVideoItem
		if err := rows.Scan(&item.ID, &item.VideoURL, &item.ThumbnailURL, &item.Title, &item.Description,
			&item.Duration, &item.Views, &item.CreatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL); err != nil {
			return PlaylistView{}, fmt.Errorf("scan playlist video: %w", err)
		}
		view.Videos = append(view.Videos, item)
		view.TotalVideos++
		view.TotalViews += item.Views
	}
	if err := rows.Err(); err != nil {
		return PlaylistView{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return view, nil
}

// PlaylistsByOwner runs the playlist-list pipeline for one account: per
// playlist, the published-member totals and the first member's thumbnail.
func (s *Service) PlaylistsByOwner(ctx context.Context, ownerID string, page PageRequest) (Page[PlaylistListItem], error) {
	if err := ValidateID(ownerID, "owner"); err != nil {
		return Page[PlaylistListItem]{}, err
	}
	page = page.Normalize()

	ctx, op := logging.StartOp(ctx, "query.playlists_by_owner")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return Page[PlaylistListItem]{}, err
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM playlists p WHERE p.owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return Page[PlaylistListItem]{}, fmt.Errorf("count playlists: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
               a.id, a.username, a.full_name, a.avatar_url,
               (SELECT COUNT(*) FROM playlist_videos pv
                JOIN videos v ON v.id = pv.video_id AND v.published
                WHERE pv.playlist_id = p.id),
               (SELECT COALESCE(SUM(v.views), 0) FROM playlist_videos pv
                JOIN videos v ON v.id = pv.video_id AND v.published
                WHERE pv.playlist_id = p.id),
               COALESCE((SELECT v.thumbnail_url FROM playlist_videos pv
                         JOIN videos v ON v.id = pv.video_id AND v.published
                         WHERE pv.playlist_id = p.id
                         ORDER BY pv.position LIMIT 1), '')
        FROM playlists p
        JOIN accounts a ON a.id = p.owner_id
        WHERE p.owner_id = $1
        ORDER BY p.created_at DESC
        LIMIT $2 OFFSET $3
    `, ownerID, page.Limit, page.Offset())
	if err != nil {
		return Page[PlaylistListItem]{}, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var items []PlaylistListItem
	for rows.Next() {
		var item PlaylistListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.UpdatedAt,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL,
			&item.TotalVideos, &item.TotalViews, &item.FirstThumbnail); err != nil {
			return Page[PlaylistListItem]{}, fmt.Errorf("scan playlist row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[PlaylistListItem]{}, fmt.Errorf("iterate playlists: %w", err)
	}

	return NewPage(items, total, page), nil
}
