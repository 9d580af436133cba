package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/logging"
)

// VideoFilter narrows the video listing pipeline. Zero values mean "no
// constraint"; Search is a case-insensitive substring match over title and
// description. Listings only surface published videos unless
// IncludeUnpublished is set, which the dashboard uses for the owner's own
// channel.
type VideoFilter struct {
	OwnerID            string
	Search             string
	SortBy             string
	SortAsc            bool
	IncludeUnpublished bool
}

// Sortable listing columns. An unknown sort field is rejected before the
// query runs; the default order is newest first.
var videoSortColumns = map[string]string{
	"":          "v.created_at",
	"createdAt": "v.created_at",
	"views":     "v.views",
	"duration":  "v.duration_seconds",
}

// VideoByID runs the video-detail pipeline: the video row joined with its
// owner (public fields plus subscription facts) and its like facts, annotated
// relative to the viewer. An anonymous viewer gets all derived flags false.
func (s *Service) VideoByID(ctx context.Context, videoID, viewerID string) (VideoDetailView, error) {
	if err := ValidateID(videoID, "video"); err != nil {
		return VideoDetailView{}, err
	}

	ctx, op := logging.StartOp(ctx, "query.video_by_id")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return VideoDetailView{}, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT v.id, v.video_url, v.title, v.description, v.duration_seconds, v.views, v.created_at,
               a.id, a.username, a.full_name, a.avatar_url,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = a.id),
               EXISTS (SELECT 1 FROM subscriptions s
                       WHERE s.channel_id = a.id AND s.subscriber_id = NULLIF($2, '')),
               (SELECT COUNT(*) FROM likes l WHERE l.video_id = v.id),
               EXISTS (SELECT 1 FROM likes l
                       WHERE l.video_id = v.id AND l.liked_by = NULLIF($2, ''))
        FROM videos v
        JOIN accounts a ON a.id = v.owner_id
        WHERE v.id = $1
    `, videoID, viewerID)

	var view VideoDetailView
	if err := row.Scan(&view.ID, &view.VideoURL, &view.Title, &view.Description, &view.Duration,
		&view.Views, &view.CreatedAt,
		&view.Owner.ID, &view.Owner.Username, &view.Owner.FullName, &view.Owner.AvatarURL,
		&view.Owner.SubscribersCount, &view.Owner.IsSubscribed,
		&view.LikesCount, &view.IsLiked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VideoDetailView{}, ErrNotFound
		}
		return VideoDetailView{}, fmt.Errorf("video detail pipeline: %w", err)
	}
	return view, nil
}

// Videos runs the video-list pipeline over published videos: filter, owner
// join, sort, then window. The total is counted against the filtered set so
// the page envelope stays accurate for any requested page.
func (s *Service) Videos(ctx context.Context, filter VideoFilter, page PageRequest) (Page[VideoListItem], error) {
	if filter.OwnerID != "" {
		if err := ValidateID(filter.OwnerID, "owner"); err != nil {
			return Page[VideoListItem]{}, err
		}
	}
	orderBy, ok := videoSortColumns[filter.SortBy]
	if !ok {
		return Page[VideoListItem]{}, errs.Errorf(errs.InvalidArgument, "unknown sort field %q", filter.SortBy)
	}
	direction := "DESC"
	if filter.SortAsc {
		direction = "ASC"
	}
	page = page.Normalize()

	search := escapeLike(NormalizeSearch(filter.Search))

	ctx, op := logging.StartOp(ctx, "query.videos")
	defer op.End()

	conn, err := s.acquire(ctx)
	if err != nil {
		return Page[VideoListItem]{}, err
	}
	defer conn.Release()

	const where = `
        (v.published OR $3)
        AND ($1 = '' OR v.owner_id = $1)
        AND ($2 = '' OR v.title ILIKE '%' || $2 || '%' OR v.description ILIKE '%' || $2 || '%')`

	var total int64
	if err := conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM videos v WHERE `+where,
		filter.OwnerID, search, filter.IncludeUnpublished,
	).Scan(&total); err != nil {
		return Page[VideoListItem]{}, fmt.Errorf("count videos: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.thumbnail_url, v.title, v.description, v.duration_seconds, v.views, v.created_at,
               v.published,
               a.id, a.username, a.full_name, a.avatar_url
        FROM videos v
        JOIN accounts a ON a.id = v.owner_id
        WHERE `+where+`
        ORDER BY `+orderBy+` `+direction+`
        LIMIT $4 OFFSET $5
    `, filter.OwnerID, search, filter.IncludeUnpublished, page.Limit, page.Offset())
	if err != nil {
		return Page[VideoListItem]{}, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var items []VideoListItem
	for rows.Next() {
		var item VideoListItem
		if err := rows.Scan(&item.ID, &item.ThumbnailURL, &item.Title, &item.Description,
			&item.Duration, &item.Views, &item.CreatedAt, &item.Published,
			&item.Owner.ID, &item.Owner.Username, &item.Owner.FullName, &item.Owner.AvatarURL); err != nil {
			return Page[VideoListItem]{}, fmt.Errorf("scan video row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Page[VideoListItem]{}, fmt.Errorf("iterate videos: %w", err)
	}

	return NewPage(items, total, page), nil
}

// NormalizeSearch trims the free-text query so whitespace-only input behaves
// like no filter at all.
func NormalizeSearch(q string) string {
	return strings.TrimSpace(q)
}

// likeEscaper neutralizes LIKE metacharacters so a search term like "100%"
// matches the literal text instead of widening the pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(q string) string {
	return likeEscaper.Replace(q)
}
