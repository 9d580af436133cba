package query

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/repositories"
)

var (
	testPool    *pgxpool.Pool
	testService *Service
)

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool
	testService = NewService(pool)

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestVideoByID_ViewerRelativeFlags(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	fan := seedAccount(t, "fan")
	video := seedVideo(t, owner.ID, true)

	likeRepo := repositories.NewPostgresLikeRepository(testPool)
	if _, err := likeRepo.Toggle(ctx, fan.ID, models.LikeVideo, video.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}
	subRepo := repositories.NewPostgresSubscriptionRepository(testPool)
	if _, err := subRepo.Toggle(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// An anonymous viewer sees the counts but every viewer-relative flag false.
	view, err := testService.VideoByID(ctx, video.ID, "")
	if err != nil {
		t.Fatalf("video detail (anonymous): %v", err)
	}
	if view.LikesCount != 1 || view.Owner.SubscribersCount != 1 {
		t.Fatalf("unexpected counts: %+v", view)
	}
	if view.IsLiked || view.Owner.IsSubscribed {
		t.Fatalf("anonymous viewer must see all flags false, got %+v", view)
	}

	// The fan sees both flags true.
	view, err = testService.VideoByID(ctx, video.ID, fan.ID)
	if err != nil {
		t.Fatalf("video detail (fan): %v", err)
	}
	if !view.IsLiked || !view.Owner.IsSubscribed {
		t.Fatalf("fan must see liked and subscribed flags, got %+v", view)
	}

	// A third account sees the same counts with flags false.
	other := seedAccount(t, "other")
	view, err = testService.VideoByID(ctx, video.ID, other.ID)
	if err != nil {
		t.Fatalf("video detail (other): %v", err)
	}
	if view.IsLiked || view.Owner.IsSubscribed {
		t.Fatalf("unrelated viewer must see flags false, got %+v", view)
	}

	if _, err := testService.VideoByID(ctx, uuid.NewString(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}
	if _, err := testService.VideoByID(ctx, "not-a-uuid", ""); errs.CodeOf(err) != errs.InvalidArgument {
		t.Fatalf("expected invalid argument for malformed id, got %v", err)
	}
}

func TestVideos_PublishedFilterAndPagination(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	for i := 0; i < 12; i++ {
		seedVideo(t, owner.ID, true)
	}
	seedVideo(t, owner.ID, false) // drafts never reach the public listing

	page, err := testService.Videos(ctx, VideoFilter{}, PageRequest{Page: 1, Limit: 5})
	if err != nil {
		t.Fatalf("list videos: %v", err)
	}
	if page.TotalItems != 12 || page.TotalPages != 3 {
		t.Fatalf("expected 12 published videos over 3 pages, got %+v", page)
	}
	if len(page.Items) != 5 || !page.HasNext || page.HasPrev {
		t.Fatalf("unexpected first page: %+v", page)
	}

	// A page beyond the end keeps totals accurate with an empty window.
	page, err = testService.Videos(ctx, VideoFilter{}, PageRequest{Page: 9, Limit: 5})
	if err != nil {
		t.Fatalf("list videos page 9: %v", err)
	}
	if len(page.Items) != 0 || page.TotalItems != 12 {
		t.Fatalf("expected empty window with accurate totals, got %+v", page)
	}

	// The owner filter plus IncludeUnpublished surfaces the draft.
	page, err = testService.Videos(ctx, VideoFilter{OwnerID: owner.ID, IncludeUnpublished: true}, PageRequest{Limit: 100})
	if err != nil {
		t.Fatalf("list owner videos: %v", err)
	}
	if page.TotalItems != 13 {
		t.Fatalf("expected 13 videos including the draft, got %+v", page)
	}

	if _, err := testService.Videos(ctx, VideoFilter{SortBy: "bogus"}, PageRequest{}); errs.CodeOf(err) != errs.InvalidArgument {
		t.Fatalf("expected invalid argument for unknown sort field, got %v", err)
	}
}

func TestVideos_Search(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	seedVideoTitled(t, owner.ID, "Cooking with cast iron", true)
	seedVideoTitled(t, owner.ID, "Woodworking basics", true)

	page, err := testService.Videos(ctx, VideoFilter{Search: "cooking"}, PageRequest{})
	if err != nil {
		t.Fatalf("search videos: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].Title != "Cooking with cast iron" {
		t.Fatalf("unexpected search result: %+v", page)
	}
}

func TestVideos_SearchMatchesMetacharactersLiterally(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	seedVideoTitled(t, owner.ID, "Sale 100% off", true)
	seedVideoTitled(t, owner.ID, "Sale 10x off", true)

	// "%" in the term must not widen the pattern to match both titles.
	page, err := testService.Videos(ctx, VideoFilter{Search: "100%"}, PageRequest{})
	if err != nil {
		t.Fatalf("search videos: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].Title != "Sale 100% off" {
		t.Fatalf("expected only the literal match, got %+v", page)
	}

	seedVideoTitled(t, owner.ID, "snake_case", true)
	seedVideoTitled(t, owner.ID, "snakeXcase", true)

	page, err = testService.Videos(ctx, VideoFilter{Search: "snake_case"}, PageRequest{})
	if err != nil {
		t.Fatalf("search videos: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].Title != "snake_case" {
		t.Fatalf("underscore must match literally, got %+v", page)
	}
}

func TestChannelProfile(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	fan := seedAccount(t, "fan")

	subRepo := repositories.NewPostgresSubscriptionRepository(testPool)
	if _, err := subRepo.Toggle(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	profile, err := testService.ChannelProfile(ctx, "owner", fan.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 1 || !profile.IsSubscribed {
		t.Fatalf("expected subscribed fan view, got %+v", profile)
	}

	profile, err = testService.ChannelProfile(ctx, "owner", "")
	if err != nil {
		t.Fatalf("channel profile (anonymous): %v", err)
	}
	if profile.IsSubscribed {
		t.Fatalf("anonymous viewer must not appear subscribed: %+v", profile)
	}

	if _, err := testService.ChannelProfile(ctx, "ghost", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown username, got %v", err)
	}
}

func TestCommentsByVideo(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	fan := seedAccount(t, "fan")
	video := seedVideo(t, owner.ID, true)

	commentRepo := repositories.NewPostgresCommentRepository(testPool)
	comment := models.Comment{
		ID: uuid.NewString(), VideoID: video.ID, OwnerID: fan.ID,
		Content: "first", CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := commentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	likeRepo := repositories.NewPostgresLikeRepository(testPool)
	if _, err := likeRepo.Toggle(ctx, owner.ID, models.LikeComment, comment.ID); err != nil {
		t.Fatalf("like comment: %v", err)
	}

	page, err := testService.CommentsByVideo(ctx, video.ID, owner.ID, PageRequest{})
	if err != nil {
		t.Fatalf("comments by video: %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one comment, got %+v", page)
	}
	got := page.Items[0]
	if got.LikesCount != 1 || !got.IsLiked || got.Owner.Username != "fan" {
		t.Fatalf("unexpected comment view: %+v", got)
	}

	// Comments for a missing video are a lookup failure, not an empty page.
	if _, err := testService.CommentsByVideo(ctx, uuid.NewString(), "", PageRequest{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing video, got %v", err)
	}
}

func TestTweetsByOwner(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	fan := seedAccount(t, "fan")

	tweetRepo := repositories.NewPostgresTweetRepository(testPool)
	tweet := models.Tweet{
		ID: uuid.NewString(), OwnerID: owner.ID, Content: "hello",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := tweetRepo.Create(ctx, tweet); err != nil {
		t.Fatalf("create tweet: %v", err)
	}
	likeRepo := repositories.NewPostgresLikeRepository(testPool)
	if _, err := likeRepo.Toggle(ctx, fan.ID, models.LikeTweet, tweet.ID); err != nil {
		t.Fatalf("like tweet: %v", err)
	}

	page, err := testService.TweetsByOwner(ctx, owner.ID, fan.ID, PageRequest{})
	if err != nil {
		t.Fatalf("tweets by owner: %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one tweet, got %+v", page)
	}
	if got := page.Items[0]; got.LikesCount != 1 || !got.IsLiked || got.Content != "hello" {
		t.Fatalf("unexpected tweet view: %+v", got)
	}

	page, err = testService.TweetsByOwner(ctx, owner.ID, "", PageRequest{})
	if err != nil {
		t.Fatalf("tweets by owner (anonymous): %v", err)
	}
	if page.Items[0].IsLiked {
		t.Fatalf("anonymous viewer must see isLiked false: %+v", page.Items[0])
	}
}

func TestWatchHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	viewer := seedAccount(t, "viewer")
	first := seedVideo(t, owner.ID, true)
	second := seedVideo(t, owner.ID, true)

	accountRepo := repositories.NewPostgresAccountRepository(testPool)
	if err := accountRepo.AddToWatchHistory(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("watch first: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := accountRepo.AddToWatchHistory(ctx, viewer.ID, second.ID); err != nil {
		t.Fatalf("watch second: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	// Re-watching the first video moves it to the front without duplicating it.
	if err := accountRepo.AddToWatchHistory(ctx, viewer.ID, first.ID); err != nil {
		t.Fatalf("re-watch first: %v", err)
	}

	page, err := testService.WatchHistory(ctx, viewer.ID, PageRequest{})
	if err != nil {
		t.Fatalf("watch history: %v", err)
	}
	if page.TotalItems != 2 {
		t.Fatalf("expected 2 history entries, got %+v", page)
	}
	if page.Items[0].VideoID != first.ID || page.Items[1].VideoID != second.ID {
		t.Fatalf("unexpected history order: %+v", page.Items)
	}
}

func TestChannelStats(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	fan := seedAccount(t, "fan")
	video := seedVideo(t, owner.ID, true)

	videoRepo := repositories.NewPostgresVideoRepository(testPool)
	for i := 0; i < 3; i++ {
		if err := videoRepo.IncrementViews(ctx, video.ID); err != nil {
			t.Fatalf("increment views: %v", err)
		}
	}
	likeRepo := repositories.NewPostgresLikeRepository(testPool)
	if _, err := likeRepo.Toggle(ctx, fan.ID, models.LikeVideo, video.ID); err != nil {
		t.Fatalf("like video: %v", err)
	}
	subRepo := repositories.NewPostgresSubscriptionRepository(testPool)
	if _, err := subRepo.Toggle(ctx, fan.ID, owner.ID); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	stats, err := testService.ChannelStats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	want := ChannelStatsView{TotalVideos: 1, TotalViews: 3, TotalSubscribers: 1, TotalLikes: 1}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestPlaylistViews(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	owner := seedAccount(t, "owner")
	published := seedVideo(t, owner.ID, true)
	draft := seedVideo(t, owner.ID, false)

	playlistRepo := repositories.NewPostgresPlaylistRepository(testPool)
	playlist := models.Playlist{
		ID: uuid.NewString(), OwnerID: owner.ID, Name: "Mix", Description: "Assorted",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	if err := playlistRepo.Create(ctx, playlist); err != nil {
		t.Fatalf("create playlist: %v", err)
	}
	if err := playlistRepo.AddVideo(ctx, playlist.ID, published.ID); err != nil {
		t.Fatalf("add published video: %v", err)
	}
	if err := playlistRepo.AddVideo(ctx, playlist.ID, draft.ID); err != nil {
		t.Fatalf("add draft video: %v", err)
	}

	view, err := testService.PlaylistByID(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("playlist by id: %v", err)
	}
	if view.Name != "Mix" || view.Owner.Username != "owner" {
		t.Fatalf("unexpected playlist view: %+v", view)
	}
	// Unpublished members stay invisible.
	if len(view.Videos) != 1 || view.Videos[0].ID != published.ID {
		t.Fatalf("expected only the published member, got %+v", view.Videos)
	}

	page, err := testService.PlaylistsByOwner(ctx, owner.ID, PageRequest{})
	if err != nil {
		t.Fatalf("playlists by owner: %v", err)
	}
	if page.TotalItems != 1 || page.Items[0].TotalVideos != 1 {
		t.Fatalf("unexpected playlist listing: %+v", page)
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `TRUNCATE TABLE likes, watch_history, playlist_videos, playlists,
                subscriptions, comments, tweets, videos, accounts CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func seedAccount(t *testing.T, username string) models.Account {
	t.Helper()
	now := time.Now().UTC()
	account := models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: "password-hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repositories.NewPostgresAccountRepository(testPool).Create(context.Background(), account); err != nil {
		t.Fatalf("seed account %s: %v", username, err)
	}
	return account
}

func seedVideo(t *testing.T, ownerID string, published bool) models.Video {
	t.Helper()
	return seedVideoTitled(t, ownerID, "Video "+uuid.NewString()[:8], published)
}

func seedVideoTitled(t *testing.T, ownerID, title string, published bool) models.Video {
	t.Helper()
	now := time.Now().UTC()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		VideoURL:     "https://cdn.example.com/video.mp4",
		ThumbnailURL: "https://cdn.example.com/thumb.jpg",
		Title:        title,
		Description:  "A fixture video",
		Duration:     30,
		Published:    published,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repositories.NewPostgresVideoRepository(testPool).Create(context.Background(), video); err != nil {
		t.Fatalf("seed video: %v", err)
	}
	return video
}
