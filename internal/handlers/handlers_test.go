package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/query"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/storage"
)

// The fakes below back the handler tests with in-memory state so requests can
// run through the real mux, guard and handlers without a database.

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	history  map[string][]string
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{
		accounts: make(map[string]models.Account),
		history:  make(map[string][]string),
	}
}

func (f *fakeAccountStore) Create(_ context.Context, account models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Username == account.Username || existing.Email == account.Email {
			return repositories.ErrConflict
		}
	}
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return models.Account{}, repositories.ErrNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) FindByUsername(_ context.Context, username string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Username == username {
			return account, nil
		}
	}
	return models.Account{}, repositories.ErrNotFound
}

func (f *fakeAccountStore) FindByLogin(_ context.Context, login string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Username == login || account.Email == login {
			return account, nil
		}
	}
	return models.Account{}, repositories.ErrNotFound
}

func (f *fakeAccountStore) UpdateDetails(_ context.Context, id, fullName, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.FullName, account.Email = fullName, email
	f.accounts[id] = account
	return nil
}

func (f *fakeAccountStore) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.PasswordHash = hash
	f.accounts[id] = account
	return nil
}

func (f *fakeAccountStore) UpdateAvatar(_ context.Context, id, url, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.AvatarURL, account.AvatarKey = url, key
	f.accounts[id] = account
	return nil
}

func (f *fakeAccountStore) UpdateCover(_ context.Context, id, url, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	account.CoverURL, account.CoverKey = url, key
	f.accounts[id] = account
	return nil
}

func (f *fakeAccountStore) AddToWatchHistory(_ context.Context, accountID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[accountID] = append(f.history[accountID], videoID)
	return nil
}

type fakeVideoStore struct {
	mu     sync.Mutex
	videos map[string]models.Video
}

func newFakeVideoStore() *fakeVideoStore {
	return &fakeVideoStore{videos: make(map[string]models.Video)}
}

func (f *fakeVideoStore) Create(_ context.Context, video models.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videos[video.ID] = video
	return nil
}

func (f *fakeVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (f *fakeVideoStore) UpdateDetails(_ context.Context, id, title, description, thumbnailURL, thumbnailKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Title, video.Description = title, description
	video.ThumbnailURL, video.ThumbnailKey = thumbnailURL, thumbnailKey
	f.videos[id] = video
	return nil
}

func (f *fakeVideoStore) SetPublished(_ context.Context, id string, published bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Published = published
	f.videos[id] = video
	return nil
}

func (f *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	video, ok := f.videos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	video.Views++
	f.videos[id] = video
	return nil
}

func (f *fakeVideoStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

type fakeSubscriptionStore struct {
	mu    sync.Mutex
	edges map[string]bool
}

func newFakeSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{edges: make(map[string]bool)}
}

func (f *fakeSubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == channelID {
		return false, repositories.ErrSelfSubscription
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := subscriberID + "->" + channelID
	if f.edges[key] {
		delete(f.edges, key)
		return false, nil
	}
	f.edges[key] = true
	return true, nil
}

type fakeLikeStore struct {
	mu    sync.Mutex
	likes map[string]bool
}

func newFakeLikeStore() *fakeLikeStore {
	return &fakeLikeStore{likes: make(map[string]bool)}
}

func (f *fakeLikeStore) Toggle(_ context.Context, likedBy string, target models.LikeTarget, targetID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s:%s:%s", likedBy, target, targetID)
	if f.likes[key] {
		delete(f.likes, key)
		return false, nil
	}
	f.likes[key] = true
	return true, nil
}

// fakeAggregator returns canned views; unset fields yield zero values.
type fakeAggregator struct {
	videoDetail query.VideoDetailView
	videoErr    error
	videoFilter query.VideoFilter
	videoPage   query.Page[query.VideoListItem]
}

func (f *fakeAggregator) VideoByID(_ context.Context, _, _ string) (query.VideoDetailView, error) {
	return f.videoDetail, f.videoErr
}

func (f *fakeAggregator) Videos(_ context.Context, filter query.VideoFilter, _ query.PageRequest) (query.Page[query.VideoListItem], error) {
	f.videoFilter = filter
	return f.videoPage, nil
}

func (f *fakeAggregator) ChannelProfile(_ context.Context, _, _ string) (query.ChannelProfileView, error) {
	return query.ChannelProfileView{}, nil
}

func (f *fakeAggregator) Subscribers(_ context.Context, _ string, _ query.PageRequest) (query.Page[query.OwnerSummary], error) {
	return query.Page[query.OwnerSummary]{}, nil
}

func (f *fakeAggregator) SubscribedChannels(_ context.Context, _ string, _ query.PageRequest) (query.Page[query.OwnerSummary], error) {
	return query.Page[query.OwnerSummary]{}, nil
}

func (f *fakeAggregator) ChannelStats(_ context.Context, _ string) (query.ChannelStatsView, error) {
	return query.ChannelStatsView{}, nil
}

func (f *fakeAggregator) TweetsByOwner(_ context.Context, _, _ string, _ query.PageRequest) (query.Page[query.TweetView], error) {
	return query.Page[query.TweetView]{}, nil
}

func (f *fakeAggregator) CommentsByVideo(_ context.Context, _, _ string, _ query.PageRequest) (query.Page[query.CommentView], error) {
	return query.Page[query.CommentView]{}, nil
}

func (f *fakeAggregator) PlaylistByID(_ context.Context, _ string) (query.PlaylistView, error) {
	return query.PlaylistView{}, nil
}

func (f *fakeAggregator) PlaylistsByOwner(_ context.Context, _ string, _ query.PageRequest) (query.Page[query.PlaylistListItem], error) {
	return query.Page[query.PlaylistListItem]{}, nil
}

func (f *fakeAggregator) WatchHistory(_ context.Context, _ string, _ query.PageRequest) (query.Page[query.WatchHistoryItem], error) {
	return query.Page[query.WatchHistoryItem]{}, nil
}

type fakeBlobStore struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
}

func (f *fakeBlobStore) Save(_ context.Context, name string, _ io.Reader) (storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, name)
	return storage.Object{URL: "https://blobs.test/" + name, Key: "blobs/" + name}, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

// testEnv bundles the fakes behind a ready-to-use mux.
type testEnv struct {
	mux      *http.ServeMux
	accounts *fakeAccountStore
	sessions *auth.SessionManager
	issuer   *auth.TokenIssuer
	videos   *fakeVideoStore
	likes    *fakeLikeStore
	subs     *fakeSubscriptionStore
	views    *fakeAggregator
	blobs    *fakeBlobStore
}

func newTestEnv() *testEnv {
	accounts := newFakeAccountStore()
	issuer := auth.NewTokenIssuer([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 240*time.Hour)
	sessions := auth.NewSessionManager(issuer, auth.NewInMemorySessionStore())
	videos := newFakeVideoStore()
	likes := newFakeLikeStore()
	subs := newFakeSubscriptionStore()
	views := &fakeAggregator{}
	blobs := &fakeBlobStore{}

	mux := http.NewServeMux()
	RegisterRoutes(mux, Dependencies{
		Accounts:      accounts,
		Sessions:      sessions,
		Guard:         auth.NewGuard(issuer, accounts),
		Videos:        videos,
		Likes:         likes,
		Subscriptions: subs,
		Views:         views,
		Blobs:         blobs,
		Cookies:       CookieConfig{Secure: false},
	})

	return &testEnv{
		mux:      mux,
		accounts: accounts,
		sessions: sessions,
		issuer:   issuer,
		videos:   videos,
		likes:    likes,
		subs:     subs,
		views:    views,
		blobs:    blobs,
	}
}

// addAccount registers a fixture account and returns it.
func (e *testEnv) addAccount(id, username, password string) models.Account {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	account := models.Account{
		ID:           id,
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := e.accounts.Create(context.Background(), account); err != nil {
		panic(err)
	}
	return account
}

// accessToken mints a valid access token for the account.
func (e *testEnv) accessToken(accountID string) string {
	token, _, err := e.issuer.Issue(accountID, auth.AccessToken)
	if err != nil {
		panic(err)
	}
	return token
}

// multipartBody builds a multipart request body with the given form fields and
// file parts (field name -> file name).
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file part %s: %v", field, err)
		}
		if _, err := part.Write([]byte("binary payload")); err != nil {
			t.Fatalf("write file part %s: %v", field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}
