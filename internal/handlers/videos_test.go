package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/query"
)

func addVideo(env *testEnv, id, ownerID string, published bool) models.Video {
	video := models.Video{
		ID:           id,
		OwnerID:      ownerID,
		VideoURL:     "https://blobs.test/" + id + ".mp4",
		VideoKey:     "blobs/" + id + ".mp4",
		ThumbnailURL: "https://blobs.test/" + id + ".jpg",
		ThumbnailKey: "blobs/" + id + ".jpg",
		Title:        "Video " + id,
		Description:  "About " + id,
		Duration:     60,
		Published:    published,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := env.videos.Create(context.Background(), video); err != nil {
		panic(err)
	}
	return video
}

func TestVideoCreateStartsUnpublished(t *testing.T) {
	env := newTestEnv()
	env.addAccount("account-1", "alice", "password123")

	body, contentType := multipartBody(t, map[string]string{
		"title":       "My upload",
		"description": "First take",
		"duration":    "93.5",
	}, map[string]string{
		"videoFile": "clip.mp4",
		"thumbnail": "clip.jpg",
	})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", "Bearer "+env.accessToken("account-1"))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, r)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp videoPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Published, "new uploads must start unpublished")
	assert.Equal(t, 93.5, resp.Duration)

	stored, err := env.videos.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.False(t, stored.Published)
}

func TestVideoCreateRequiresAuth(t *testing.T) {
	env := newTestEnv()

	body, contentType := multipartBody(t, map[string]string{"title": "x"}, nil)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/videos", body)
	r.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVideoDetailSideEffects(t *testing.T) {
	env := newTestEnv()
	env.addAccount("account-1", "alice", "password123")
	env.addAccount("account-2", "bob", "password123")
	addVideo(env, "11111111-1111-1111-1111-111111111111", "account-1", true)
	env.views.videoDetail = query.VideoDetailView{ID: "11111111-1111-1111-1111-111111111111"}

	// Anonymous fetch counts a view but records no history.
	rec := doJSON(env, http.MethodGet, "/api/v1/videos/11111111-1111-1111-1111-111111111111", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.videos.FindByID(context.Background(), "11111111-1111-1111-1111-111111111111")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Views)
	assert.Empty(t, env.accounts.history["account-2"])

	// A signed-in fetch also lands in the viewer's watch history.
	rec = doJSON(env, http.MethodGet, "/api/v1/videos/11111111-1111-1111-1111-111111111111", env.accessToken("account-2"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"11111111-1111-1111-1111-111111111111"}, env.accounts.history["account-2"])
}

func TestVideoDetailStoreOutageIsServiceUnavailable(t *testing.T) {
	env := newTestEnv()
	env.views.videoErr = fmt.Errorf("acquire connection: %w", context.DeadlineExceeded)

	rec := doJSON(env, http.MethodGet, "/api/v1/videos/11111111-1111-1111-1111-111111111111", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}

func TestVideoUpdateOwnerOnly(t *testing.T) {
	env := newTestEnv()
	env.addAccount("account-1", "alice", "password123")
	env.addAccount("account-2", "bob", "password123")
	addVideo(env, "v1", "account-1", true)

	body, contentType := multipartBody(t, map[string]string{"title": "Renamed"}, nil)
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", "Bearer "+env.accessToken("account-2"))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body, contentType = multipartBody(t, map[string]string{"title": "Renamed"}, nil)
	r = httptest.NewRequest(http.MethodPatch, "/api/v1/videos/v1", body)
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Authorization", "Bearer "+env.accessToken("account-1"))
	rec = httptest.NewRecorder()
	env.mux.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err := env.videos.FindByID(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, "About v1", stored.Description, "omitted fields keep their values")
}

func TestVideoDeleteCleansBlobs(t *testing.T) {
	env := newTestEnv()
	env.addAccount("account-1", "alice", "password123")
	video := addVideo(env, "v1", "account-1", true)

	rec := doJSON(env, http.MethodDelete, "/api/v1/videos/v1", env.accessToken("account-1"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err := env.videos.FindByID(context.Background(), "v1")
	assert.Error(t, err)
	assert.Contains(t, env.blobs.deleted, video.VideoKey)
	assert.Contains(t, env.blobs.deleted, video.ThumbnailKey)
}

func TestVideoTogglePublish(t *testing.T) {
	env := newTestEnv()
	env.addAccount("account-1", "alice", "password123")
	addVideo(env, "v1", "account-1", false)
	token := env.accessToken("account-1")

	rec := doJSON(env, http.MethodPatch, "/api/v1/videos/v1/publish", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stored, _ := env.videos.FindByID(context.Background(), "v1")
	assert.True(t, stored.Published)

	rec = doJSON(env, http.MethodPatch, "/api/v1/videos/v1/publish", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stored, _ = env.videos.FindByID(context.Background(), "v1")
	assert.False(t, stored.Published)
}

func TestVideoListPassesFilter(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(env, http.MethodGet, "/api/v1/videos?query=cats&sortBy=views&sortType=asc&userId=account-1", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, query.VideoFilter{
		OwnerID: "account-1",
		Search:  "cats",
		SortBy:  "views",
		SortAsc: true,
	}, env.views.videoFilter)
}

func TestDashboardVideosIncludeUnpublished(t *testing.T) {
	env := newTestEnv()
	env.addAccount("account-1", "alice", "password123")

	rec := doJSON(env, http.MethodGet, "/api/v1/dashboard/videos", env.accessToken("account-1"), "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "account-1", env.views.videoFilter.OwnerID)
	assert.True(t, env.views.videoFilter.IncludeUnpublished)
}
