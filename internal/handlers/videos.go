package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/query"
)

// VideoHandler implements video upload, lifecycle and listing endpoints.
type VideoHandler struct {
	Videos   VideoStore
	Accounts AccountStore
	Views    Aggregator
	Blobs    BlobStore
	NowFunc  func() time.Time
}

type videoPayload struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	VideoURL     string    `json:"videoUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
}

func publicVideo(v models.Video) videoPayload {
	return videoPayload{
		ID:           v.ID,
		OwnerID:      v.OwnerID,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		Title:        v.Title,
		Description:  v.Description,
		Duration:     v.Duration,
		Views:        v.Views,
		Published:    v.Published,
		CreatedAt:    v.CreatedAt,
	}
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// List handles GET /api/v1/videos. Supported parameters: query, userId,
// sortBy (createdAt, views, duration), sortType (asc, desc), page, limit.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	filter := query.VideoFilter{
		OwnerID: strings.TrimSpace(params.Get("userId")),
		Search:  query.NormalizeSearch(params.Get("query")),
		SortBy:  params.Get("sortBy"),
		SortAsc: strings.EqualFold(params.Get("sortType"), "asc"),
	}

	page, err := h.Views.Videos(ctx, filter, pageRequest(r))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, page)
}

// Create handles POST /api/v1/videos. The request is multipart: title,
// description and duration fields plus videoFile and thumbnail files. New
// videos start unpublished; they stay invisible to listings until the owner
// toggles them live.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "multipart form required", err))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "title and description are required"))
		return
	}
	duration, err := strconv.ParseFloat(r.FormValue("duration"), 64)
	if err != nil || duration <= 0 {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "duration must be a positive number of seconds"))
		return
	}

	media, err := saveFormFile(r, h.Blobs, "videoFile")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	thumbnail, err := saveFormFile(r, h.Blobs, "thumbnail")
	if err != nil {
		discardBlob(r, h.Blobs, media.Key)
		respondError(ctx, w, err)
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      identity.ID,
		VideoURL:     media.URL,
		VideoKey:     media.Key,
		ThumbnailURL: thumbnail.URL,
		ThumbnailKey: thumbnail.Key,
		Title:        title,
		Description:  description,
		Duration:     duration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		discardBlob(r, h.Blobs, media.Key)
		discardBlob(r, h.Blobs, thumbnail.Key)
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video uploaded", "videoId", video.ID, "ownerId", identity.ID)
	respondJSON(ctx, w, http.StatusCreated, publicVideo(video))
}

// Detail handles GET /api/v1/videos/{videoId}. Fetching a video counts a view
// and, for a signed-in viewer, records it in their watch history; neither
// side effect can fail the response.
func (h VideoHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	videoID := r.PathValue("videoId")
	identity := auth.IdentityFromContext(ctx)

	view, err := h.Views.VideoByID(ctx, videoID, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("count view", "videoId", videoID, "error", err)
	}
	if !identity.Anonymous() {
		if err := h.Accounts.AddToWatchHistory(ctx, identity.ID, videoID); err != nil {
			logger.Warn("record watch history", "videoId", videoID, "accountId", identity.ID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, view)
}

// Update handles PATCH /api/v1/videos/{videoId}. Title, description and an
// optional replacement thumbnail arrive as multipart fields; only the owner
// may update.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("videoId")

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(video, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "multipart form required", err))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" {
		title = video.Title
	}
	if description == "" {
		description = video.Description
	}

	thumbnailURL, thumbnailKey := video.ThumbnailURL, video.ThumbnailKey
	if file, header, ferr := r.FormFile("thumbnail"); ferr == nil {
		obj, serr := h.Blobs.Save(ctx, header.Filename, file)
		file.Close()
		if serr != nil {
			respondError(ctx, w, errs.Wrap(errs.Unavailable, "store thumbnail", serr))
			return
		}
		thumbnailURL, thumbnailKey = obj.URL, obj.Key
	}

	if err := h.Videos.UpdateDetails(ctx, videoID, title, description, thumbnailURL, thumbnailKey); err != nil {
		if thumbnailKey != video.ThumbnailKey {
			discardBlob(r, h.Blobs, thumbnailKey)
		}
		respondError(ctx, w, err)
		return
	}
	if thumbnailKey != video.ThumbnailKey {
		discardBlob(r, h.Blobs, video.ThumbnailKey)
	}

	updated, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, publicVideo(updated))
}

// Delete handles DELETE /api/v1/videos/{videoId}. The row and its dependents
// go first; blob cleanup is best-effort afterwards.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("videoId")

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(video, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.Delete(ctx, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}
	discardBlob(r, h.Blobs, video.VideoKey)
	discardBlob(r, h.Blobs, video.ThumbnailKey)

	logging.FromContext(ctx).Info("video deleted", "videoId", videoID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "video deleted"})
}

// TogglePublish handles PATCH /api/v1/videos/{videoId}/publish.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("videoId")

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := auth.AssertOwner(video, auth.IdentityFromContext(ctx)); err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.SetPublished(ctx, videoID, !video.Published); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"id": videoID, "published": !video.Published})
}

// saveFormFile streams a required multipart file into the blob store.
func saveFormFile(r *http.Request, blobs BlobStore, field string) (uploadedObject, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return uploadedObject{}, errs.Wrap(errs.InvalidArgument, field+" file is required", err)
	}
	defer file.Close()

	obj, err := blobs.Save(r.Context(), header.Filename, file)
	if err != nil {
		return uploadedObject{}, errs.Wrap(errs.Unavailable, "store "+field, err)
	}
	return uploadedObject{URL: obj.URL, Key: obj.Key}, nil
}

func discardBlob(r *http.Request, blobs BlobStore, key string) {
	if key == "" {
		return
	}
	if err := blobs.Delete(r.Context(), key); err != nil {
		logging.FromContext(r.Context()).Warn("discard blob", "key", key, "error", err)
	}
}
