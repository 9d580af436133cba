package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

// maxUploadBytes bounds multipart request bodies; video files dominate, so the
// limit is generous.
const maxUploadBytes = 256 << 20

// AuthHandler implements account registration and credential lifecycle
// endpoints.
type AuthHandler struct {
	Accounts AccountStore
	Sessions SessionManager
	Blobs    BlobStore
	Cookies  CookieConfig
	NowFunc  func() time.Time
}

type registerResponse struct {
	Account accountPayload `json:"account"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Account accountPayload   `json:"account"`
	Tokens  models.TokenPair `json:"tokens"`
}

type tokenResponse struct {
	Tokens models.TokenPair `json:"tokens"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// accountPayload is the public projection of an account returned by the
// account endpoints. PasswordHash and RefreshToken are never serialized.
type accountPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	AvatarURL string    `json:"avatarUrl"`
	CoverURL  string    `json:"coverUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

func publicAccount(a models.Account) accountPayload {
	return accountPayload{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FullName:  a.FullName,
		AvatarURL: a.AvatarURL,
		CoverURL:  a.CoverURL,
		CreatedAt: a.CreatedAt,
	}
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// Register handles POST /api/v1/auth/register. The request is multipart:
// fullName, email, username and password fields plus a required avatar file
// and an optional coverImage file. Uploaded blobs are removed again if the
// account row cannot be created.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "multipart form required", err))
		return
	}

	username := strings.TrimSpace(strings.ToLower(r.FormValue("username")))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	fullName := strings.TrimSpace(r.FormValue("fullName"))
	password := r.FormValue("password")

	if username == "" || email == "" || fullName == "" || password == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "fullName, email, username and password are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid email address", err))
		return
	}
	if len(password) < 8 {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "password must be at least 8 characters"))
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		respondError(ctx, w, errs.Wrap(errs.Internal, "hash password", err))
		return
	}

	avatar, err := saveFormFile(r, h.Blobs, "avatar")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var cover uploadedObject
	if len(r.MultipartForm.File["coverImage"]) > 0 {
		cover, err = saveFormFile(r, h.Blobs, "coverImage")
		if err != nil {
			discardBlob(r, h.Blobs, avatar.Key)
			respondError(ctx, w, err)
			return
		}
	}

	now := h.now()
	account := models.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		AvatarURL:    avatar.URL,
		AvatarKey:    avatar.Key,
		CoverURL:     cover.URL,
		CoverKey:     cover.Key,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Accounts.Create(ctx, account); err != nil {
		discardBlob(r, h.Blobs, avatar.Key)
		discardBlob(r, h.Blobs, cover.Key)
		respondError(ctx, w, err)
		return
	}

	logger.Info("account registered", "accountId", account.ID, "username", account.Username)
	respondJSON(ctx, w, http.StatusCreated, registerResponse{Account: publicAccount(account)})
}

// Login handles POST /api/v1/auth/login. Either username or email identifies
// the account; a missing account and a wrong password are indistinguishable to
// the caller.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}

	login := strings.TrimSpace(strings.ToLower(req.Username))
	if login == "" {
		login = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if login == "" || req.Password == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "username or email and password are required"))
		return
	}

	account, err := h.Accounts.FindByLogin(ctx, login)
	if err != nil {
		logger.Warn("login lookup failed", "login", login, "error", err)
		respondError(ctx, w, errs.E(errs.Unauthorized, "invalid credentials"))
		return
	}
	if !auth.VerifyPassword(req.Password, account.PasswordHash) {
		logger.Warn("login password mismatch", "accountId", account.ID)
		respondError(ctx, w, errs.E(errs.Unauthorized, "invalid credentials"))
		return
	}

	tokens, err := h.Sessions.Login(ctx, account.ID)
	if err != nil {
		respondError(ctx, w, errs.Wrap(errs.Internal, "create session", err))
		return
	}

	logger.Info("account logged in", "accountId", account.ID)
	setAuthCookies(w, tokens, h.Cookies)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{Account: publicAccount(account), Tokens: tokens})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token is read from
// the request body or, failing that, the refreshToken cookie. A stale token
// loses the race and is rejected without invalidating the live session.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req refreshRequest
	if r.Body != nil {
		// Body is optional for cookie-based clients.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	presented := strings.TrimSpace(req.RefreshToken)
	if presented == "" {
		if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
			presented = cookie.Value
		}
	}
	if presented == "" {
		respondError(ctx, w, errs.E(errs.Unauthorized, "refresh token is required"))
		return
	}

	tokens, err := h.Sessions.Rotate(ctx, presented)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setAuthCookies(w, tokens, h.Cookies)
	respondJSON(ctx, w, http.StatusOK, tokenResponse{Tokens: tokens})
}

// Logout handles POST /api/v1/auth/logout. Repeating the call for an already
// cleared session still succeeds.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	if err := h.Sessions.Revoke(ctx, identity.ID); err != nil {
		respondError(ctx, w, errs.Wrap(errs.Internal, "revoke session", err))
		return
	}

	logging.FromContext(ctx).Info("account logged out", "accountId", identity.ID)
	clearAuthCookies(w, h.Cookies)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/v1/auth/me.
func (h AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	account, err := h.Accounts.FindByID(ctx, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, registerResponse{Account: publicAccount(account)})
}

// ChangePassword handles POST /api/v1/auth/change-password. The current
// password must verify before the digest is replaced.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "currentPassword and newPassword are required"))
		return
	}
	if len(req.NewPassword) < 8 {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "password must be at least 8 characters"))
		return
	}

	account, err := h.Accounts.FindByID(ctx, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if !auth.VerifyPassword(req.CurrentPassword, account.PasswordHash) {
		respondError(ctx, w, errs.E(errs.Unauthorized, "current password is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondError(ctx, w, errs.Wrap(errs.Internal, "hash password", err))
		return
	}
	if err := h.Accounts.UpdatePassword(ctx, identity.ID, hash); err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("password changed", "accountId", identity.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "password updated"})
}

// UpdateDetails handles PATCH /api/v1/auth/me.
func (h AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	var req updateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid request body", err))
		return
	}
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if fullName == "" || email == "" {
		respondError(ctx, w, errs.E(errs.InvalidArgument, "fullName and email are required"))
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "invalid email address", err))
		return
	}

	if err := h.Accounts.UpdateDetails(ctx, identity.ID, fullName, email); err != nil {
		respondError(ctx, w, err)
		return
	}

	account, err := h.Accounts.FindByID(ctx, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, registerResponse{Account: publicAccount(account)})
}

// UpdateAvatar handles PATCH /api/v1/auth/me/avatar. The previous avatar blob
// is removed best-effort once the new one is recorded.
func (h AuthHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar",
		func(a models.Account) string { return a.AvatarKey },
		h.Accounts.UpdateAvatar)
}

// UpdateCover handles PATCH /api/v1/auth/me/cover.
func (h AuthHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage",
		func(a models.Account) string { return a.CoverKey },
		h.Accounts.UpdateCover)
}

func (h AuthHandler) replaceImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	oldKey func(models.Account) string,
	update func(ctx context.Context, id, url, key string) error,
) {
	ctx := r.Context()
	identity := auth.IdentityFromContext(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, errs.Wrap(errs.InvalidArgument, "multipart form required", err))
		return
	}

	account, err := h.Accounts.FindByID(ctx, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	uploaded, err := saveFormFile(r, h.Blobs, field)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if err := update(ctx, identity.ID, uploaded.URL, uploaded.Key); err != nil {
		discardBlob(r, h.Blobs, uploaded.Key)
		respondError(ctx, w, err)
		return
	}
	discardBlob(r, h.Blobs, oldKey(account))

	updated, err := h.Accounts.FindByID(ctx, identity.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusOK, registerResponse{Account: publicAccount(updated)})
}

type uploadedObject struct {
	URL string
	Key string
}
