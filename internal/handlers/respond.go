package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/errs"
	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
	"github.com/videotube/backend/internal/query"
	"github.com/videotube/backend/internal/repositories"
)

// errorEnvelope is the uniform failure shape returned by every endpoint.
type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Trace      string   `json:"trace,omitempty"`
}

// CookieConfig carries the attributes applied to credential cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

const refreshTokenCookie = "refreshToken"

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}

// exposeTraces controls whether the raw error chain is included in failure
// envelopes. RegisterRoutes enables it outside production.
var exposeTraces bool

// respondError classifies err, logs it, and writes the uniform envelope.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	code := classify(err)
	status := errs.HTTPStatus(code)
	message := errs.MessageOf(err)
	if code != errs.CodeOf(err) {
		message = defaultMessage(code)
	}

	envelope := errorEnvelope{
		StatusCode: status,
		Message:    message,
		Errors:     []string{},
	}
	if exposeTraces {
		envelope.Trace = err.Error()
	}

	logger := logging.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	respondJSON(ctx, w, status, envelope)
}

// classify folds sentinel errors from the lower layers into the taxonomy.
func classify(err error) errs.Code {
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, query.ErrNotFound):
		return errs.NotFound
	case errors.Is(err, repositories.ErrConflict):
		return errs.Conflict
	case errors.Is(err, repositories.ErrSelfSubscription):
		return errs.InvalidArgument
	case errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenMalformed),
		errors.Is(err, auth.ErrTokenSignature),
		errors.Is(err, auth.ErrRefreshTokenMismatch),
		errors.Is(err, auth.ErrSessionNotFound):
		return errs.Unauthorized
	case db.IsUnavailable(err):
		// Store infrastructure failures are retryable; report 503, not 500.
		return errs.Unavailable
	default:
		return errs.CodeOf(err)
	}
}

func defaultMessage(code errs.Code) string {
	switch code {
	case errs.NotFound:
		return "resource not found"
	case errs.Conflict:
		return "resource already exists"
	case errs.Unauthorized:
		return "invalid or expired credentials"
	case errs.InvalidArgument:
		return "invalid request"
	case errs.Unavailable:
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

// pageRequest reads the page and limit query parameters. Invalid or missing
// values fall back to the defaults instead of failing the request.
func pageRequest(r *http.Request) query.PageRequest {
	page := intQueryParam(r, "page")
	limit := intQueryParam(r, "limit")
	return query.PageRequest{Page: page, Limit: limit}.Normalize()
}

func intQueryParam(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// setAuthCookies delivers the token pair as httpOnly cookies alongside the
// JSON body, so both browser and non-browser clients can consume it.
func setAuthCookies(w http.ResponseWriter, pair models.TokenPair, cfg CookieConfig) {
	http.SetCookie(w, authCookie(auth.AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt, cfg))
	http.SetCookie(w, authCookie(refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt, cfg))
}

// clearAuthCookies expires both credential cookies.
func clearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, authCookie(auth.AccessTokenCookie, "", expired, cfg))
	http.SetCookie(w, authCookie(refreshTokenCookie, "", expired, cfg))
}

func authCookie(name, value string, expires time.Time, cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
