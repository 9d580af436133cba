package app

import (
	"context"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/config"
	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/handlers"
	"github.com/videotube/backend/internal/middleware"
	"github.com/videotube/backend/internal/query"
	"github.com/videotube/backend/internal/repositories"
	"github.com/videotube/backend/internal/storage"
)

// buildDependencies wires the repositories, credential machinery, view
// pipelines and blob storage into the handler dependency set.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	accounts := repositories.NewPostgresAccountRepository(pool)
	sessions := repositories.NewPostgresSessionStore(pool)

	issuer := auth.NewTokenIssuer(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	blobs, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	return handlers.Dependencies{
		Accounts:      accounts,
		Sessions:      auth.NewSessionManager(issuer, sessions),
		Guard:         auth.NewGuard(issuer, accounts),
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Views:         query.NewService(pool),
		Blobs:         blobs,
		AuthLimiter:   middleware.NewKeyedRateLimiter(10, time.Minute, 10, 10*time.Minute),
		UploadLimiter: middleware.NewKeyedRateLimiter(6, time.Minute, 6, 10*time.Minute),
		Cookies: handlers.CookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		},
		ExposeTraces: !cfg.Production(),
	}, nil
}
