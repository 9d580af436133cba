package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/videotube/backend/internal/db"
	"github.com/videotube/backend/internal/models"
)

// AccountRepository defines the data access contract for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	FindByLogin(ctx context.Context, usernameOrEmail string) (models.Account, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url, key string) error
	UpdateCover(ctx context.Context, id, url, key string) error
	AddToWatchHistory(ctx context.Context, accountID, videoID string) error
}

const accountColumns = `
        id, username, email, full_name, password_hash,
        avatar_url, avatar_key, cover_url, cover_key,
        COALESCE(refresh_token, ''), created_at, updated_at`

// PostgresAccountRepository provides PostgreSQL-backed persistence for accounts.
type PostgresAccountRepository struct {
	pool db.Pool
}

// NewPostgresAccountRepository constructs an account repository backed by PostgreSQL.
func NewPostgresAccountRepository(pool db.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// Create persists a new account record.
func (r *PostgresAccountRepository) Create(ctx context.Context, account models.Account) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO accounts (id, username, email, full_name, password_hash,
                              avatar_url, avatar_key, cover_url, cover_key,
                              created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, account.ID, account.Username, account.Email, account.FullName, account.PasswordHash,
		account.AvatarURL, account.AvatarKey, account.CoverURL, account.CoverKey,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		if translated := translateConstraint(err); errors.Is(translated, ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// FindByID fetches an account by its identifier.
func (r *PostgresAccountRepository) FindByID(ctx context.Context, id string) (models.Account, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByUsername fetches an account by its unique username.
func (r *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (models.Account, error) {
	return r.findOne(ctx, `WHERE username = $1`, username)
}

// FindByLogin fetches an account by username or email, whichever matches.
func (r *PostgresAccountRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (models.Account, error) {
	return r.findOne(ctx, `WHERE username = $1 OR email = $1`, usernameOrEmail)
}

func (r *PostgresAccountRepository) findOne(ctx context.Context, where string, arg any) (models.Account, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg)

	var a models.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FullName, &a.PasswordHash,
		&a.AvatarURL, &a.AvatarKey, &a.CoverURL, &a.CoverKey,
		&a.RefreshToken, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("select account: %w", err)
	}
	return a, nil
}

// UpdateDetails modifies the display name and email of an account.
func (r *PostgresAccountRepository) UpdateDetails(ctx context.Context, id, fullName, email string) error {
	return r.update(ctx, `
        UPDATE accounts SET full_name = $2, email = $3, updated_at = $4
        WHERE id = $1
    `, id, fullName, email, time.Now().UTC())
}

// UpdatePassword replaces the stored password digest.
func (r *PostgresAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, `
        UPDATE accounts SET password_hash = $2, updated_at = $3
        WHERE id = $1
    `, id, passwordHash, time.Now().UTC())
}

// UpdateAvatar replaces the avatar blob reference.
func (r *PostgresAccountRepository) UpdateAvatar(ctx context.Context, id, url, key string) error {
	return r.update(ctx, `
        UPDATE accounts SET avatar_url = $2, avatar_key = $3, updated_at = $4
        WHERE id = $1
    `, id, url, key, time.Now().UTC())
}

// UpdateCover replaces the cover-image blob reference.
func (r *PostgresAccountRepository) UpdateCover(ctx context.Context, id, url, key string) error {
	return r.update(ctx, `
        UPDATE accounts SET cover_url = $2, cover_key = $3, updated_at = $4
        WHERE id = $1
    `, id, url, key, time.Now().UTC())
}

func (r *PostgresAccountRepository) update(ctx context.Context, sql string, args ...any) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		if translated := translateConstraint(err); errors.Is(translated, ErrConflict) {
			return ErrConflict
		}
		return fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToWatchHistory records that the account watched the video. Re-watching
// refreshes the watched-at timestamp instead of adding a duplicate entry.
func (r *PostgresAccountRepository) AddToWatchHistory(ctx context.Context, accountID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (account_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (account_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, accountID, videoID, time.Now().UTC())
	if err != nil {
		if translated := translateConstraint(err); errors.Is(translated, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("upsert watch history: %w", err)
	}
	return nil
}
