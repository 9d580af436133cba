package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/videotube/backend/internal/auth"
	"github.com/videotube/backend/internal/db"
)

// PostgresSessionStore keeps the single outstanding refresh token on the
// account row itself, mirroring the one-session-per-account model.
type PostgresSessionStore struct {
	pool db.Pool
}

// NewPostgresSessionStore constructs a session store backed by PostgreSQL.
func NewPostgresSessionStore(pool db.Pool) *PostgresSessionStore {
	return &PostgresSessionStore{pool: pool}
}

// SetRefreshToken overwrites the stored refresh token for the account.
func (s *PostgresSessionStore) SetRefreshToken(ctx context.Context, accountID, token string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts SET refresh_token = $2, updated_at = $3
        WHERE id = $1
    `, accountID, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

// ReplaceRefreshToken performs the rotation as one conditional update. The
// WHERE clause is the compare half of the compare-and-swap: when the stored
// token is not the presented one, zero rows update and no rotation happens.
func (s *PostgresSessionStore) ReplaceRefreshToken(ctx context.Context, accountID, old, new string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE accounts SET refresh_token = $3, updated_at = $4
        WHERE id = $1 AND refresh_token = $2
    `, accountID, old, new, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replace refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrRefreshTokenMismatch
	}
	return nil
}

// ClearRefreshToken logs the account out everywhere. Clearing an account with
// no stored token still succeeds.
func (s *PostgresSessionStore) ClearRefreshToken(ctx context.Context, accountID string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `
        UPDATE accounts SET refresh_token = NULL, updated_at = $2
        WHERE id = $1
    `, accountID, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}
