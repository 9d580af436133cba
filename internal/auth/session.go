package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/videotube/backend/internal/models"
)

var (
	// ErrSessionNotFound indicates the account has no outstanding refresh token.
	ErrSessionNotFound = errors.New("auth: session not found")
	// ErrRefreshTokenMismatch indicates the presented refresh token is not the
	// single currently-valid one for the account. The token was either rotated
	// out by a newer refresh or revoked by logout; in both cases the request
	// must fail without issuing new credentials.
	ErrRefreshTokenMismatch = errors.New("auth: refresh token superseded or revoked")
)

// SessionStore persists the single currently-valid refresh token per account.
type SessionStore interface {
	// SetRefreshToken unconditionally stores a new refresh token, superseding
	// any prior one. Used on login.
	SetRefreshToken(ctx context.Context, accountID, token string) error
	// ReplaceRefreshToken swaps old for new in a single atomic update. It
	// returns ErrRefreshTokenMismatch when the stored token is not old, so two
	// racing refresh calls can never both rotate.
	ReplaceRefreshToken(ctx context.Context, accountID, old, new string) error
	// ClearRefreshToken removes the stored token. Clearing an already-cleared
	// session is not an error; logout is idempotent.
	ClearRefreshToken(ctx context.Context, accountID string) error
}

// SessionManager drives the login / refresh / logout lifecycle on top of a
// TokenIssuer and a SessionStore.
type SessionManager struct {
	issuer *TokenIssuer
	store  SessionStore
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(issuer *TokenIssuer, store SessionStore) *SessionManager {
	if issuer == nil || store == nil {
		panic("auth: session manager requires an issuer and a store")
	}
	return &SessionManager{issuer: issuer, store: store}
}

// Login issues a fresh access/refresh pair and stores the refresh token,
// invalidating whichever refresh token the account held before.
func (m *SessionManager) Login(ctx context.Context, accountID string) (models.TokenPair, error) {
	pair, err := m.issuePair(accountID)
	if err != nil {
		return models.TokenPair{}, err
	}
	if err := m.store.SetRefreshToken(ctx, accountID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return pair, nil
}

// Rotate exchanges a presented refresh token for a new pair. The swap in the
// store is atomic: if the presented token is not the stored one (stale, reused
// after rotation, or revoked) no rotation occurs and ErrRefreshTokenMismatch
// is returned.
func (m *SessionManager) Rotate(ctx context.Context, presented string) (models.TokenPair, error) {
	claims, err := m.issuer.Verify(presented, RefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}

	pair, err := m.issuePair(claims.AccountID())
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := m.store.ReplaceRefreshToken(ctx, claims.AccountID(), presented, pair.RefreshToken); err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Revoke clears the stored refresh token, forcing the account to log in again.
// Revoking an already-revoked session succeeds.
func (m *SessionManager) Revoke(ctx context.Context, accountID string) error {
	return m.store.ClearRefreshToken(ctx, accountID)
}

func (m *SessionManager) issuePair(accountID string) (models.TokenPair, error) {
	access, accessExp, err := m.issuer.Issue(accountID, AccessToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, refreshExp, err := m.issuer.Issue(accountID, RefreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
