package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenMalformed indicates the token could not be parsed at all.
	ErrTokenMalformed = errors.New("auth: token malformed")
	// ErrTokenSignature indicates the signature does not match the class secret.
	ErrTokenSignature = errors.New("auth: token signature invalid")
)

// TokenClass distinguishes short-lived access tokens from long-lived refresh
// tokens. Each class is signed with its own secret, so leaking one secret
// never allows forging tokens of the other class.
type TokenClass int

const (
	AccessToken TokenClass = iota
	RefreshToken
)

func (c TokenClass) String() string {
	if c == RefreshToken {
		return "refresh"
	}
	return "access"
}

// Claims is the verified payload carried by both token classes.
type Claims struct {
	jwt.RegisteredClaims
}

// AccountID returns the subject the token was issued for.
func (c Claims) AccountID() string {
	return c.Subject
}

// TokenIssuer creates and verifies signed, time-bound session credentials.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewTokenIssuer constructs an issuer with distinct per-class secrets.
func NewTokenIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		panic("auth: token secrets must not be empty")
	}
	return &TokenIssuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue creates a signed HS256 token of the given class for the account.
func (i *TokenIssuer) Issue(accountID string, class TokenClass) (token string, expiresAt time.Time, err error) {
	if accountID == "" {
		return "", time.Time{}, errors.New("auth: account id must be provided")
	}

	now := i.now()
	ttl := i.accessTTL
	if class == RefreshToken {
		ttl = i.refreshTTL
	}
	expiresAt = now.Add(ttl)

	// A unique token ID keeps two same-second issuances for the same account
	// from being byte-identical, which rotation relies on to retire the
	// presented refresh token.
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret(class))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", class, err)
	}
	return signed, expiresAt, nil
}

// Verify parses the token against the secret of the given class and returns
// its claims. Failures are classified so callers can report them precisely.
func (i *TokenIssuer) Verify(token string, class TokenClass) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)

	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret(class), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}
	if claims.Subject == "" {
		return Claims{}, ErrTokenMalformed
	}
	return claims, nil
}

func (i *TokenIssuer) secret(class TokenClass) []byte {
	if class == RefreshToken {
		return i.refreshSecret
	}
	return i.accessSecret
}

func (i *TokenIssuer) now() time.Time {
	if i.NowFunc != nil {
		return i.NowFunc()
	}
	return time.Now().UTC()
}
