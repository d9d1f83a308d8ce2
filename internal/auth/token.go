package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/accounts-be/internal/models"
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Claims is the JWT payload for both token kinds.
type Claims struct {
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful credential check yields.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenManager issues and verifies HS256 JWTs. It holds no mutable state.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customises a TokenManager.
type Option func(*TokenManager)

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(t *TokenManager) { t.now = now }
}

// NewTokenManager creates a manager with the provided secret, issuer, and lifetimes.
func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenManager {
	t := &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// IssuePair mints an access and a refresh token for the account.
func (t *TokenManager) IssuePair(account models.Account) (TokenPair, error) {
	id := Identity{AccountID: account.ID, Username: account.Username}
	access, accessExp, err := t.generate(id, AccessToken, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := t.generate(id, RefreshToken, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh, AccessExpiresAt: accessExp, RefreshExpiresAt: refreshExp}, nil
}

// IssueAccess mints a single access token, expiring accessTTL from now.
func (t *TokenManager) IssueAccess(id Identity) (string, time.Time, error) {
	return t.generate(id, AccessToken, t.accessTTL)
}

// Authenticate verifies an access token and resolves its identity.
func (t *TokenManager) Authenticate(raw string) (Identity, error) {
	return t.Verify(raw, AccessToken)
}

// Verify checks signature, expiry, issuer and token type. Signature
// failures yield ErrBadSignature, elapsed expiry ErrExpired, anything else
// ErrInvalidToken.
func (t *TokenManager) Verify(raw string, want TokenType) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(t.issuer),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Identity{}, ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return Identity{}, ErrExpired
	default:
		return Identity{}, ErrInvalidToken
	}

	if claims.TokenType != want {
		return Identity{}, ErrInvalidToken
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{AccountID: accountID, Username: claims.Username}, nil
}

func (t *TokenManager) generate(id Identity, kind TokenType, ttl time.Duration) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(ttl)
	claims := Claims{
		Username:  id.Username,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   strconv.FormatInt(id.AccountID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, exp, nil
}
