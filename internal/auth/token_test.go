package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/accounts-be/internal/models"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestManager(clock *fakeClock) *TokenManager {
	return NewTokenManager("super-secret", "accounts-test", 180*time.Minute, 24*time.Hour, WithClock(clock.Now))
}

func baseTime() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

var alice = models.Account{ID: 42, Username: "alice"}

func TestIssuePair_ClaimsAndLifetimes(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)

	pair, err := tm.IssuePair(alice)
	require.NoError(t, err)
	assert.Equal(t, baseTime().Add(180*time.Minute), pair.AccessExpiresAt)
	assert.Equal(t, baseTime().Add(24*time.Hour), pair.RefreshExpiresAt)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(pair.Access, claims)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "accounts-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(baseTime()))
}

func TestAuthenticate_AcceptedUntilExpiry(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)
	pair, err := tm.IssuePair(alice)
	require.NoError(t, err)

	id, err := tm.Authenticate(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, Identity{AccountID: 42, Username: "alice"}, id)

	clock.now = pair.AccessExpiresAt.Add(-time.Second)
	_, err = tm.Authenticate(pair.Access)
	assert.NoError(t, err)

	clock.now = pair.AccessExpiresAt
	_, err = tm.Authenticate(pair.Access)
	assert.ErrorIs(t, err, ErrExpired)

	clock.Advance(time.Second)
	_, err = tm.Authenticate(pair.Access)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestAuthenticate_WrongSecret(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	pair, err := newTestManager(clock).IssuePair(alice)
	require.NoError(t, err)

	other := NewTokenManager("other-secret", "accounts-test", time.Hour, time.Hour, WithClock(clock.Now))
	_, err = other.Authenticate(pair.Access)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestAuthenticate_ExpiredWithBadSignatureIsRejected(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	pair, err := newTestManager(clock).IssuePair(alice)
	require.NoError(t, err)

	clock.Advance(48 * time.Hour)
	other := NewTokenManager("other-secret", "accounts-test", time.Hour, time.Hour, WithClock(clock.Now))
	_, err = other.Authenticate(pair.Access)
	assert.True(t, IsAuthError(err))
}

func TestAuthenticate_RejectsRefreshToken(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)
	pair, err := tm.IssuePair(alice)
	require.NoError(t, err)

	_, err = tm.Authenticate(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	id, err := tm.Verify(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id.AccountID)
}

func TestAuthenticate_ForeignIssuer(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	foreign := NewTokenManager("super-secret", "someone-else", time.Hour, time.Hour, WithClock(clock.Now))
	pair, err := foreign.IssuePair(alice)
	require.NoError(t, err)

	_, err = newTestManager(clock).Authenticate(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_MalformedAndUnsigned(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)

	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := tm.Authenticate(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		TokenType: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "accounts-test",
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(baseTime().Add(time.Hour)),
		},
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Authenticate(raw)
	assert.True(t, IsAuthError(err))
}

func TestAuthenticate_MissingSubject(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "accounts-test",
			ExpiresAt: jwt.NewNumericDate(baseTime().Add(time.Hour)),
		},
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = tm.Authenticate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_MissingExpiry(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		TokenType:        AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "accounts-test", Subject: "42"},
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = tm.Authenticate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueAccess_UniqueIDs(t *testing.T) {
	clock := &fakeClock{now: baseTime()}
	tm := newTestManager(clock)
	id := Identity{AccountID: 42, Username: "alice"}

	a, _, err := tm.IssueAccess(id)
	require.NoError(t, err)
	b, _, err := tm.IssueAccess(id)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123", hash)
	assert.True(t, CheckPassword(hash, "pw123"))
	assert.False(t, CheckPassword(hash, "pw124"))

	again, err := HashPassword("pw123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salt must differ between hashes")
}
