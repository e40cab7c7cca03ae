package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager(testSecret, 5*time.Minute, 24*time.Hour)

	pair, err := m.IssuePair(Subject{ID: 42, UUID: "abc", FirstName: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.True(t, pair.RefreshExpiresAt.After(pair.AccessExpiresAt))

	claims, err := m.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "abc", claims.UUID)
	assert.NotEmpty(t, claims.JTI)

	refresh, err := m.Parse(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, claims.JTI, refresh.JTI)
}

func TestTokenManager_RejectsWrongType(t *testing.T) {
	m := NewTokenManager(testSecret, 5*time.Minute, time.Hour)
	pair, err := m.IssuePair(Subject{ID: 1})
	require.NoError(t, err)

	_, err = m.Parse(pair.Access, RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = m.Parse(pair.Refresh, AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenManager_RejectsInvalidTokens(t *testing.T) {
	m := NewTokenManager(testSecret, 5*time.Minute, time.Hour)

	expired := NewTokenManager(testSecret, -time.Minute, time.Hour)
	stale, _, err := expired.IssueAccess(Subject{ID: 1})
	require.NoError(t, err)

	other := NewTokenManager("another-secret-key-12345678901234567890", time.Minute, time.Hour)
	foreign, _, err := other.IssueAccess(Subject{ID: 1})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "1", "typ": "access", "iss": tokenIssuer, "aud": tokenAudience,
		"exp": time.Now().Add(time.Hour).Unix(), "jti": "x",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "malformed.token.here"},
		{"expired", stale},
		{"foreign secret", foreign},
		{"alg none", noneAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token, AccessToken)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerificationSigner_StateBound(t *testing.T) {
	s := NewVerificationSigner(testSecret, time.Hour)

	token, err := s.Sign(7, "unverified")
	require.NoError(t, err)

	assert.True(t, s.Verify(token, 7, "unverified"))
	assert.False(t, s.Verify(token, 7, "verified"), "token must not survive a state change")
	assert.False(t, s.Verify(token, 8, "unverified"), "token is bound to one account")
	assert.False(t, s.Verify("garbage", 7, "unverified"))
}

func TestVerificationSigner_Expiry(t *testing.T) {
	s := NewVerificationSigner(testSecret, time.Hour)
	issuedAt := time.Now()
	s.now = func() time.Time { return issuedAt }

	token, err := s.Sign(1, "unverified")
	require.NoError(t, err)

	s.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	assert.False(t, s.Verify(token, 1, "unverified"))
}

func TestVerificationSigner_NotASessionToken(t *testing.T) {
	s := NewVerificationSigner(testSecret, time.Hour)
	m := NewTokenManager(testSecret, time.Minute, time.Hour)

	token, err := s.Sign(1, "unverified")
	require.NoError(t, err)

	_, err = m.Parse(token, AccessToken)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestRevoker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRevoker(client)
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "blacklist entry expires with the token")

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "already-expired tokens are not stored")
}

func TestRevoker_NilClient(t *testing.T) {
	r := NewRevoker(nil)

	assert.NoError(t, r.Revoke(context.Background(), "jti", time.Now().Add(time.Hour)))
	revoked, err := r.IsRevoked(context.Background(), "jti")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
