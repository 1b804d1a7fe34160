package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	tokens, err := NewTokens(Config{Secret: "test-secret", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	require.NoError(t, err)
	return tokens
}

func TestNewTokensRequiresSecret(t *testing.T) {
	_, err := NewTokens(Config{})
	assert.Error(t, err)
}

func TestIssuePairRoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	pair, err := tokens.IssuePair(42)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	id, err := tokens.Parse(pair.Access, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	id, err = tokens.Parse(pair.Refresh, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestParseRejects(t *testing.T) {
	tokens := newTestTokens(t)
	pair, err := tokens.IssuePair(7)
	require.NoError(t, err)

	other, err := NewTokens(Config{Secret: "other-secret"})
	require.NoError(t, err)
	foreign, err := other.IssueAccess(7)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Type: AccessToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	accessParts := strings.Split(pair.Access, ".")
	refreshParts := strings.Split(pair.Refresh, ".")
	tampered := strings.Join([]string{accessParts[0], refreshParts[1], accessParts[2]}, ".")

	tests := []struct {
		name  string
		token string
		want  TokenType
	}{
		{"refresh used as access", pair.Refresh, AccessToken},
		{"access used as refresh", pair.Access, RefreshToken},
		{"garbage", "not-a-token", AccessToken},
		{"empty", "", AccessToken},
		{"tampered", tampered, RefreshToken},
		{"foreign secret", foreign, AccessToken},
		{"alg none", unsigned, AccessToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token, tt.want)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestParseExpired(t *testing.T) {
	tokens := newTestTokens(t)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	access, err := tokens.IssueAccess(1)
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.Parse(access, AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	tokens := newTestTokens(t)
	a, err := tokens.IssueAccess(1)
	require.NoError(t, err)
	b, err := tokens.IssueAccess(1)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 3, len(strings.Split(a, ".")))
}

func TestParseChecksIssuer(t *testing.T) {
	portal, err := NewTokens(Config{Secret: "shared", Issuer: "course-portal"})
	require.NoError(t, err)
	billing, err := NewTokens(Config{Secret: "shared", Issuer: "billing"})
	require.NoError(t, err)
	anonymous, err := NewTokens(Config{Secret: "shared"})
	require.NoError(t, err)

	own, err := portal.IssueAccess(3)
	require.NoError(t, err)
	id, err := portal.Parse(own, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	foreign, err := billing.IssueAccess(3)
	require.NoError(t, err)
	_, err = portal.Parse(foreign, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unstamped, err := anonymous.IssueAccess(3)
	require.NoError(t, err)
	_, err = portal.Parse(unstamped, AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
