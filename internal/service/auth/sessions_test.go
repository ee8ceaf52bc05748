package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_IssueAndVerify(t *testing.T) {
	s := NewSessionService("secret", time.Hour)

	token, expires, err := s.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, "true", token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)
	assert.NoError(t, s.Verify(token))

	other, _, err := s.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestSessionService_RejectsForgedTokens(t *testing.T) {
	s := NewSessionService("secret", time.Hour)
	token, _, err := s.Issue()
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged := []string{
		"",
		"true",
		"not.a.jwt",
		parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2])),
	}
	for _, f := range forged {
		assert.Error(t, s.Verify(f), "%q", f)
	}

	// Signed with another password.
	otherToken, _, err := NewSessionService("other", time.Hour).Issue()
	require.NoError(t, err)
	assert.Error(t, s.Verify(otherToken))

	// Unsigned token claiming the right issuer.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		ID:        "x",
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Error(t, s.Verify(unsigned))
}

func TestSessionService_Expiry(t *testing.T) {
	s := NewSessionService("secret", time.Hour)
	now := time.Now()
	s.now = func() time.Time { return now }

	token, _, err := s.Issue()
	require.NoError(t, err)
	require.NoError(t, s.Verify(token))

	now = now.Add(2 * time.Hour)
	err = s.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSessionService_Revoke(t *testing.T) {
	s := NewSessionService("secret", time.Hour)
	a, _, err := s.Issue()
	require.NoError(t, err)
	b, _, err := s.Issue()
	require.NoError(t, err)

	s.Revoke(a)
	assert.ErrorIs(t, s.Verify(a), ErrRevoked)
	assert.NoError(t, s.Verify(b))

	s.Revoke("garbage")
	assert.NoError(t, s.Verify(b))
}

func TestSessionService_RevokePrunesExpired(t *testing.T) {
	s := NewSessionService("secret", time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	old, _, err := s.Issue()
	require.NoError(t, err)
	s.Revoke(old)
	require.Len(t, s.revoked, 1)

	now = now.Add(2 * time.Minute)
	fresh, _, err := s.Issue()
	require.NoError(t, err)
	s.Revoke(fresh)
	assert.Len(t, s.revoked, 1)
}

func TestNewSessionService_DefaultTTL(t *testing.T) {
	s := NewSessionService("secret", 0)
	assert.Equal(t, DefaultTTL, s.TTL())
}
