package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_SessionRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Minute)

	tok, exp, err := m.IssueSessionToken("u1", "a@x.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, PurposeSession, claims.Purpose)
}

func TestJWTManager_VerificationToken(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Minute)

	tok, _, err := m.IssueVerificationToken("a@x.com")
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, PurposeVerification, claims.Purpose)
	assert.Empty(t, claims.UserID)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", -time.Minute, -time.Minute)

	tok, _, err := m.IssueVerificationToken("a@x.com")
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_Invalid(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Hour)
	other := NewJWTManager("other", time.Hour, time.Hour)

	tok, _, err := other.IssueSessionToken("u1", "a@x.com")
	require.NoError(t, err)

	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestJWTManager_TokensAreUnique(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Hour)

	a, _, err := m.IssueVerificationToken("a@x.com")
	require.NoError(t, err)
	b, _, err := m.IssueVerificationToken("a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
