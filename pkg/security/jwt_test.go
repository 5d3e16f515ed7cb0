package security

import (
	"testing"
	"time"

	"userhub/admin-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *model.User {
	changed := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	return &model.User{
		ID:                "user-123",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		Email:             "ada@example.com",
		Role:              model.RoleAdmin,
		IsActive:          true,
		EmailVerified:     true,
		PasswordChangedAt: &changed,
	}
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))
	u := testUser()

	tok, err := issuer.Generate(u, time.Hour)
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)

	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, u.Role, claims.Role)
	assert.Equal(t, u.EmailVerified, claims.EmailVerified)
	require.NotNil(t, claims.PasswordChangedAt)
	assert.Equal(t, u.PasswordChangedAt.Format(time.RFC3339), *claims.PasswordChangedAt)

	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestGenerateDefaultTTL(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	tok, err := issuer.Generate(testUser(), 0)
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)

	assert.Equal(t, DefaultTokenTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestVerifyExpired(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	tok, err := issuer.Generate(testUser(), -time.Minute)
	require.NoError(t, err)

	_, err = issuer.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("right-secret"))

	tok, err := issuer.Generate(testUser(), time.Hour)
	require.NoError(t, err)

	_, err = NewIssuer([]byte("wrong-secret")).Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	_, err := issuer.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeNeverThrows(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	assert.Nil(t, issuer.Decode(""))
	assert.Nil(t, issuer.Decode("garbage"))
	assert.Nil(t, issuer.Decode("a.b.c"))
}

func TestDecodeMatchesVerify(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))
	u := testUser()

	tok, err := issuer.Generate(u, time.Hour)
	require.NoError(t, err)

	verified, err := issuer.Verify(tok)
	require.NoError(t, err)

	decoded := issuer.Decode(tok)
	require.NotNil(t, decoded)
	assert.Equal(t, verified, decoded)
}

func TestIsExpiredFailClosed(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	// Anything undecodable counts as expired
	assert.True(t, issuer.IsExpired("garbage"))

	tok, err := issuer.Generate(testUser(), time.Hour)
	require.NoError(t, err)
	assert.False(t, issuer.IsExpired(tok))

	expired, err := issuer.Generate(testUser(), -time.Minute)
	require.NoError(t, err)
	assert.True(t, issuer.IsExpired(expired))
}

func TestExpirationAndTimeLeft(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	assert.Nil(t, issuer.Expiration("garbage"))
	assert.Equal(t, time.Duration(0), issuer.TimeLeft("garbage"))

	tok, err := issuer.Generate(testUser(), time.Hour)
	require.NoError(t, err)

	exp := issuer.Expiration(tok)
	require.NotNil(t, exp)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *exp, 5*time.Second)

	left := issuer.TimeLeft(tok)
	assert.Greater(t, left, 55*time.Minute)
	assert.LessOrEqual(t, left, time.Hour)

	expired, err := issuer.Generate(testUser(), -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), issuer.TimeLeft(expired))
}

func TestValidClaims(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"))

	tok, err := issuer.Generate(testUser(), time.Hour)
	require.NoError(t, err)

	claims, err := issuer.Verify(tok)
	require.NoError(t, err)
	assert.True(t, ValidClaims(claims))

	assert.False(t, ValidClaims(nil))

	missingID := *claims
	missingID.UserID = ""
	assert.False(t, ValidClaims(&missingID))

	badRole := *claims
	badRole.Role = "superuser"
	assert.False(t, ValidClaims(&badRole))

	// A nil PasswordChangedAt is fine, the user may never have rotated
	noRotation := *claims
	noRotation.PasswordChangedAt = nil
	assert.True(t, ValidClaims(&noRotation))
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, IsAdminRole(model.RoleAdmin))
	assert.False(t, IsAdminRole(model.RoleUser))

	assert.True(t, IsUserRole(model.RoleUser))
	assert.True(t, IsUserRole(model.RoleAdmin))
	assert.False(t, IsUserRole("guest"))
}
