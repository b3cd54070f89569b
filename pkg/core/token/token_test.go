package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-gateway/pkg/common/config"
)

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(config.JWTAuthConfig{
		Secret:         "test-secret",
		SigningMethod:  "HS256",
		Issuer:         "admin-gateway",
		ExpireDuration: time.Hour,
		RefreshExpire:  24 * time.Hour,
	})
	require.NoError(t, err)
	return iss
}

func TestIssueAndParsePair(t *testing.T) {
	iss := newIssuer(t)

	pair, err := iss.IssuePair(7, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	access, err := iss.Parse(pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(7), access.UserID)
	assert.Equal(t, "alice", access.Username)
	assert.Equal(t, "7", access.Subject)
	assert.NotEmpty(t, access.ID)

	refresh, err := iss.Parse(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestParseRejectsWrongType(t *testing.T) {
	iss := newIssuer(t)
	pair, err := iss.IssuePair(1, "alice")
	require.NoError(t, err)

	_, err = iss.Parse(pair.Access, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Refresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := newIssuer(t)
	start := time.Now()
	iss.SetClock(func() time.Time { return start })
	pair, err := iss.IssuePair(1, "alice")
	require.NoError(t, err)

	iss.SetClock(func() time.Time { return start.Add(2 * time.Hour) })
	_, err = iss.Parse(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// refresh still valid, and yields a fresh access token
	access, err := iss.Refresh(pair.Refresh)
	require.NoError(t, err)
	claims, err := iss.Parse(access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	iss := newIssuer(t)
	other, err := NewIssuer(config.JWTAuthConfig{
		Secret: "other", SigningMethod: "HS256", Issuer: "admin-gateway",
		ExpireDuration: time.Hour, RefreshExpire: time.Hour,
	})
	require.NoError(t, err)

	pair, err := other.IssuePair(1, "alice")
	require.NoError(t, err)
	_, err = iss.Parse(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-jwt", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	iss := newIssuer(t)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{TokenType: TypeAccess})
	s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Parse(s, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuerValidation(t *testing.T) {
	_, err := NewIssuer(config.JWTAuthConfig{Secret: "x", SigningMethod: "RS256"})
	assert.Error(t, err)
	_, err = NewIssuer(config.JWTAuthConfig{SigningMethod: "HS256"})
	assert.Error(t, err)
}
