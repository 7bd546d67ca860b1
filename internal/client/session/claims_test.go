package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestTokenExpiry_ReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"sub": "u-1", "exp": exp.Unix()})

	got, err := TokenExpiry(token)
	require.NoError(t, err)
	require.True(t, got.Equal(exp), "want %v, got %v", exp, got)
}

func TestTokenExpiry_ExpiredTokenStillReadable(t *testing.T) {
	// The peek is for display only; an already expired token must not error.
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{"exp": exp.Unix()})

	got, err := TokenExpiry(token)
	require.NoError(t, err)
	require.True(t, got.Equal(exp))
}

func TestTokenExpiry_MissingClaim(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{"sub": "u-1"})
	_, err := TokenExpiry(token)
	require.Error(t, err)
}

func TestTokenExpiry_NotAJWT(t *testing.T) {
	_, err := TokenExpiry("opaque-bearer-string")
	require.Error(t, err)
}
