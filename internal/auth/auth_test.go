package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"photoshare/internal/models"
)

func TestHashPassword(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)

	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEqual(t, password, hash)

	other, err := HashPassword(password)
	require.NoError(t, err)
	require.NotEqual(t, hash, other, "each hash carries its own salt")
}

func TestCheckPasswordHash(t *testing.T) {
	password := "mySecretPassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	require.True(t, CheckPasswordHash(password, hash), "Password should match the hash")
	require.False(t, CheckPasswordHash("wrongPassword", hash), "Wrong password should not match the hash")
	require.False(t, CheckPasswordHash(password, "not-a-hash"))
}

func TestIssueAndParseSession(t *testing.T) {
	secret := "my_super_secret_key_for_testing"
	user := &models.User{ID: 123, Username: "testuser"}

	tokenString, err := IssueSession(user, secret, 7*24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := ParseSession(tokenString, secret)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Username, claims.Username)
	require.Equal(t, "123", claims.Subject)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	_, err = ParseSession(tokenString, "wrong_secret")
	require.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestParseSession_Expired(t *testing.T) {
	secret := "my_super_secret_key_for_testing"

	claimsExpired := &SessionClaims{
		UserID:   1,
		Username: "late",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Minute)),
			Issuer:    issuer,
		},
	}
	tokenExpired := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsExpired)
	tokenStringExpired, err := tokenExpired.SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseSession(tokenStringExpired, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseSession_WrongIssuer(t *testing.T) {
	secret := "my_super_secret_key_for_testing"

	claims := &SessionClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "file-server",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseSession(token, secret)
	require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}
