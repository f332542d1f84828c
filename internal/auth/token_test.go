package auth_test

import (
	"net/http"
	"testing"

	"ms-hotel/internal/auth"
	"ms-hotel/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestExtractTokenFromRequest(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/api/bookings/pass/verify", nil)

	_, err := auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Basic abc")
	_, err = auth.ExtractTokenFromRequest(req)
	assert.Error(t, err)

	req.Header.Set("Authorization", "Bearer some-token")
	token, err := auth.ExtractTokenFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, "some-token", token)
}

func TestSessionFromJWT(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"sub":                "user-42",
		"preferred_username": "frontdesk",
		"role":               "receptionist",
	})

	session, err := auth.SessionFromJWT(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", session.UserID)
	assert.Equal(t, "frontdesk", session.Username)
	assert.Equal(t, models.RoleReceptionist, session.Role)
}

func TestSessionFromJWTMissingSubject(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"preferred_username": "nobody",
	})

	_, err := auth.SessionFromJWT(raw)
	assert.Error(t, err)
}

func TestSessionFromJWTGarbage(t *testing.T) {
	_, err := auth.SessionFromJWT("")
	assert.Error(t, err)

	_, err = auth.SessionFromJWT("not.a.jwt")
	assert.Error(t, err)
}
