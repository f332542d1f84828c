package auth

import (
	"errors"
	"fmt"
	"ms-hotel/internal/models"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ExtractTokenFromRequest extracts a JWT token from an HTTP request's
// Authorization header.
func ExtractTokenFromRequest(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header is missing")
	}

	// Bearer token format: "Bearer {token}"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("authorization header format must be 'Bearer {token}'")
	}

	return parts[1], nil
}

// SessionFromJWT builds a Session from a JWT's claims without contacting the
// issuer. The signature is not validated here; callers on a verified path
// must go through the OIDC middleware instead.
func SessionFromJWT(tokenString string) (*models.Session, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("subject claim not found in token")
	}

	session := &models.Session{UserID: sub}
	if username, ok := claims["preferred_username"].(string); ok {
		session.Username = username
	}
	if role, ok := claims["role"].(string); ok {
		session.Role = models.Role(role)
	}
	return session, nil
}
