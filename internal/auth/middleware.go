package auth

import (
	"context"
	"fmt"
	"ms-hotel/internal/models"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

type contextKey string

const sessionKey contextKey = "session"

// Middleware verifies the bearer token against the OIDC issuer and threads
// the resulting Session through the request context. Handlers pass that
// session explicitly into every policy check; there is no ambient
// current-user state.
func Middleware(issuer string, cache *RedisSessionCache) func(http.Handler) http.Handler {
	if issuer == "" {
		panic("OIDC_ISSUER env var not set")
	}

	provider, err := oidc.NewProvider(context.Background(), issuer)
	if err != nil {
		panic(fmt.Sprintf("Failed to create OIDC provider: %v", err))
	}

	// Verifier (SkipClientIDCheck → no client ID required)
	verifier := provider.Verifier(&oidc.Config{
		SkipClientIDCheck: true,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Expect "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}
			rawToken := parts[1]

			// Cached sessions skip the issuer round-trip
			if cache != nil {
				if session, err := cache.GetSession(r.Context(), rawToken); err == nil && session != nil {
					next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
					return
				}
			}

			idToken, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid token: %v", err), http.StatusUnauthorized)
				return
			}

			var claims struct {
				Sub      string `json:"sub"`
				Username string `json:"preferred_username"`
				Role     string `json:"role"`
			}
			if err := idToken.Claims(&claims); err != nil {
				http.Error(w, "failed to parse claims", http.StatusUnauthorized)
				return
			}

			session := &models.Session{
				UserID:   claims.Sub,
				Username: claims.Username,
				Role:     models.Role(claims.Role),
			}

			if cache != nil {
				_ = cache.SetSession(r.Context(), rawToken, session, idToken.Expiry)
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFrom extracts the session placed by the middleware; nil when the
// caller never authenticated.
func SessionFrom(ctx context.Context) *models.Session {
	if session, ok := ctx.Value(sessionKey).(*models.Session); ok {
		return session
	}
	return nil
}
