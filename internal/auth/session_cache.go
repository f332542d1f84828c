package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"ms-hotel/internal/models"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// sessionKeyPrefix namespaces cached sessions in Redis.
	sessionKeyPrefix = "session:"
	// SessionExpiryBuffer shortens the cache TTL relative to token expiry so
	// a cached session never outlives its token.
	SessionExpiryBuffer = 60
)

// RedisSessionCache keeps verified sessions keyed by a hash of the bearer
// token, saving an OIDC round-trip per request.
type RedisSessionCache struct {
	Client *redis.Client
}

func NewRedisSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{Client: client}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

// GetSession returns the cached session for the token, or nil on a miss.
func (c *RedisSessionCache) GetSession(ctx context.Context, token string) (*models.Session, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	sessionJSON, err := c.Client.Get(ctx, cacheKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}

	return &session, nil
}

// SetSession stores the session until shortly before the token expires.
func (c *RedisSessionCache) SetSession(ctx context.Context, token string, session *models.Session, expiry time.Time) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	ttl := time.Until(expiry) - SessionExpiryBuffer*time.Second
	if ttl <= 0 {
		return nil // token about to expire; not worth caching
	}

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := c.Client.Set(ctx, cacheKey(token), sessionJSON, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}
