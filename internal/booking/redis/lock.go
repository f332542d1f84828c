package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"log"

	"github.com/go-redis/redis/v8"
)

// Redis guards the availability check-then-insert window: the front desk
// holds a short lock on the room while the booking transaction commits.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getRoomLockDuration returns the room lock TTL from the environment or the
// default value.
func (r *Redis) getRoomLockDuration() time.Duration {
	defaultDuration := 30 * time.Second

	lockTTLStr := os.Getenv("ROOM_LOCK_TTL_SECONDS")
	if lockTTLStr == "" {
		return defaultDuration
	}

	lockTTLSec, err := strconv.Atoi(lockTTLStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid ROOM_LOCK_TTL_SECONDS value '" + lockTTLStr + "', using default 30 seconds")
		return defaultDuration
	}

	return time.Duration(lockTTLSec) * time.Second
}

func lockKey(roomID int64) string {
	return fmt.Sprintf("room_lock:%d", roomID)
}

// LockRoom takes the lock for the given token. Returns false when another
// caller already holds it.
func (r *Redis) LockRoom(roomID int64, token string) (bool, error) {
	return r.Client.SetNX(context.Background(), lockKey(roomID), token, r.getRoomLockDuration()).Result()
}

// UnlockRoom releases the lock, but only for the token that took it.
func (r *Redis) UnlockRoom(roomID int64, token string) error {
	ctx := context.Background()
	key := lockKey(roomID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == token {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}

// IsRoomLocked reports whether a lock is currently held, without taking it.
func (r *Redis) IsRoomLocked(roomID int64) (bool, error) {
	_, err := r.Client.Get(context.Background(), lockKey(roomID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
