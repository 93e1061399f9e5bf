package redisclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const schemaVersionKey = "schema:version"

// releaseLockScript deletes the lock only while it still holds our token, so
// a holder whose TTL expired cannot release somebody else's lock.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	rdb *redis.Client

	mu     sync.Mutex
	tokens map[string]string
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, tokens: make(map[string]string)}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func lockName(lockKey string) string {
	return fmt.Sprintf("lock:%s", lockKey)
}

// AcquireLock acquires a distributed lock. It reports false without error
// when another holder owns the lock.
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	token := uuid.New().String()
	ok, err := c.rdb.SetNX(ctx, lockName(lockKey), token, ttl).Result()
	if err != nil || !ok {
		return false, err
	}

	c.mu.Lock()
	c.tokens[lockKey] = token
	c.mu.Unlock()
	return true, nil
}

// ReleaseLock releases a lock previously acquired by this client
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	c.mu.Lock()
	token, ok := c.tokens[lockKey]
	delete(c.tokens, lockKey)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return releaseLockScript.Run(ctx, c.rdb, []string{lockName(lockKey)}, token).Err()
}

// SetSchemaVersion records the ID of the last applied migration step
func (c *Client) SetSchemaVersion(ctx context.Context, migrationID string) error {
	return c.rdb.Set(ctx, schemaVersionKey, migrationID, 0).Err()
}

// GetSchemaVersion returns the last recorded migration step, or "" when
// none has been recorded yet.
func (c *Client) GetSchemaVersion(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, schemaVersionKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}
