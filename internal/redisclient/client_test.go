package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *Client {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("Integration test - set REDIS_TEST_ADDR to run")
	}

	c, err := NewClient(addr, "", 15)
	require.NoError(t, err)
	t.Cleanup(func() {
		c.GetClient().FlushDB(context.Background())
		c.Close()
	})
	return c
}

func TestLockName(t *testing.T) {
	assert.Equal(t, "lock:schema-migrate", lockName("schema-migrate"))
}

func TestLockIsExclusive(t *testing.T) {
	a := testClient(t)
	b, err := NewClient(os.Getenv("REDIS_TEST_ADDR"), "", 15)
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()

	ok, err := a.AcquireLock(ctx, "schema-migrate", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.AcquireLock(ctx, "schema-migrate", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// b never held the lock, so its release must not free it
	require.NoError(t, b.ReleaseLock(ctx, "schema-migrate"))
	ok, err = b.AcquireLock(ctx, "schema-migrate", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, a.ReleaseLock(ctx, "schema-migrate"))
	ok, err = b.AcquireLock(ctx, "schema-migrate", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, b.ReleaseLock(ctx, "schema-migrate"))
}

func TestSchemaVersion(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	v, err := c.GetSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, c.SetSchemaVersion(ctx, "0010_foreign_key_indexes"))
	v, err = c.GetSchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0010_foreign_key_indexes", v)
}
