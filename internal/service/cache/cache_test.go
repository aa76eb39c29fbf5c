package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "forever", []byte("x"), 0))

	b, ok, err := c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.GetBytes(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	_, ok, _ = c.GetBytes(ctx, "forever")
	assert.True(t, ok)

	_, ok, _ = c.GetBytes(ctx, "missing")
	assert.False(t, ok)
}

func TestForecastKey(t *testing.T) {
	assert.Equal(t, "forecast:AAPL:next", ForecastKey("AAPL", 0))
	assert.Equal(t, "forecast:AAPL:30", ForecastKey("AAPL", 30))
	assert.Equal(t, "forecast:_default:next", ForecastKey("", -1))
}

func TestTTLCacheEvictsWhenFull(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCacheSize(2)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetBytes(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.SetBytes(ctx, "b", []byte("2"), time.Hour))
	require.NoError(t, c.SetBytes(ctx, "c", []byte("3"), time.Hour))
	assert.Equal(t, 2, c.Len())

	_, ok, _ := c.GetBytes(ctx, "a")
	assert.False(t, ok, "soonest-expiring entry is evicted")
	_, ok, _ = c.GetBytes(ctx, "c")
	assert.True(t, ok)

	// overwriting an existing key never evicts
	require.NoError(t, c.SetBytes(ctx, "b", []byte("22"), time.Hour))
	assert.Equal(t, 2, c.Len())

	now = now.Add(2 * time.Hour)
	require.NoError(t, c.SetBytes(ctx, "d", []byte("4"), 0))
	assert.Equal(t, 1, c.Len())
}
