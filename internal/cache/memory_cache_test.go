package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTripAndExpiry(t *testing.T) {
	c := NewMemoryCache(8)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", []string{"a", "b"}, time.Minute))

	var got []string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, got)

	now = now.Add(time.Minute)
	hit, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCacheDelPrefix(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()
	for _, k := range []string{"admin:applications:t1:all:100", "admin:applications:t1:new:100", "admin:applications:t2:all:100"} {
		require.NoError(t, c.SetJSON(ctx, k, 1, 0))
	}

	require.NoError(t, c.DelPrefix(ctx, "admin:applications:t1:"))

	var v int
	hit, _ := c.GetJSON(ctx, "admin:applications:t1:all:100", &v)
	assert.False(t, hit)
	hit, _ = c.GetJSON(ctx, "admin:applications:t2:all:100", &v)
	assert.True(t, hit)
}

func TestNopAlwaysMisses(t *testing.T) {
	var c Cache = Nop{}
	require.NoError(t, c.SetJSON(context.Background(), "k", 1, time.Minute))
	var v int
	hit, err := c.GetJSON(context.Background(), "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}
