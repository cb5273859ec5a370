package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectsearch/internal/model"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), Options{Addr: mr.Addr(), TTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := Key("snap1", "3BHK in Pune", false, 5)

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))

	resp := &model.QueryResponse{
		SearchID: "abc",
		Filters:  model.Filter{City: model.StringPtr("pune"), BHK: model.IntPtr(3)},
		Summary:  "1 matching project found.",
		Parser:   "rule-based",
	}
	require.NoError(t, c.Set(ctx, key, resp))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, resp.Summary, got.Summary)
	assert.Equal(t, "pune", *got.Filters.City)
	assert.Equal(t, 3, *got.Filters.BHK)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss), "entries expire after the ttl")
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("snap1", "3BHK  in Pune", false, 5), Key("snap1", " 3bhk in pune ", false, 5))
	assert.NotEqual(t, Key("snap1", "3bhk in pune", false, 5), Key("snap1", "3bhk in pune", true, 5))
	assert.NotEqual(t, Key("snap1", "3bhk in pune", false, 5), Key("snap1", "3bhk in pune", false, 10))
	assert.NotEqual(t, Key("snap1", "3bhk in pune", false, 5), Key("snap2", "3bhk in pune", false, 5))
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}
