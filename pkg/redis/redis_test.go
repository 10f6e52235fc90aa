package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/earnalert/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{Enabled: false},
	}

	client, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_Disabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(NewDisabled(), "test")

	// Set is a silent no-op
	require.NoError(t, cache.Set(ctx, "key", map[string]string{"a": "b"}, time.Minute))

	// Get is always a miss, never an error
	var dest map[string]string
	found, err := cache.Get(ctx, "key", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSet_Disabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCache(NewDisabled(), "test")

	calls := 0
	var dest string
	err := cache.GetOrSet(ctx, "key", &dest, time.Minute, func() (interface{}, error) {
		calls++
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", dest)
	assert.Equal(t, 1, calls)

	// Without a backing store every call recomputes
	err = cache.GetOrSet(ctx, "key", &dest, time.Minute, func() (interface{}, error) {
		calls++
		return "value", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestCache_GetOrSet_FnError(t *testing.T) {
	cache := NewCache(NewDisabled(), "test")

	var dest string
	err := cache.GetOrSet(context.Background(), "key", &dest, time.Minute, func() (interface{}, error) {
		return nil, errors.New("compute failed")
	})
	assert.Error(t, err)
}
