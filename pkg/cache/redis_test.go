package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/cache"
)

type entry struct {
	Value string
}

func prepareRedis(t *testing.T) (*cache.Redis, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})

	c, err := cache.NewRedis(cache.RedisConfig{DB: client})
	require.NoError(t, err)
	return c, s, client
}

func TestNewRedis(t *testing.T) {
	c, err := cache.NewRedis(cache.RedisConfig{})
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestRedis(t *testing.T) {
	c, s, _ := prepareRedis(t)
	ctx := context.Background()

	var out entry
	assert.ErrorIs(t, c.GetAs(ctx, "key", &out), cache.ErrKeyNotExist)

	require.NoError(t, c.SetExp(ctx, "key", entry{Value: "v"}, time.Second))
	require.NoError(t, c.GetAs(ctx, "key", &out))
	assert.Equal(t, "v", out.Value)

	s.FastForward(2 * time.Second)
	assert.ErrorIs(t, c.GetAs(ctx, "key", &out), cache.ErrKeyNotExist)

	require.NoError(t, c.SetExp(ctx, "kept", entry{Value: "k"}, -1))
	assert.Equal(t, time.Duration(0), s.TTL("kept"))

	require.NoError(t, c.Delete(ctx, "kept"))
	require.NoError(t, c.Delete(ctx, "kept"))
	assert.False(t, s.Exists("kept"))
}

func TestRedis_Errors(t *testing.T) {
	c, _, client := prepareRedis(t)
	ctx := context.Background()

	err := c.SetExp(ctx, "key", map[string]interface{}{"ch": make(chan int)}, time.Second)
	assert.Error(t, err)

	require.NoError(t, client.Close())

	var out entry
	assert.ErrorIs(t, c.GetAs(ctx, "key", &out), redis.ErrClosed)
	assert.ErrorIs(t, c.Delete(ctx, "key"), redis.ErrClosed)
}
