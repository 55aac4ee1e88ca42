package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Value string
}

func TestNewInMemorySize(t *testing.T) {
	c, err := NewInMemorySize(0)
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestInMemory(t *testing.T) {
	c, err := NewInMemory()
	require.NoError(t, err)

	now := time.Date(2023, 10, 19, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	var out entry
	assert.ErrorIs(t, c.GetAs(ctx, "missing", &out), ErrKeyNotExist)

	require.NoError(t, c.SetExp(ctx, "short", entry{Value: "a"}, time.Minute))
	require.NoError(t, c.SetExp(ctx, "forever", entry{Value: "b"}, 0))

	require.NoError(t, c.GetAs(ctx, "short", &out))
	assert.Equal(t, "a", out.Value)

	now = now.Add(2 * time.Minute)
	assert.ErrorIs(t, c.GetAs(ctx, "short", &out), ErrKeyNotExist)

	require.NoError(t, c.GetAs(ctx, "forever", &out))
	assert.Equal(t, "b", out.Value)

	require.NoError(t, c.Delete(ctx, "forever"))
	assert.ErrorIs(t, c.GetAs(ctx, "forever", &out), ErrKeyNotExist)
}

func TestInMemory_SetExpUnsupported(t *testing.T) {
	c, err := NewInMemory()
	require.NoError(t, err)

	err = c.SetExp(context.Background(), "key", map[string]interface{}{"ch": make(chan int)}, 0)
	assert.Error(t, err)
}
