package tokenrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/fcmpush/pkg/cache"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
)

func TestNewCached(t *testing.T) {
	repo, err := tokenrepo.NewCached(tokenrepo.CachedConfig{})
	assert.Nil(t, repo)
	assert.Error(t, err)
}

func TestCachedRepo(t *testing.T) {
	persistent, s := prepareRedisRepo(t)
	inMemory, err := cache.NewInMemory()
	require.NoError(t, err)

	repo, err := tokenrepo.NewCached(tokenrepo.CachedConfig{
		Persistent:     persistent,
		CacheExpiry:    time.Minute,
		CachePrefixKey: "devicetoken",
		Cache:          inMemory,
	})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = repo.Upsert(ctx, tokenrepo.InputUpsert{DeviceToken: deviceToken(1, "tok-a", "alice")})
	require.NoError(t, err)

	// served from cache even when the persistent copy is gone
	s.Del("fcmpush:token:tok-a")
	out, err := repo.GetByToken(ctx, tokenrepo.InputGetByToken{Token: "tok-a"})
	require.NoError(t, err)
	assert.Equal(t, "alice", out.DeviceToken.UserID)

	_, err = repo.Upsert(ctx, tokenrepo.InputUpsert{DeviceToken: deviceToken(2, "tok-b", "bob")})
	require.NoError(t, err)

	topic, err := repo.AddTopic(ctx, tokenrepo.InputTopic{Token: "tok-b", Topic: "news", UpdatedAt: 5})
	require.NoError(t, err)
	assert.True(t, topic.DeviceToken.HasTopic("news"))

	out, err = repo.GetByToken(ctx, tokenrepo.InputGetByToken{Token: "tok-b"})
	require.NoError(t, err)
	assert.True(t, out.DeviceToken.HasTopic("news"))

	list, err := repo.List(ctx, tokenrepo.InputList{Topic: "news", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.DeviceTokens, 1)

	_, err = repo.Delete(ctx, tokenrepo.InputDelete{Token: "tok-b"})
	require.NoError(t, err)

	_, err = repo.GetByToken(ctx, tokenrepo.InputGetByToken{Token: "tok-b"})
	assert.ErrorIs(t, err, tokenrepo.ErrNotFound)
}
