package tokenrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/yusufsyaifudin/fcmpush/pkg/cache"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
)

type CachedConfig struct {
	Persistent     Repo          `validate:"required"`
	CacheExpiry    time.Duration `validate:"required"`
	CachePrefixKey string        `validate:"required,alphanum"`
	Cache          cache.Cache   `validate:"required"`
}

// CachedRepo caches single tokens by value. Lists always go to the persistent store.
type CachedRepo struct {
	Config CachedConfig
}

var _ Repo = (*CachedRepo)(nil)

func NewCached(cfg CachedConfig) (*CachedRepo, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, err
	}

	return &CachedRepo{
		Config: cfg,
	}, nil
}

func (c *CachedRepo) Upsert(ctx context.Context, in InputUpsert) (out OutUpsert, err error) {
	out, err = c.Config.Persistent.Upsert(ctx, in)
	if err != nil {
		err = fmt.Errorf("upsert via cache error on persistent store: %w", err)
		return
	}

	c.setCache(ctx, out.DeviceToken)
	return
}

func (c *CachedRepo) GetByToken(ctx context.Context, in InputGetByToken) (out OutGetByToken, err error) {
	token, err := c.getCache(ctx, in.Token)
	if err == nil && token.Token == in.Token {
		out = OutGetByToken{DeviceToken: token}
		return
	}

	if err != nil {
		ylog.Debug(ctx, "device token is not in cache", ylog.KV("error", err))
		err = nil
	}

	out, err = c.Config.Persistent.GetByToken(ctx, in)
	if err != nil {
		return
	}

	c.setCache(ctx, out.DeviceToken)
	return
}

func (c *CachedRepo) List(ctx context.Context, in InputList) (out OutList, err error) {
	return c.Config.Persistent.List(ctx, in)
}

func (c *CachedRepo) Delete(ctx context.Context, in InputDelete) (out OutDelete, err error) {
	out, err = c.Config.Persistent.Delete(ctx, in)
	if err != nil {
		return
	}

	if _err := c.Config.Cache.Delete(ctx, c.cacheKey(in.Token)); _err != nil {
		ylog.Error(ctx, "cannot delete cached device token", ylog.KV("error", _err))
	}

	return
}

func (c *CachedRepo) AddTopic(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	out, err = c.Config.Persistent.AddTopic(ctx, in)
	if err != nil {
		return
	}

	c.setCache(ctx, out.DeviceToken)
	return
}

func (c *CachedRepo) RemoveTopic(ctx context.Context, in InputTopic) (out OutTopic, err error) {
	out, err = c.Config.Persistent.RemoveTopic(ctx, in)
	if err != nil {
		return
	}

	c.setCache(ctx, out.DeviceToken)
	return
}

// -- cache

func (c *CachedRepo) cacheKey(token string) string {
	return fmt.Sprintf("%s:%s", c.Config.CachePrefixKey, token)
}

func (c *CachedRepo) getCache(ctx context.Context, token string) (DeviceToken, error) {
	var out DeviceToken
	err := c.Config.Cache.GetAs(ctx, c.cacheKey(token), &out)
	if err != nil {
		return DeviceToken{}, err
	}

	return out, nil
}

func (c *CachedRepo) setCache(ctx context.Context, token DeviceToken) {
	err := c.Config.Cache.SetExp(ctx, c.cacheKey(token.Token), token, c.Config.CacheExpiry)
	if err != nil {
		ylog.Error(ctx, "cannot cache device token", ylog.KV("error", err))
	}
}
