package container

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/fcmpush/config"
	"github.com/yusufsyaifudin/fcmpush/pkg/validator"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// RedisConnMaker opens every configured redis label once and hands out the shared client.
type RedisConnMaker struct {
	conf    config.RedisResources
	clients map[string]redis.UniversalClient
}

func NewRedisConnMaker(ctx context.Context, conf config.RedisResources) (*RedisConnMaker, error) {
	instance := &RedisConnMaker{
		conf:    conf,
		clients: map[string]redis.UniversalClient{},
	}

	err := instance.connect(ctx)
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.Close(); _err != nil {
			err = fmt.Errorf("close redis error: %w: %s", err, _err)
		}

		return nil, err
	}

	return instance, nil
}

func (i *RedisConnMaker) connect(ctx context.Context) error {
	for key, connInfo := range i.conf {
		key = strings.TrimSpace(strings.ToLower(key))
		if err := validator.Var(key, "required,alphanum"); err != nil {
			err = fmt.Errorf("error connecting to redis key '%s': %w", key, err)
			return err
		}

		redisClient, err := newRedisClient(connInfo)
		if err != nil {
			return fmt.Errorf("redis %s: %w", key, err)
		}

		i.clients[key] = redisClient

		err = redisClient.Ping(ctx).Err()
		if err != nil {
			err = fmt.Errorf("error ping redis %s: %w", key, err)
			return err
		}

		ylog.Debug(ctx, fmt.Sprintf("redis: %s connected in %s mode", key, connInfo.Mode))
	}

	return nil
}

func newRedisClient(connInfo config.RedisResource) (redis.UniversalClient, error) {
	if len(connInfo.Address) == 0 {
		return nil, fmt.Errorf("no address")
	}

	switch connInfo.Mode {
	case "single":
		return redis.NewClient(&redis.Options{
			Addr:     connInfo.Address[0],
			Username: connInfo.Username,
			Password: connInfo.Password,
			DB:       connInfo.DB,
		}), nil

	case "sentinel":
		return redis.NewFailoverClient(&redis.FailoverOptions{
			SentinelAddrs: connInfo.Address,
			Username:      connInfo.Username,
			Password:      connInfo.Password,
			DB:            connInfo.DB,
			MasterName:    connInfo.MasterName,
		}), nil

	case "cluster":
		// cluster mode does not support DB selection
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    connInfo.Address,
			Username: connInfo.Username,
			Password: connInfo.Password,
		}), nil
	}

	return nil, fmt.Errorf("unknown redis mode: %s", connInfo.Mode)
}

func (i *RedisConnMaker) Get(key string) (redis.UniversalClient, error) {
	key = strings.TrimSpace(strings.ToLower(key))
	v, ok := i.clients[key]
	if !ok {
		return nil, fmt.Errorf("key %s is not found in any redis topology", key)
	}

	return v, nil
}

func (i *RedisConnMaker) Close() error {
	keys := make([]string, 0, len(i.clients))
	for key := range i.clients {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var err error
	for _, key := range keys {
		if e := i.clients[key].Close(); e != nil {
			err = multierr.Append(err, fmt.Errorf("(%s) %w", key, e))
		}
	}

	return err
}
