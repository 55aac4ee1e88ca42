package container

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yusufsyaifudin/fcmpush/config"
	"github.com/yusufsyaifudin/fcmpush/pkg/cache"
	"github.com/yusufsyaifudin/fcmpush/pkg/multidb"
	"github.com/yusufsyaifudin/fcmpush/storage/tokenrepo"
	"go.uber.org/multierr"
)

const (
	defaultTokenKeyPrefix   = "fcmpush"
	defaultTokenCachePrefix = "devicetoken"
	defaultTokenCacheExpiry = 10 * time.Minute
)

// Repositories is an abstraction layer to list down all repositories.
// This only will connect and save the repository.
type Repositories interface {
	io.Closer

	TokenRepo() (tokenrepo.Repo, error)
}

// RepositoryImpl the real implementation of Repositories
type RepositoryImpl struct {
	cfg       config.TokenRepo
	dbSqlConn multidb.MultiDB // all database connection
	redisConn *RedisConnMaker
}

// Ensure that RepositoryImpl implements Repositories
var _ Repositories = (*RepositoryImpl)(nil)

// SetupRepositories returns the concrete type so the caller can Close it in deferred mode.
func SetupRepositories(ctx context.Context, conf config.Config) (*RepositoryImpl, error) {
	sqlDbConfig := multidb.DatabaseResources{}
	for name, conn := range conf.DatabaseResources {
		sqlDbConfig[name] = multidb.DatabaseResource{
			Disable:  conn.Disable,
			Driver:   multidb.Driver(conn.Driver),
			Postgres: multidb.GoSqlDb(conn.Postgres),
		}
	}

	dbSqlConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{Config: sqlDbConfig})
	if err != nil {
		return nil, err
	}

	if conf.TokenRepo.Driver == string(multidb.Postgres) {
		if err = dbSqlConn.Ping(ctx, multidb.Postgres, conf.TokenRepo.DBLabel); err != nil {
			err = multierr.Append(err, dbSqlConn.Close())
			return nil, err
		}
	}

	redisConn, err := NewRedisConnMaker(ctx, conf.Redis)
	if err != nil {
		if _err := dbSqlConn.Close(); _err != nil {
			err = multierr.Append(err, _err)
		}

		return nil, err
	}

	return &RepositoryImpl{
		cfg:       conf.TokenRepo,
		dbSqlConn: dbSqlConn,
		redisConn: redisConn,
	}, nil
}

// TokenRepo builds the persistent store picked by tokenRepo.driver and wraps it with a cache when configured.
func (r *RepositoryImpl) TokenRepo() (repo tokenrepo.Repo, err error) {
	keyPrefix := r.cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = defaultTokenKeyPrefix
	}

	switch r.cfg.Driver {
	case "postgres":
		sqlConn, _err := r.dbSqlConn.GetSqlx(multidb.Postgres, r.cfg.DBLabel)
		if _err != nil {
			err = fmt.Errorf("token repo: %w", _err)
			return
		}

		repo, err = tokenrepo.Postgres(tokenrepo.RepoPostgresConfig{Connection: sqlConn})

	case "redis":
		redisClient, _err := r.redisConn.Get(r.cfg.RedisLabel)
		if _err != nil {
			err = fmt.Errorf("token repo: %w", _err)
			return
		}

		repo, err = tokenrepo.Redis(tokenrepo.RepoRedisConfig{
			Client:    redisClient,
			KeyPrefix: keyPrefix,
		})

	default:
		err = fmt.Errorf("not supported token repo driver '%s'", r.cfg.Driver)
	}

	if err != nil {
		return nil, err
	}

	return r.withCache(repo)
}

func (r *RepositoryImpl) withCache(persistent tokenrepo.Repo) (tokenrepo.Repo, error) {
	cacheCfg := r.cfg.Cache

	var (
		c   cache.Cache
		err error
	)

	switch cacheCfg.Type {
	case "":
		return persistent, nil

	case "inmemory":
		c, err = cache.NewInMemory()

	case "redis":
		redisClient, _err := r.redisConn.Get(cacheCfg.RedisLabel)
		if _err != nil {
			return nil, fmt.Errorf("token repo cache: %w", _err)
		}

		c, err = cache.NewRedis(cache.RedisConfig{DB: redisClient})

	default:
		return nil, fmt.Errorf("not supported token repo cache type '%s'", cacheCfg.Type)
	}

	if err != nil {
		return nil, err
	}

	expiry := cacheCfg.Expiry
	if expiry <= 0 {
		expiry = defaultTokenCacheExpiry
	}

	prefix := cacheCfg.Prefix
	if prefix == "" {
		prefix = defaultTokenCachePrefix
	}

	return tokenrepo.NewCached(tokenrepo.CachedConfig{
		Persistent:     persistent,
		CacheExpiry:    expiry,
		CachePrefixKey: prefix,
		Cache:          c,
	})
}

// Close will close all dependencies.
func (r *RepositoryImpl) Close() error {
	if r == nil {
		return nil
	}

	var err error
	if r.dbSqlConn != nil {
		if _err := r.dbSqlConn.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close db error: %w", _err))
		}
	}

	if r.redisConn != nil {
		if _err := r.redisConn.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close redis error: %w", _err))
		}
	}

	return err
}
