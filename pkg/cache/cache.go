package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotExist = errors.New("cache key not exists")
)

// Cache stores values as JSON. A zero or negative expiry keeps the value until it is deleted.
type Cache interface {
	GetAs(ctx context.Context, key string, out interface{}) error
	SetExp(ctx context.Context, key string, inValue interface{}, expireDur time.Duration) error
	Delete(ctx context.Context, key string) error
}
