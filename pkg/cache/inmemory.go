package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/segmentio/encoding/json"
)

const (
	defaultInMemoryBytes = 32 * 1024 * 1024

	// every entry starts with the unix nano deadline, zero when it never expires
	deadlineSize = 8
)

// InMemory is a fastcache backed Cache. Expired entries are dropped lazily on read.
type InMemory struct {
	DB  *fastcache.Cache
	now func() time.Time
}

var _ Cache = (*InMemory)(nil)

func NewInMemory() (*InMemory, error) {
	return NewInMemorySize(defaultInMemoryBytes)
}

// NewInMemorySize allocates at most maxBytes. fastcache rounds small values up to 32MB.
func NewInMemorySize(maxBytes int) (*InMemory, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("in-memory cache size must be positive, got %d", maxBytes)
	}

	return &InMemory{
		DB:  fastcache.New(maxBytes),
		now: time.Now,
	}, nil
}

func (i *InMemory) GetAs(_ context.Context, key string, out interface{}) error {
	result := i.DB.Get(nil, []byte(key))
	if len(result) < deadlineSize {
		return ErrKeyNotExist
	}

	deadline := int64(binary.BigEndian.Uint64(result[:deadlineSize]))
	if deadline > 0 && i.now().UnixNano() >= deadline {
		i.DB.Del([]byte(key))
		return ErrKeyNotExist
	}

	return json.Unmarshal(result[deadlineSize:], out)
}

func (i *InMemory) SetExp(_ context.Context, key string, inValue interface{}, expireDur time.Duration) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return err
	}

	var deadline int64
	if expireDur > 0 {
		deadline = i.now().Add(expireDur).UnixNano()
	}

	entry := make([]byte, deadlineSize, deadlineSize+len(val))
	binary.BigEndian.PutUint64(entry, uint64(deadline))
	entry = append(entry, val...)

	i.DB.Set([]byte(key), entry)
	return nil
}

func (i *InMemory) Delete(_ context.Context, key string) error {
	i.DB.Del([]byte(key))
	return nil
}
