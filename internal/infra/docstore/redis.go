package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tarificateur/go_backend/internal/domain/quote/document"
)

const keyPrefix = "devis:doc:"

// Redis keeps documents as expiring string keys.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(ctx context.Context, addr string, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (r *Redis) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, document.ErrNotStored
	}
	return data, err
}

func (r *Redis) Put(ctx context.Context, name string, data []byte) error {
	return r.rdb.Set(ctx, keyPrefix+name, data, r.ttl).Err()
}

func (r *Redis) DeleteMatching(ctx context.Context, prefix string, match func(string) bool) error {
	iter := r.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		if key := iter.Val(); match(strings.TrimPrefix(key, keyPrefix)) {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }
