package common

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on top of a shared redis instance so that
// several app processes can serve from the same cached read model.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(key string) ([]byte, bool) {
	b, err := r.client.Get(context.Background(), key).Bytes()
	if err != nil {
		return nil, false
	}

	return b, true
}

func (r *RedisCache) Set(key string, value []byte, ttl time.Duration) {
	r.client.Set(context.Background(), key, value, ttl)
}

func (r *RedisCache) Delete(key string) {
	r.client.Del(context.Background(), key)
}

func (r *RedisCache) Close() error {
	err := r.client.Close()
	if err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}

	return nil
}
