package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Redis stores slots in a redis database under a namespace prefix, so one
// server can hold several installations.
type Redis struct {
	client    *redis.Client
	namespace string
}

// RedisOptions configures OpenRedis.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	Namespace string // default "cinewave:"
}

// OpenRedis connects to redis and verifies the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.Namespace), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, namespace string) *Redis {
	if namespace == "" {
		namespace = "cinewave:"
	}
	return &Redis{client: client, namespace: namespace}
}

// Get implements KV.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, r.namespace+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, r.mapErr(err))
	}
	return val, true, nil
}

// Set implements KV.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %q: %w", key, r.mapErr(err))
	}
	return nil
}

// Remove implements KV.
func (r *Redis) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.namespace+key).Err(); err != nil {
		return fmt.Errorf("remove %q: %w", key, r.mapErr(err))
	}
	return nil
}

// Keys implements Backend.
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, r.mapErr(err))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Backend.
func (r *Redis) Close() error {
	return r.client.Close()
}

// mapErr translates redis out-of-memory replies into ErrQuotaExceeded.
func (r *Redis) mapErr(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return ErrClosed
	}
	if strings.HasPrefix(err.Error(), "OOM") {
		return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
	}
	return err
}
