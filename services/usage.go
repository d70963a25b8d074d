package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
)

const usageKey = "bugtriage:predictions"

// Usage is an aggregate count of served predictions per label.
type Usage struct {
	Enabled bool             `json:"enabled"`
	Total   int64            `json:"total"`
	Labels  map[string]int64 `json:"labels"`
}

type UsageRecorder interface {
	Record(ctx context.Context, label string) error
	Snapshot(ctx context.Context) (Usage, error)
}

// NopUsage is used when no counter backend is configured.
type NopUsage struct{}

func (NopUsage) Record(context.Context, string) error { return nil }

func (NopUsage) Snapshot(context.Context) (Usage, error) {
	return Usage{Labels: map[string]int64{}}, nil
}

// RedisUsage keeps one hash field per label.
type RedisUsage struct {
	rdb *redis.Client
	key string
}

// NewRedisUsage accepts either a host:port address or a redis:// URL.
func NewRedisUsage(addr, password string, db int) (*RedisUsage, error) {
	opts := &redis.Options{Addr: addr, Password: password, DB: db}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		if parsed.Password == "" {
			parsed.Password = password
		}
		opts = parsed
	}
	return &RedisUsage{rdb: redis.NewClient(opts), key: usageKey}, nil
}

func (u *RedisUsage) Ping(ctx context.Context) error {
	return u.rdb.Ping(ctx).Err()
}

func (u *RedisUsage) Record(ctx context.Context, label string) error {
	return u.rdb.HIncrBy(ctx, u.key, label, 1).Err()
}

func (u *RedisUsage) Snapshot(ctx context.Context) (Usage, error) {
	fields, err := u.rdb.HGetAll(ctx, u.key).Result()
	if err != nil {
		return Usage{}, err
	}
	return usageFromHash(fields)
}

func (u *RedisUsage) Close() error {
	return u.rdb.Close()
}

func usageFromHash(fields map[string]string) (Usage, error) {
	usage := Usage{Enabled: true, Labels: make(map[string]int64, len(fields))}
	for label, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Usage{}, fmt.Errorf("counter %q: %w", label, err)
		}
		usage.Labels[label] = n
		usage.Total += n
	}
	return usage, nil
}
