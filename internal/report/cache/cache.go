// Package cache holds the Redis-backed report cache. Reports are pure
// aggregations, so cached copies only need invalidating when a booking or
// payment mutates.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keySales     = "report:sales"
	keyServices  = "report:services"
	keyDashboard = "report:dashboard:" // + userID
)

var ErrMiss = errors.New("cache miss")

// Store is nil-safe: a nil *Store skips caching entirely, which is how the
// app runs when REDIS_ADDR is unset.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr string, ttl time.Duration) *Store {
	if addr == "" {
		return nil
	}
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr}), ttl: ttl}
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	if s == nil {
		return ErrMiss
	}
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return ErrMiss
	}
	return json.Unmarshal(b, v)
}

func (s *Store) set(ctx context.Context, key string, v any) {
	if s == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.rdb.Set(ctx, key, b, s.ttl)
}

func (s *Store) GetSales(ctx context.Context, v any) error  { return s.get(ctx, keySales, v) }
func (s *Store) SetSales(ctx context.Context, v any)        { s.set(ctx, keySales, v) }
func (s *Store) GetServices(ctx context.Context, v any) error { return s.get(ctx, keyServices, v) }
func (s *Store) SetServices(ctx context.Context, v any)     { s.set(ctx, keyServices, v) }

func (s *Store) GetDashboard(ctx context.Context, userID string, v any) error {
	return s.get(ctx, keyDashboard+userID, v)
}

func (s *Store) SetDashboard(ctx context.Context, userID string, v any) {
	s.set(ctx, keyDashboard+userID, v)
}

// Invalidate drops the admin reports and one user's dashboard view. Called
// after every booking/payment mutation.
func (s *Store) Invalidate(ctx context.Context, userID string) {
	if s == nil {
		return
	}
	keys := []string{keySales, keyServices}
	if userID != "" {
		keys = append(keys, keyDashboard+userID)
	}
	s.rdb.Del(ctx, keys...)
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
