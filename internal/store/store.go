package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fundlens/etf-adapter/pkg/cache"
	"github.com/fundlens/etf-adapter/pkg/model"
)

// snapshotKey is the single key under which the latest watchlist snapshot
// lives. The watch poller overwrites it every cycle.
const snapshotKey = "etf:watchlist:snapshot"

// Store defines the contract for keeping the most recent watchlist snapshot.
type Store interface {
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisStore keeps the latest snapshot in Redis with a TTL so stale data
// ages out when the poller stops.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection before returning.
func NewRedis(redisAddr string, redisDB int, redisPass string, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		DB:       redisDB,
		Password: redisPass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{redis: rdb, ttl: ttl, logger: logger}, nil
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, snapshotKey, data, s.ttl).Err(); err != nil {
		s.logger.Error("store.redis.save_failed", zap.Error(err))
		return err
	}
	return nil
}

// LatestSnapshot returns the stored snapshot, or nil when none exists or it
// has expired.
func (s *RedisStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.redis.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// MemoryStore serves deployments without Redis. Same TTL semantics, process
// local.
type MemoryStore struct {
	cache *cache.Cache[*model.Snapshot]
}

func NewMemory(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New[*model.Snapshot](ttl)}
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snap *model.Snapshot) error {
	s.cache.Put(snapshotKey, snap)
	return nil
}

func (s *MemoryStore) LatestSnapshot(_ context.Context) (*model.Snapshot, error) {
	snap, ok := s.cache.Get(snapshotKey)
	if !ok {
		return nil, nil
	}
	return snap, nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
