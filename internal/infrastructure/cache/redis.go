package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sewasangat/import-service/internal/core/domain"
	"github.com/sewasangat/import-service/internal/core/services/importer"
	"github.com/sewasangat/import-service/internal/pkg/config"
)

const (
	jobKeyPrefix      = "import:job:"
	badgeSeqKeyPrefix = "badge:seq:"

	// runningJobTTL is a safety net for jobs whose owning task died without
	// reaching a terminal state; it is far above any realistic job duration.
	runningJobTTL = 24 * time.Hour
)

// RedisCache wraps the Redis client
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(cfg *config.CacheConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("redis connection established",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.Int("db", cfg.DB),
	)

	return &RedisCache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	r.logger.Info("closing redis connection")
	return r.client.Close()
}

// Ping checks if Redis is alive
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Health returns health status of Redis
func (r *RedisCache) Health(ctx context.Context) map[string]interface{} {
	stats := r.client.PoolStats()

	return map[string]interface{}{
		"status":      "up",
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
	}
}

// NextBadgeSequence atomically advances the per-pattern badge counter. The
// counter is seeded on first use from the highest suffix already stored, so
// two allocators racing on the same pattern cannot hand out the same badge.
func (r *RedisCache) NextBadgeSequence(ctx context.Context, pattern string, seed int) (int, error) {
	key := badgeSeqKeyPrefix + pattern

	if err := r.client.SetNX(ctx, key, seed, 0).Err(); err != nil {
		return 0, fmt.Errorf("seed badge sequence: %w", err)
	}

	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("advance badge sequence: %w", err)
	}

	return int(n), nil
}

// RedisJobStore keeps job snapshots in Redis so any service instance can
// serve polls. Terminal snapshots carry the retention window as a native TTL.
type RedisJobStore struct {
	cache     *RedisCache
	retention time.Duration
}

// NewRedisJobStore creates a Redis-backed job store. retention <= 0 falls
// back to the reference 5 minutes.
func NewRedisJobStore(cache *RedisCache, retention time.Duration) *RedisJobStore {
	if retention <= 0 {
		retention = importer.DefaultJobRetention
	}
	return &RedisJobStore{
		cache:     cache,
		retention: retention,
	}
}

// Create inserts a new job snapshot
func (s *RedisJobStore) Create(ctx context.Context, snap domain.JobSnapshot) error {
	return s.Save(ctx, snap)
}

// Save updates a job snapshot in place. Reaching a terminal state starts the
// retention countdown.
func (s *RedisJobStore) Save(ctx context.Context, snap domain.JobSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal job snapshot: %w", err)
	}

	ttl := runningJobTTL
	if domain.IsTerminalJobStatus(snap.Status) {
		ttl = s.retention
	}

	if err := s.cache.client.Set(ctx, jobKeyPrefix+snap.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save job snapshot: %w", err)
	}
	return nil
}

// Get returns the current snapshot or importer.ErrJobNotFound. Expired and
// never-created ids look the same.
func (s *RedisJobStore) Get(ctx context.Context, id string) (domain.JobSnapshot, error) {
	payload, err := s.cache.client.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.JobSnapshot{}, importer.ErrJobNotFound
	}
	if err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("load job snapshot: %w", err)
	}

	var snap domain.JobSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return domain.JobSnapshot{}, fmt.Errorf("unmarshal job snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes a job immediately
func (s *RedisJobStore) Delete(ctx context.Context, id string) error {
	return s.cache.client.Del(ctx, jobKeyPrefix+id).Err()
}
