package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/acaishop/printing/internal/domain/order"
)

const cacheKey = "receipt:quote-of-the-day"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CachedSource wraps a remote source with a Redis cache and a static
// fallback. A cache or remote failure degrades to the fallback so the
// receipt flow never blocks on the quotation.
type CachedSource struct {
	client   *redis.Client
	remote   Source
	fallback Source
	ttl      time.Duration
	logger   *zap.Logger
}

// NewCachedSource creates a cached source connected to Redis
func NewCachedSource(cfg RedisConfig, remote, fallback Source, ttl time.Duration, logger *zap.Logger) (*CachedSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return NewCachedSourceWithClient(client, remote, fallback, ttl, logger), nil
}

// NewCachedSourceWithClient creates a cached source with an existing
// Redis client. Useful for testing or sharing a client.
func NewCachedSourceWithClient(client *redis.Client, remote, fallback Source, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == nil {
		fallback = NewStaticSource()
	}
	return &CachedSource{
		client:   client,
		remote:   remote,
		fallback: fallback,
		ttl:      ttl,
		logger:   logger,
	}
}

// Quote returns the cached quotation, refreshing it from the remote
// source on a miss. Every failure path answers from the fallback.
func (s *CachedSource) Quote(ctx context.Context) (order.Quotation, error) {
	if cached, err := s.client.Get(ctx, cacheKey).Result(); err == nil {
		var q order.Quotation
		if err := json.Unmarshal([]byte(cached), &q); err == nil && q.Text != "" {
			return q, nil
		}
		s.logger.Warn("corrupt cached quotation, refreshing")
	}

	q, err := s.remote.Quote(ctx)
	if err != nil {
		s.logger.Warn("remote quotation unavailable, using fallback", zap.Error(err))
		return s.fallback.Quote(ctx)
	}

	if data, err := json.Marshal(q); err == nil {
		if err := s.client.Set(ctx, cacheKey, data, s.ttl).Err(); err != nil {
			s.logger.Warn("caching quotation failed", zap.Error(err))
		}
	}
	return q, nil
}
