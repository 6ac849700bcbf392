package segment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-offer-service/internal/metrics"
	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

// NewRedisClient creates and pings a Redis client using a redis:// URL.
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func segmentCacheKey(userID int64) string {
	return "segment:user:" + strconv.FormatInt(userID, 10)
}

// CachingResolver serves resolved segments from Redis and falls back to the
// wrapped resolver on a miss. Unresolved outcomes are never cached, and Redis
// errors only cost a live lookup.
type CachingResolver struct {
	next service.SegmentResolver
	rdb  *goredis.Client
	ttl  time.Duration
}

// Ensure CachingResolver implements service.SegmentResolver
var _ service.SegmentResolver = (*CachingResolver)(nil)

// NewCachingResolver wraps next with a Redis cache holding labels for ttl.
func NewCachingResolver(next service.SegmentResolver, rdb *goredis.Client, ttl time.Duration) *CachingResolver {
	return &CachingResolver{next: next, rdb: rdb, ttl: ttl}
}

// Resolve implements service.SegmentResolver.
func (r *CachingResolver) Resolve(ctx context.Context, userID int64) model.Segment {
	key := segmentCacheKey(userID)

	label, err := r.rdb.Get(ctx, key).Result()
	switch {
	case err == nil && label != "":
		metrics.SegmentLookups.WithLabelValues("cache_hit").Inc()
		return model.ResolvedSegment(label)
	case err != nil && !errors.Is(err, goredis.Nil):
		log.Warn().Err(err).Int64("user_id", userID).Msg("segment cache read failed")
	}

	seg := r.next.Resolve(ctx, userID)
	if !seg.Resolved {
		return seg
	}
	if err := r.rdb.Set(ctx, key, seg.Label, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("segment cache write failed")
	}
	return seg
}

// Invalidate drops the cached segment of a user.
func (r *CachingResolver) Invalidate(ctx context.Context, userID int64) error {
	if err := r.rdb.Del(ctx, segmentCacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis DEL failed: %w", err)
	}
	return nil
}
