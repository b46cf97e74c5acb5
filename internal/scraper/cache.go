package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/pricehawk/internal/metrics"
	"github.com/iyhunko/pricehawk/internal/model"
	"github.com/redis/go-redis/v9"
)

// Store is the subset of redis.Cmdable used by the scrape cache.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedScraper serves recent snapshots from Redis and falls through to the wrapped Scraper.
// Redis failures never fail a scrape.
type CachedScraper struct {
	next  Scraper
	store Store
	ttl   time.Duration
}

// NewCachedScraper wraps next with a cache whose entries expire after ttl.
func NewCachedScraper(next Scraper, store Store, ttl time.Duration) *CachedScraper {
	return &CachedScraper{next: next, store: store, ttl: ttl}
}

func cacheKey(productURL string) string {
	return fmt.Sprintf("price:%s", model.IdentityFromURL(productURL))
}

// Scrape returns a cached snapshot for the URL, or scrapes it and caches the result.
func (c *CachedScraper) Scrape(ctx context.Context, productURL string) (*Snapshot, error) {
	key := cacheKey(productURL)

	if snapshot, ok := c.lookup(ctx, key); ok {
		return snapshot, nil
	}

	snapshot, err := c.next.Scrape(ctx, productURL)
	if err != nil {
		return nil, err
	}

	c.remember(ctx, key, snapshot)
	return snapshot, nil
}

func (c *CachedScraper) remember(ctx context.Context, key string, snapshot *Snapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		slog.Warn("failed to encode snapshot for cache", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.store.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache snapshot", slog.String("key", key), slog.Any("error", err))
	}
}

func (c *CachedScraper) lookup(ctx context.Context, key string) (*Snapshot, bool) {
	raw, err := c.store.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.ScrapeCacheLookups.WithLabelValues("miss").Inc()
			slog.Debug("scrape cache miss", slog.String("key", key))
		} else {
			metrics.ScrapeCacheLookups.WithLabelValues("error").Inc()
			slog.Warn("scrape cache lookup failed", slog.String("key", key), slog.Any("error", err))
		}
		return nil, false
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		metrics.ScrapeCacheLookups.WithLabelValues("error").Inc()
		slog.Warn("discarding malformed cached snapshot", slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	metrics.ScrapeCacheLookups.WithLabelValues("hit").Inc()
	slog.Debug("scrape cache hit", slog.String("key", key))
	return &snapshot, true
}
