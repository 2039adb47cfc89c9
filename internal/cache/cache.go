// Package cache stores rendered catalog payloads in Redis and drops them when
// the data behind them changes.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/metrics"
	"github.com/angelmondragon/catalog-discounts/pkg/redis"
)

const namespace = "catalog"

// Key prefixes for every cached payload family.
const (
	PrefixProductsList       = "products_list"
	PrefixProductDetail      = "product_detail"
	PrefixProductSlug        = "product_slug"
	PrefixProductKey         = "product_key"
	PrefixProductsCategory   = "products_category"
	PrefixProductsTag        = "products_tag"
	PrefixProductsDiscounted = "products_discounted"
	PrefixCampaigns          = "campaigns"
)

var (
	listPrefixes = []string{
		PrefixProductsList,
		PrefixProductsCategory,
		PrefixProductsTag,
		PrefixProductsDiscounted,
	}
	detailPrefixes = []string{
		PrefixProductDetail,
		PrefixProductSlug,
		PrefixProductKey,
	}
)

// Prefixes returns every prefix the cache writes under.
func Prefixes() []string {
	out := make([]string, 0, len(listPrefixes)+len(detailPrefixes)+1)
	out = append(out, listPrefixes...)
	out = append(out, detailPrefixes...)
	return append(out, PrefixCampaigns)
}

// Params identifies one cached payload within a prefix.
type Params map[string]any

type store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}

// Options configures a Cache.
type Options struct {
	ListTTL   time.Duration
	DetailTTL time.Duration
	Disabled  bool
}

// Cache is a JSON payload cache over Redis.
type Cache struct {
	store   store
	logg    *logger.Logger
	metrics *metrics.PricingMetrics
	clock   clock.Clock
	opts    Options
}

// New builds a cache. Metrics may be nil.
func New(store store, logg *logger.Logger, m *metrics.PricingMetrics, clk clock.Clock, opts Options) (*Cache, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	if opts.ListTTL <= 0 {
		opts.ListTTL = 15 * time.Minute
	}
	if opts.DetailTTL <= 0 {
		opts.DetailTTL = 24 * time.Hour
	}
	return &Cache{store: store, logg: logg, metrics: m, clock: clk, opts: opts}, nil
}

// Key renders the Redis key for prefix and params. An empty params set maps
// to the bare prefix key.
func Key(prefix string, params Params) string {
	if len(params) == 0 {
		return fmt.Sprintf("%s:%s", namespace, prefix)
	}
	// encoding/json sorts map keys
	raw, err := json.Marshal(params)
	if err != nil {
		raw = []byte(fmt.Sprint(params))
	}
	sum := md5.Sum(raw)
	return fmt.Sprintf("%s:%s:%s", namespace, prefix, hex.EncodeToString(sum[:])[:8])
}

func pattern(prefix string) string {
	return fmt.Sprintf("%s:%s*", namespace, prefix)
}

// Enabled reports whether reads and writes go to Redis.
func (c *Cache) Enabled() bool {
	return c != nil && !c.opts.Disabled
}

// Get loads the payload into dest. Errors from Redis are logged and reported
// as a miss so callers fall back to the database.
func (c *Cache) Get(ctx context.Context, prefix string, params Params, dest any) bool {
	if !c.Enabled() {
		return false
	}
	key := Key(prefix, params)
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !redis.IsNil(err) {
			c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()}), "cache read failed")
		}
		c.metrics.ObserveCache(prefix, false)
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()}), "cache payload undecodable")
		_ = c.store.Del(ctx, key)
		c.metrics.ObserveCache(prefix, false)
		return false
	}
	c.metrics.ObserveCache(prefix, true)
	return true
}

// SetList stores a list payload. nextTransition caps the lifetime so the
// entry never outlives a discount window opening or closing.
func (c *Cache) SetList(ctx context.Context, prefix string, params Params, value any, nextTransition *time.Time) {
	c.set(ctx, prefix, params, value, c.ttl(c.opts.ListTTL, nextTransition))
}

// SetDetail stores a detail payload with the same cap as SetList.
func (c *Cache) SetDetail(ctx context.Context, prefix string, params Params, value any, nextTransition *time.Time) {
	c.set(ctx, prefix, params, value, c.ttl(c.opts.DetailTTL, nextTransition))
}

func (c *Cache) ttl(base time.Duration, nextTransition *time.Time) time.Duration {
	if nextTransition == nil {
		return base
	}
	until := nextTransition.Sub(c.clock.Now())
	if until < base {
		return until
	}
	return base
}

func (c *Cache) set(ctx context.Context, prefix string, params Params, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}
	// Redis treats a zero TTL as "never expire".
	if ttl < time.Second {
		return
	}
	key := Key(prefix, params)
	raw, err := json.Marshal(value)
	if err != nil {
		c.logg.Error(c.logg.WithField(ctx, "key", key), "cache payload not encodable", err)
		return
	}
	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()}), "cache write failed")
	}
}

// ProductRef names the cached detail entries of one product.
type ProductRef struct {
	ID   string
	Slug string
	Key  string
}

// InvalidateProduct drops the product's detail entries and every list.
func (c *Cache) InvalidateProduct(ctx context.Context, ref ProductRef) error {
	if c == nil {
		return nil
	}
	keys := make([]string, 0, 3)
	if ref.ID != "" {
		keys = append(keys, Key(PrefixProductDetail, Params{"id": ref.ID}))
	}
	if ref.Slug != "" {
		keys = append(keys, Key(PrefixProductSlug, Params{"slug": ref.Slug}))
	}
	if ref.Key != "" {
		keys = append(keys, Key(PrefixProductKey, Params{"key": ref.Key}))
	}
	if len(keys) > 0 {
		if err := c.store.Del(ctx, keys...); err != nil {
			return fmt.Errorf("delete product cache: %w", err)
		}
	}
	_, err := c.InvalidateLists(ctx)
	return err
}

// InvalidateLists drops every cached listing.
func (c *Cache) InvalidateLists(ctx context.Context) (int64, error) {
	return c.deletePrefixes(ctx, listPrefixes)
}

// InvalidateAll drops every cached payload. Campaign writes use this since a
// campaign may touch any product.
func (c *Cache) InvalidateAll(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, nil
	}
	deleted, err := c.deletePrefixes(ctx, Prefixes())
	if err == nil {
		c.logg.Info(c.logg.WithField(ctx, "deleted", deleted), "catalog cache cleared")
	}
	return deleted, err
}

func (c *Cache) deletePrefixes(ctx context.Context, prefixes []string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	var total int64
	for _, prefix := range prefixes {
		n, err := c.store.DeletePattern(ctx, pattern(prefix))
		if err != nil {
			return total, fmt.Errorf("invalidate %s: %w", prefix, err)
		}
		total += n
	}
	return total, nil
}

// Stats reports how many keys are held under each prefix.
type Stats struct {
	Enabled  bool             `json:"enabled"`
	Total    int              `json:"total"`
	ByPrefix map[string]int   `json:"by_prefix"`
	TTLs     map[string]int64 `json:"ttl_seconds"`
}

// Stats counts cached entries per prefix.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{
		Enabled:  c.Enabled(),
		ByPrefix: make(map[string]int),
		TTLs: map[string]int64{
			"list":   int64(c.opts.ListTTL / time.Second),
			"detail": int64(c.opts.DetailTTL / time.Second),
		},
	}
	for _, prefix := range Prefixes() {
		keys, err := c.store.Keys(ctx, pattern(prefix))
		if err != nil {
			return stats, fmt.Errorf("count %s: %w", prefix, err)
		}
		stats.ByPrefix[prefix] = len(keys)
		stats.Total += len(keys)
	}
	return stats, nil
}
