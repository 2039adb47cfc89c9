package cache

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/redis"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

var cacheNow = time.Date(2025, 11, 28, 12, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T, opts Options) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })

	logg := logger.New(logger.Options{ServiceName: "cache-test", Output: &bytes.Buffer{}})
	c, err := New(client, logg, nil, clock.Fixed(cacheNow), opts)
	require.NoError(t, err)
	return c, srv
}

func TestKeyIsStableAcrossParamOrder(t *testing.T) {
	a := Key(PrefixProductsList, Params{"search": "bag", "limit": 25})
	b := Key(PrefixProductsList, Params{"limit": 25, "search": "bag"})
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "catalog:products_list:"))
	assert.Len(t, strings.TrimPrefix(a, "catalog:products_list:"), 8)

	assert.Equal(t, "catalog:products_list", Key(PrefixProductsList, nil))
	assert.NotEqual(t, a, Key(PrefixProductsList, Params{"search": "box", "limit": 25}))
}

func TestSetAndGetRoundTrip(t *testing.T) {
	c, srv := newTestCache(t, Options{})
	ctx := context.Background()
	params := Params{"id": "p-1"}

	var out payload
	assert.False(t, c.Get(ctx, PrefixProductDetail, params, &out))

	c.SetDetail(ctx, PrefixProductDetail, params, payload{Name: "bag", Count: 3}, nil)
	require.True(t, c.Get(ctx, PrefixProductDetail, params, &out))
	assert.Equal(t, payload{Name: "bag", Count: 3}, out)
	assert.Equal(t, 24*time.Hour, srv.TTL(Key(PrefixProductDetail, params)))
}

func TestTTLCappedAtNextTransition(t *testing.T) {
	c, srv := newTestCache(t, Options{ListTTL: 15 * time.Minute})
	ctx := context.Background()

	soon := cacheNow.Add(90 * time.Second)
	c.SetList(ctx, PrefixProductsList, nil, payload{Name: "x"}, &soon)
	assert.Equal(t, 90*time.Second, srv.TTL(Key(PrefixProductsList, nil)))

	later := cacheNow.Add(time.Hour)
	c.SetList(ctx, PrefixProductsTag, nil, payload{Name: "x"}, &later)
	assert.Equal(t, 15*time.Minute, srv.TTL(Key(PrefixProductsTag, nil)))

	past := cacheNow.Add(-time.Second)
	c.SetList(ctx, PrefixProductsCategory, nil, payload{Name: "x"}, &past)
	assert.False(t, srv.Exists(Key(PrefixProductsCategory, nil)))
}

func TestInvalidateProductDropsDetailsAndLists(t *testing.T) {
	c, srv := newTestCache(t, Options{})
	ctx := context.Background()
	ref := ProductRef{ID: "p-1", Slug: "kraft-bag", Key: "KB-1"}

	c.SetDetail(ctx, PrefixProductDetail, Params{"id": ref.ID}, payload{}, nil)
	c.SetDetail(ctx, PrefixProductSlug, Params{"slug": ref.Slug}, payload{}, nil)
	c.SetDetail(ctx, PrefixProductKey, Params{"key": ref.Key}, payload{}, nil)
	c.SetDetail(ctx, PrefixProductDetail, Params{"id": "other"}, payload{}, nil)
	c.SetList(ctx, PrefixProductsList, Params{"limit": 10}, payload{}, nil)
	c.SetList(ctx, PrefixProductsDiscounted, nil, payload{}, nil)

	require.NoError(t, c.InvalidateProduct(ctx, ref))

	keys := srv.Keys()
	assert.Equal(t, []string{Key(PrefixProductDetail, Params{"id": "other"})}, keys)
}

func TestInvalidateAllAndStats(t *testing.T) {
	c, srv := newTestCache(t, Options{})
	ctx := context.Background()

	require.NoError(t, srv.Set("catalog:cron:lock:cache-warm", "owner"))
	c.SetDetail(ctx, PrefixProductDetail, Params{"id": "a"}, payload{}, nil)
	c.SetDetail(ctx, PrefixProductDetail, Params{"id": "b"}, payload{}, nil)
	c.SetList(ctx, PrefixCampaigns, Params{"view": "active"}, payload{}, nil)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByPrefix[PrefixProductDetail])
	assert.Equal(t, 1, stats.ByPrefix[PrefixCampaigns])
	assert.Equal(t, int64(900), stats.TTLs["list"])

	deleted, err := c.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.True(t, srv.Exists("catalog:cron:lock:cache-warm"))
}

func TestCorruptPayloadIsTreatedAsMiss(t *testing.T) {
	c, srv := newTestCache(t, Options{})
	key := Key(PrefixProductDetail, Params{"id": "bad"})
	require.NoError(t, srv.Set(key, "{not json"))

	var out payload
	assert.False(t, c.Get(context.Background(), PrefixProductDetail, Params{"id": "bad"}, &out))
	assert.False(t, srv.Exists(key))
}

func TestDisabledCacheSkipsRedis(t *testing.T) {
	c, srv := newTestCache(t, Options{Disabled: true})
	ctx := context.Background()
	c.SetDetail(ctx, PrefixProductDetail, Params{"id": "a"}, payload{}, nil)
	assert.Empty(t, srv.Keys())
	var out payload
	assert.False(t, c.Get(ctx, PrefixProductDetail, Params{"id": "a"}, &out))
}
