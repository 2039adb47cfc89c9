package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/catalog-discounts/pkg/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := New(context.Background(), config.RedisConfig{Address: srv.Addr()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestSetGetAndTTL(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)

	if err := client.Set(ctx, "catalog:k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := client.Get(ctx, "catalog:k")
	if err != nil || got != "v" {
		t.Fatalf("unexpected get result %q err=%v", got, err)
	}
	if ttl := srv.TTL("catalog:k"); ttl != time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	srv.FastForward(2 * time.Minute)
	if _, err := client.Get(ctx, "catalog:k"); !IsNil(err) {
		t.Fatalf("expected redis.Nil after expiry, got %v", err)
	}
}

func TestDeleteIfEqualsOnlyRemovesMatchingValue(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)
	key := client.CronLockKey("cache-warm")

	if err := client.Set(ctx, key, "owner-a", time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}
	deleted, err := client.DeleteIfEquals(ctx, key, "owner-b")
	if err != nil || deleted {
		t.Fatalf("expected mismatch to keep key, deleted=%v err=%v", deleted, err)
	}
	if !srv.Exists(key) {
		t.Fatal("key should survive a mismatched delete")
	}
	deleted, err = client.DeleteIfEquals(ctx, key, "owner-a")
	if err != nil || !deleted {
		t.Fatalf("expected matching delete, deleted=%v err=%v", deleted, err)
	}
	deleted, err = client.DeleteIfEquals(ctx, key, "owner-a")
	if err != nil || deleted {
		t.Fatalf("expected missing key to report false, deleted=%v err=%v", deleted, err)
	}
}

func TestDeletePatternScansAllBatches(t *testing.T) {
	ctx := context.Background()
	client, srv := newTestClient(t)

	for i := 0; i < scanBatch+25; i++ {
		if err := client.Set(ctx, fmt.Sprintf("catalog:product_list:%04d", i), "x", 0); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := client.Set(ctx, "catalog:product_detail:keep", "x", 0); err != nil {
		t.Fatalf("seed: %v", err)
	}

	keys, err := client.Keys(ctx, "catalog:product_list:*")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != scanBatch+25 {
		t.Fatalf("expected %d keys, got %d", scanBatch+25, len(keys))
	}

	deleted, err := client.DeletePattern(ctx, "catalog:product_list:*")
	if err != nil {
		t.Fatalf("delete pattern: %v", err)
	}
	if deleted != int64(scanBatch+25) {
		t.Fatalf("expected %d deleted, got %d", scanBatch+25, deleted)
	}
	if got := srv.Keys(); len(got) != 1 || got[0] != "catalog:product_detail:keep" {
		t.Fatalf("expected one surviving key, got %v", got)
	}
}

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	key := client.CronLockKey("cache-warm")

	ok, err := client.SetNX(ctx, key, "owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, key, "owner-b", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected redis.Nil after del, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.CronLockKey("cache-warm"); got != "catalog:cron:lock:cache-warm" {
		t.Fatalf("unexpected cron lock key %s", got)
	}
	if got := client.buildKey("products_list", " abcd1234 "); got != "catalog:products_list:abcd1234" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := client.buildKey(); got != "catalog" {
		t.Fatalf("unexpected bare key %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Keys(context.Background(), "*"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.DeleteIfEquals(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}

func TestOptionsFromConfigRequiresAddress(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected missing address error")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2", PoolSize: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 || opts.PoolSize != 7 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
