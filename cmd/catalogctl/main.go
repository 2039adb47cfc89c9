package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/internal/catalog"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/config"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "catalogctl", Output: os.Stderr})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "", "command: warm-cache|clear-cache|cache-stats|mint-token")
	top := flag.Int("top", 0, "products to warm (warm-cache); defaults to CATALOG_CACHE_WARM_TOP")
	clearFirst := flag.Bool("clear", false, "drop every cached payload before warming (warm-cache)")
	subject := flag.String("subject", "", "token subject (mint-token)")
	role := flag.String("role", string(enums.AdminRoleAdmin), "token role (mint-token)")
	timeout := flag.Duration("timeout", 5*time.Minute, "command timeout")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "catalogctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      os.Stderr,
		Static:      map[string]any{"env": cfg.App.Env},
	})
	ctx = logg.WithField(ctx, "cmd", *cmd)
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	opts := options{Top: *top, Clear: *clearFirst, Subject: *subject, Role: *role}
	if opts.Top <= 0 {
		opts.Top = cfg.Cache.WarmTop
	}
	d := deps{jwt: cfg.JWT, clock: clock.NewReal(), out: os.Stdout}

	if needsCache(*cmd) {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		defer redisClient.Close()

		payloadCache, err := cache.New(redisClient, logg, nil, d.clock, cache.Options{
			ListTTL:   cfg.Cache.ListTTL,
			DetailTTL: cfg.Cache.DetailTTL,
			Disabled:  cfg.Cache.Disabled,
		})
		requireResource(ctx, logg, "cache", err)
		d.cache = payloadCache

		if *cmd == cmdWarmCache {
			dbClient, err := db.New(ctx, cfg.DB, logg)
			requireResource(ctx, logg, "database", err)
			defer dbClient.Close()

			campaignService, err := campaigns.NewService(campaigns.NewRepository(dbClient.DB()), dbClient, payloadCache, d.clock)
			requireResource(ctx, logg, "campaign service", err)
			catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), campaignService, payloadCache, nil, d.clock, logg)
			requireResource(ctx, logg, "catalog service", err)
			d.warmer = catalogService
			d.campaigns = campaignService
		}
	}

	if err := run(ctx, *cmd, opts, d); err != nil {
		logg.Error(ctx, "catalogctl command failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
