package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/pkg/auth"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/config"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

const (
	cmdWarmCache  = "warm-cache"
	cmdClearCache = "clear-cache"
	cmdCacheStats = "cache-stats"
	cmdMintToken  = "mint-token"
)

type options struct {
	Top     int
	Clear   bool
	Subject string
	Role    string
}

type cacheOps interface {
	InvalidateAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (cache.Stats, error)
}

type productWarmer interface {
	WarmTop(ctx context.Context, limit int) (int, error)
}

type campaignWarmer interface {
	Active(ctx context.Context) ([]campaigns.CampaignDTO, error)
}

type deps struct {
	cache     cacheOps
	warmer    productWarmer
	campaigns campaignWarmer
	jwt       config.JWTConfig
	clock     clock.Clock
	out       io.Writer
}

func needsCache(cmd string) bool {
	switch cmd {
	case cmdWarmCache, cmdClearCache, cmdCacheStats:
		return true
	}
	return false
}

func run(ctx context.Context, cmd string, opts options, d deps) error {
	switch cmd {
	case cmdWarmCache:
		return warmCache(ctx, opts, d)
	case cmdClearCache:
		cleared, err := d.cache.InvalidateAll(ctx)
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		return writeJSON(d.out, map[string]int64{"cleared": cleared})
	case cmdCacheStats:
		stats, err := d.cache.Stats(ctx)
		if err != nil {
			return fmt.Errorf("cache stats: %w", err)
		}
		return writeJSON(d.out, stats)
	case cmdMintToken:
		return mintToken(opts, d)
	case "":
		return fmt.Errorf("missing -cmd")
	default:
		return fmt.Errorf("unknown -cmd value %q", cmd)
	}
}

type warmResult struct {
	Cleared   int64 `json:"cleared"`
	Products  int   `json:"products"`
	Campaigns int   `json:"campaigns"`
	Top       int   `json:"top"`
}

func warmCache(ctx context.Context, opts options, d deps) error {
	if d.warmer == nil {
		return fmt.Errorf("catalog service required for %s", cmdWarmCache)
	}
	result := warmResult{Top: opts.Top}
	if opts.Clear {
		cleared, err := d.cache.InvalidateAll(ctx)
		if err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		result.Cleared = cleared
	}
	warmed, err := d.warmer.WarmTop(ctx, opts.Top)
	if err != nil {
		return fmt.Errorf("warm products: %w", err)
	}
	result.Products = warmed
	if d.campaigns != nil {
		active, err := d.campaigns.Active(ctx)
		if err != nil {
			return fmt.Errorf("warm campaigns: %w", err)
		}
		result.Campaigns = len(active)
	}
	return writeJSON(d.out, result)
}

func mintToken(opts options, d deps) error {
	subject := strings.TrimSpace(opts.Subject)
	if subject == "" {
		return fmt.Errorf("missing -subject for %s", cmdMintToken)
	}
	role, err := enums.ParseAdminRole(opts.Role)
	if err != nil {
		return err
	}
	token, err := auth.MintAccessToken(d.jwt, d.clock.Now(), auth.AccessTokenPayload{Subject: subject, Role: role})
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}
	return writeJSON(d.out, map[string]string{
		"access_token": token,
		"subject":      subject,
		"role":         role.String(),
		"expires_in":   d.jwt.TokenTTL().String(),
	})
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
