package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/internal/catalog"
	"github.com/angelmondragon/catalog-discounts/internal/testutil"
	"github.com/angelmondragon/catalog-discounts/pkg/auth"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/config"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

func newDeps(t *testing.T) (deps, *bytes.Buffer) {
	t.Helper()
	clk := clock.Fixed(testutil.Now)
	client := testutil.NewDB(t)
	c, _ := testutil.NewCache(t, clk, nil)

	campaignSvc, err := campaigns.NewService(campaigns.NewRepository(client.DB()), client, c, clk)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(client.DB()), campaignSvc, c, nil, clk, testutil.Logger(nil))
	require.NoError(t, err)

	product := testutil.MustProduct(t, client, "Kraft Bags")
	testutil.MustTier(t, client, product.ID, "10", 100)
	testutil.MustCampaign(t, client, "black-friday", 1, "10")

	out := &bytes.Buffer{}
	return deps{
		cache:     c,
		warmer:    catalogSvc,
		campaigns: campaignSvc,
		jwt:       config.JWTConfig{Secret: "secret", Issuer: "catalog-discounts", ExpirationMinutes: 15},
		clock:     clk,
		out:       out,
	}, out
}

func TestWarmThenStatsThenClear(t *testing.T) {
	d, out := newDeps(t)
	ctx := context.Background()

	require.NoError(t, run(ctx, cmdWarmCache, options{Top: 10, Clear: true}, d))
	var warmed warmResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &warmed))
	assert.Equal(t, 1, warmed.Products)
	assert.Equal(t, 1, warmed.Campaigns)

	out.Reset()
	require.NoError(t, run(ctx, cmdCacheStats, options{}, d))
	var stats cache.Stats
	require.NoError(t, json.Unmarshal(out.Bytes(), &stats))
	assert.Equal(t, 1, stats.ByPrefix[cache.PrefixProductDetail])
	assert.Equal(t, 1, stats.ByPrefix[cache.PrefixCampaigns])

	out.Reset()
	require.NoError(t, run(ctx, cmdClearCache, options{}, d))
	var cleared map[string]int64
	require.NoError(t, json.Unmarshal(out.Bytes(), &cleared))
	assert.EqualValues(t, stats.Total, cleared["cleared"])
}

func TestMintTokenRoundTrips(t *testing.T) {
	d, out := newDeps(t)
	d.clock = clock.NewReal()

	require.NoError(t, run(context.Background(), cmdMintToken, options{Subject: "ops@example.com", Role: "admin"}, d))
	var payload map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))

	claims, err := auth.ParseAccessToken(d.jwt, payload["access_token"])
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, enums.AdminRoleAdmin, claims.Role)
	assert.Equal(t, "15m0s", payload["expires_in"])
}

func TestRunRejectsBadInput(t *testing.T) {
	d, _ := newDeps(t)
	ctx := context.Background()

	assert.Error(t, run(ctx, "", options{}, d))
	assert.Error(t, run(ctx, "reindex", options{}, d))
	assert.Error(t, run(ctx, cmdMintToken, options{Role: "admin"}, d))
	assert.Error(t, run(ctx, cmdMintToken, options{Subject: "ops", Role: "root"}, d))

	d.warmer = nil
	assert.Error(t, run(ctx, cmdWarmCache, options{Top: 5}, d))
	assert.False(t, needsCache(cmdMintToken))
}
