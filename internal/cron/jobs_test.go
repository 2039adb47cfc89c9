package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

type fakeProductWarmer struct {
	limit int
	err   error
}

func (f *fakeProductWarmer) WarmTop(_ context.Context, limit int) (int, error) {
	f.limit = limit
	if f.err != nil {
		return 0, f.err
	}
	return limit, nil
}

type fakeCampaignWarmer struct {
	calls int
	err   error
}

func (f *fakeCampaignWarmer) Active(context.Context) ([]campaigns.CampaignDTO, error) {
	f.calls++
	return nil, f.err
}

func TestCacheWarmJobWarmsProductsAndCampaigns(t *testing.T) {
	products := &fakeProductWarmer{}
	camps := &fakeCampaignWarmer{}
	job, err := NewCacheWarmJob(CacheWarmJobParams{Logger: newTestLogger(), Products: products, Campaigns: camps})
	require.NoError(t, err)
	assert.Equal(t, "cache-warm", job.Name())

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, defaultWarmTopCap, products.limit)
	assert.Equal(t, 1, camps.calls)
}

func TestCacheWarmJobCombinesErrors(t *testing.T) {
	products := &fakeProductWarmer{err: errors.New("db down")}
	camps := &fakeCampaignWarmer{err: errors.New("redis down")}
	job, err := NewCacheWarmJob(CacheWarmJobParams{Logger: newTestLogger(), Products: products, Campaigns: camps, Top: 7})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, 7, products.limit)
	assert.Equal(t, 1, camps.calls, "campaigns still warmed after a product failure")
}

func TestCacheWarmJobRequiresProducts(t *testing.T) {
	_, err := NewCacheWarmJob(CacheWarmJobParams{Logger: newTestLogger()})
	require.Error(t, err)
}

type fakeWindows struct {
	windows []pricing.Window
	err     error
}

func (f *fakeWindows) Windows(context.Context) ([]pricing.Window, error) {
	return f.windows, f.err
}

type fakeClearer struct {
	calls int
	err   error
}

func (f *fakeClearer) InvalidateAll(context.Context) (int64, error) {
	f.calls++
	return 3, f.err
}

func TestCampaignBoundaryJobClearsOnceWhenWindowCrossed(t *testing.T) {
	start := time.Date(2025, 11, 28, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMock(start)
	end := start.Add(7 * time.Minute)
	windows := &fakeWindows{windows: []pricing.Window{{End: &end}}}
	clearer := &fakeClearer{}

	job, err := NewCampaignBoundaryJob(CampaignBoundaryJobParams{
		Logger:   newTestLogger(),
		Windows:  windows,
		Cache:    clearer,
		Clock:    clk,
		Lookback: 5 * time.Minute,
	})
	require.NoError(t, err)
	assert.Equal(t, "campaign-boundary", job.Name())
	ctx := context.Background()

	require.NoError(t, job.Run(ctx))
	assert.Zero(t, clearer.calls, "nothing crossed yet")

	clk.Advance(5 * time.Minute)
	require.NoError(t, job.Run(ctx))
	assert.Zero(t, clearer.calls)

	clk.Advance(5 * time.Minute)
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, clearer.calls)

	clk.Advance(5 * time.Minute)
	require.NoError(t, job.Run(ctx))
	assert.Equal(t, 1, clearer.calls, "boundary handled only once")
}

func TestCampaignBoundaryJobRetriesAfterFailure(t *testing.T) {
	start := time.Date(2025, 11, 28, 10, 0, 0, 0, time.UTC)
	clk := clock.NewMock(start)
	opened := start.Add(-time.Minute)
	clearer := &fakeClearer{err: errors.New("redis down")}

	job, err := NewCampaignBoundaryJob(CampaignBoundaryJobParams{
		Logger:   newTestLogger(),
		Windows:  &fakeWindows{windows: []pricing.Window{{Start: &opened}}},
		Cache:    clearer,
		Clock:    clk,
		Lookback: 5 * time.Minute,
	})
	require.NoError(t, err)

	require.Error(t, job.Run(context.Background()))
	clearer.err = nil
	clk.Advance(time.Minute)
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 2, clearer.calls)
}

func TestCampaignBoundaryJobSurfacesWindowErrors(t *testing.T) {
	job, err := NewCampaignBoundaryJob(CampaignBoundaryJobParams{
		Logger:  newTestLogger(),
		Windows: &fakeWindows{err: errors.New("db down")},
		Cache:   &fakeClearer{},
	})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
}

func TestCountCrossedIsHalfOpen(t *testing.T) {
	since := time.Date(2025, 11, 28, 10, 0, 0, 0, time.UTC)
	now := since.Add(time.Hour)
	atSince, atNow, inside, after := since, now, since.Add(time.Minute), now.Add(time.Second)
	windows := []pricing.Window{
		{Start: &atSince},
		{End: &atNow},
		{Start: &inside, End: &after},
		{},
	}
	assert.Equal(t, 2, countCrossed(windows, since, now))
}
