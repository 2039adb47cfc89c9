package campaigns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/internal/testutil"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
)

type harness struct {
	svc    Service
	client *db.Client
	cache  *cache.Cache
}

func newHarness(t *testing.T) harness {
	t.Helper()
	client := testutil.NewDB(t)
	c, _ := testutil.NewCache(t, clock.Fixed(testutil.Now), nil)
	svc, err := NewService(NewRepository(client.DB()), client, c, clock.Fixed(testutil.Now))
	require.NoError(t, err)
	return harness{svc: svc, client: client, cache: c}
}

func validInput(code string) CampaignInput {
	return CampaignInput{
		Name:           "Black Friday",
		Code:           code,
		Value:          decimal.NewFromInt(20),
		Kind:           enums.DiscountKindPercentage,
		Scope:          enums.CampaignScopeGlobal,
		StartDate:      testutil.Now.Add(-time.Hour),
		ExpirationDate: testutil.Now.Add(72 * time.Hour),
		Priority:       10,
		IsActive:       true,
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestCreateStoresScopeAndClearsCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	category := testutil.MustCategory(t, h.client, "Packaging")

	h.cache.SetList(ctx, cache.PrefixProductsList, cache.Params{"page": 1}, []string{"stale"}, nil)

	input := validInput("  Packaging-Week ")
	input.Scope = enums.CampaignScopeCategory
	input.CategoryIDs = []uuid.UUID{category.ID, category.ID}

	created, err := h.svc.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "packaging-week", created.Code)
	assert.Equal(t, []uuid.UUID{category.ID}, created.CategoryIDs)
	assert.Empty(t, created.ProductIDs)

	var stale []string
	assert.False(t, h.cache.Get(ctx, cache.PrefixProductsList, cache.Params{"page": 1}, &stale))

	rules, err := h.svc.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, []uuid.UUID{category.ID}, rules[0].CategoryIDs)
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cases := map[string]func(*CampaignInput){
		"missing name":         func(in *CampaignInput) { in.Name = " " },
		"bad code":             func(in *CampaignInput) { in.Code = "black friday" },
		"zero value":           func(in *CampaignInput) { in.Value = decimal.Zero },
		"percentage over 100":  func(in *CampaignInput) { in.Value = decimal.NewFromInt(101) },
		"unknown kind":         func(in *CampaignInput) { in.Kind = "bogus" },
		"unknown scope":        func(in *CampaignInput) { in.Scope = "bogus" },
		"end before start":     func(in *CampaignInput) { in.ExpirationDate = in.StartDate.Add(-time.Minute) },
		"end equals start":     func(in *CampaignInput) { in.ExpirationDate = in.StartDate },
		"category without ids": func(in *CampaignInput) { in.Scope = enums.CampaignScopeCategory },
		"products without ids": func(in *CampaignInput) { in.Scope = enums.CampaignScopeProducts },
		"unknown product": func(in *CampaignInput) {
			in.Scope = enums.CampaignScopeProducts
			in.ProductIDs = []uuid.UUID{uuid.New()}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validInput("black-friday")
			mutate(&input)
			_, err := h.svc.Create(ctx, input)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
		})
	}

	fixed := validInput("fixed-off")
	fixed.Kind = enums.DiscountKindFixedAmount
	fixed.Value = decimal.NewFromInt(250)
	_, err := h.svc.Create(ctx, fixed)
	require.NoError(t, err, "fixed amounts are not capped at 100")
}

func TestCreateDuplicateCodeConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Create(ctx, validInput("black-friday"))
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, validInput("black-friday"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestActiveFeaturedUpcoming(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	low := testutil.MustCampaign(t, h.client, "low", 1, "5")
	high := testutil.MustCampaign(t, h.client, "high", 9, "10")

	expired := testutil.MustCampaign(t, h.client, "expired", 50, "30")
	expired.StartDate = testutil.Now.Add(-72 * time.Hour)
	expired.ExpirationDate = testutil.Now.Add(-48 * time.Hour)
	require.NoError(t, h.client.DB().Save(expired).Error)

	for i := 1; i <= 6; i++ {
		future := testutil.MustCampaign(t, h.client, "future-"+string(rune('a'+i)), 1, "5")
		future.StartDate = testutil.Now.Add(time.Duration(7-i) * 24 * time.Hour)
		future.ExpirationDate = future.StartDate.Add(24 * time.Hour)
		require.NoError(t, h.client.DB().Save(future).Error)
	}

	active, err := h.svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, high.ID, active[0].ID)
	assert.Equal(t, low.ID, active[1].ID)

	featured, err := h.svc.Featured(ctx)
	require.NoError(t, err)
	assert.Equal(t, "high", featured.Code)

	upcoming, err := h.svc.Upcoming(ctx)
	require.NoError(t, err)
	require.Len(t, upcoming, upcomingLimit)
	for i := 1; i < len(upcoming); i++ {
		assert.True(t, upcoming[i-1].StartDate.Before(upcoming[i].StartDate))
	}
	assert.Equal(t, "future-g", upcoming[0].Code)

	// the expired campaign is still reachable by code while flagged
	byCode, err := h.svc.ByCode(ctx, "EXPIRED")
	require.NoError(t, err)
	assert.Equal(t, expired.ID, byCode.ID)
}

func TestActiveServedFromCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	testutil.MustCampaign(t, h.client, "first", 1, "5")

	active, err := h.svc.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)

	// direct inserts bypass invalidation, so the cached view is returned
	testutil.MustCampaign(t, h.client, "second", 2, "5")
	active, err = h.svc.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = h.svc.Create(ctx, validInput("third"))
	require.NoError(t, err)
	active, err = h.svc.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestFeaturedNotFound(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Featured(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestByCodeIgnoresInactive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	input := validInput("paused")
	input.IsActive = false
	_, err := h.svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = h.svc.ByCode(ctx, "paused")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateReplacesScope(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	kraft := testutil.MustProduct(t, h.client, "Kraft Bags")
	boxes := testutil.MustProduct(t, h.client, "Mailer Boxes")

	input := validInput("spotlight")
	input.Scope = enums.CampaignScopeProducts
	input.ProductIDs = []uuid.UUID{kraft.ID}
	created, err := h.svc.Create(ctx, input)
	require.NoError(t, err)

	input.ProductIDs = []uuid.UUID{boxes.ID}
	input.Priority = 99
	updated, err := h.svc.Update(ctx, created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Priority)
	assert.Equal(t, []uuid.UUID{boxes.ID}, updated.ProductIDs)

	_, err = h.svc.Update(ctx, uuid.New(), input)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	created, err := h.svc.Create(ctx, validInput("gone-soon"))
	require.NoError(t, err)

	require.NoError(t, h.svc.Delete(ctx, created.ID))
	err = h.svc.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	list, err := h.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
