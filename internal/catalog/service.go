// Package catalog serves published products with their resolved discounts
// and price ranges, and handles operator writes to tiers and discounts.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/metrics"
	"github.com/angelmondragon/catalog-discounts/pkg/pagination"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

// LookupField names the column a detail request matches on.
type LookupField string

const (
	LookupID   LookupField = "id"
	LookupSlug LookupField = "slug"
	LookupKey  LookupField = "key"
)

// Lookup identifies one product.
type Lookup struct {
	Field LookupField
	Value string
}

// ProductFilters are the storefront listing filters.
type ProductFilters struct {
	Search        string
	CategorySlug  string
	Tags          []string
	PriceMin      *decimal.Decimal
	PriceMax      *decimal.Decimal
	HasDiscount   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// ListInput is one listing request.
type ListInput struct {
	Filters    ProductFilters
	Pagination pagination.Params
}

// ProductPage is one page of product cards.
type ProductPage = pagination.Page[ProductCardDTO]

// Service is the storefront read surface.
type Service interface {
	List(ctx context.Context, input ListInput) (*ProductPage, error)
	ByCategory(ctx context.Context, slug string, params pagination.Params) (*ProductPage, error)
	ByTag(ctx context.Context, slug string, params pagination.Params) (*ProductPage, error)
	Discounted(ctx context.Context, params pagination.Params) (*ProductPage, error)
	Detail(ctx context.Context, lookup Lookup) (*ProductDetailDTO, error)
	Tags(ctx context.Context) ([]TagDTO, error)
	Windows(ctx context.Context) ([]pricing.Window, error)
	WarmTop(ctx context.Context, limit int) (int, error)
}

// CampaignSource supplies the campaign rules of the current snapshot.
type CampaignSource interface {
	Rules(ctx context.Context) ([]pricing.Campaign, error)
}

type payloadCache interface {
	Get(ctx context.Context, prefix string, params cache.Params, dest any) bool
	SetList(ctx context.Context, prefix string, params cache.Params, value any, nextTransition *time.Time)
	SetDetail(ctx context.Context, prefix string, params cache.Params, value any, nextTransition *time.Time)
}

type service struct {
	repo      *Repository
	campaigns CampaignSource
	cache     payloadCache
	metrics   *metrics.PricingMetrics
	clock     clock.Clock
	labels    pricing.UnitLabels
	logg      *logger.Logger
}

// NewService wires the storefront service. Metrics may be nil.
func NewService(repo *Repository, campaigns CampaignSource, c payloadCache, m *metrics.PricingMetrics, clk clock.Clock, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if campaigns == nil {
		return nil, fmt.Errorf("campaign source required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	return &service{
		repo:      repo,
		campaigns: campaigns,
		cache:     c,
		metrics:   m,
		clock:     clk,
		labels:    pricing.DefaultUnitLabels(),
		logg:      logg,
	}, nil
}

// pass is one evaluation of the catalog at a fixed instant.
type pass struct {
	now        time.Time
	snapshot   pricing.Snapshot
	aggregator *pricing.Aggregator
}

func (s *service) newPass(ctx context.Context) (*pass, error) {
	rules, err := s.campaigns.Rules(ctx)
	if err != nil {
		return nil, err
	}
	categoryRows, err := s.repo.ListActiveCategoryDiscounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category discounts")
	}
	snapshot := pricing.Snapshot{
		Campaigns:         rules,
		CategoryDiscounts: toCategoryDiscounts(categoryRows),
	}
	now := s.clock.Now()
	return &pass{
		now:        now,
		snapshot:   snapshot,
		aggregator: pricing.NewAggregator(pricing.NewCascade(clock.Fixed(now), snapshot), s.labels),
	}, nil
}

func (s *service) quote(p *pass, m *models.Product) []pricing.Quote {
	quotes := p.aggregator.Quotes(toPricingTiers(m), p.now)
	for _, q := range quotes {
		s.metrics.ObserveResolution(q.Resolution.Source)
	}
	return quotes
}

// nextTransition is the earliest moment a payload built from products could
// change because a discount window opens or closes.
func (p *pass) nextTransition(products []models.Product) *time.Time {
	windows := p.snapshot.Windows()
	for _, m := range products {
		for _, d := range m.Discounts {
			windows = append(windows, pricing.Window{Start: d.StartDate, End: d.ExpirationDate})
		}
	}
	return pricing.NextTransition(p.now, windows...)
}

func (s *service) List(ctx context.Context, input ListInput) (*ProductPage, error) {
	return s.list(ctx, cache.PrefixProductsList, input)
}

func (s *service) ByCategory(ctx context.Context, slug string, params pagination.Params) (*ProductPage, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}
	return s.list(ctx, cache.PrefixProductsCategory, ListInput{
		Filters:    ProductFilters{CategorySlug: slug},
		Pagination: params,
	})
}

func (s *service) ByTag(ctx context.Context, slug string, params pagination.Params) (*ProductPage, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tag slug is required")
	}
	return s.list(ctx, cache.PrefixProductsTag, ListInput{
		Filters:    ProductFilters{Tags: []string{slug}},
		Pagination: params,
	})
}

func (s *service) Discounted(ctx context.Context, params pagination.Params) (*ProductPage, error) {
	hasDiscount := true
	return s.list(ctx, cache.PrefixProductsDiscounted, ListInput{
		Filters:    ProductFilters{HasDiscount: &hasDiscount},
		Pagination: params,
	})
}

func (s *service) list(ctx context.Context, prefix string, input ListInput) (*ProductPage, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	f := input.Filters
	if f.PriceMin != nil && f.PriceMax != nil && f.PriceMin.GreaterThan(*f.PriceMax) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_min cannot exceed price_max")
	}

	params := listParams(input)
	var cached ProductPage
	if s.cache.Get(ctx, prefix, params, &cached) {
		return &cached, nil
	}

	rows, err := s.repo.ListPublished(ctx, ProductQuery{
		Search:       f.Search,
		CategorySlug: f.CategorySlug,
		Tags:         f.Tags,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	p, err := s.newPass(ctx)
	if err != nil {
		return nil, err
	}

	cards := make([]ProductCardDTO, 0, len(rows))
	for i := range rows {
		m := &rows[i]
		if !matchesCreated(m.CreatedAt, f.CreatedAfter, f.CreatedBefore) || !matchesPrice(m.Tiers, f.PriceMin, f.PriceMax) {
			continue
		}
		card := newCardDTO(m, s.quote(p, m))
		if f.HasDiscount != nil && card.HasActiveDiscount != *f.HasDiscount {
			continue
		}
		cards = append(cards, card)
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if !cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].CreatedAt.After(cards[j].CreatedAt)
		}
		return cards[i].ID.String() > cards[j].ID.String()
	})

	page, err := pagination.Paginate(cards, input.Pagination, func(c ProductCardDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.CreatedAt, ID: c.ID}
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	s.cache.SetList(ctx, prefix, params, page, p.nextTransition(rows))
	return &page, nil
}

func (s *service) Detail(ctx context.Context, lookup Lookup) (*ProductDetailDTO, error) {
	lookup.Value = strings.TrimSpace(lookup.Value)
	if lookup.Value == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product identifier is required")
	}
	if normalizeField(lookup.Field) == LookupID {
		// uuid.Parse accepts several spellings; cache under the one invalidation uses.
		id, err := uuid.Parse(lookup.Value)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		lookup.Value = id.String()
	}
	prefix := detailPrefix(lookup.Field)
	params := cache.Params{string(normalizeField(lookup.Field)): lookup.Value}

	var cached ProductDetailDTO
	if s.cache.Get(ctx, prefix, params, &cached) {
		return &cached, nil
	}

	m, err := s.repo.FindPublished(ctx, lookup)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	p, err := s.newPass(ctx)
	if err != nil {
		return nil, err
	}
	detail := newDetailDTO(m, s.quote(p, m))
	s.cache.SetDetail(ctx, prefix, params, detail, p.nextTransition([]models.Product{*m}))
	return detail, nil
}

func (s *service) Tags(ctx context.Context) ([]TagDTO, error) {
	rows, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tags")
	}
	out := make([]TagDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, newTagDTO(row))
	}
	return out, nil
}

// Windows lists every campaign, category and product discount window. The
// cron worker uses it to spot window boundaries between runs.
func (s *service) Windows(ctx context.Context) ([]pricing.Window, error) {
	p, err := s.newPass(ctx)
	if err != nil {
		return nil, err
	}
	productRows, err := s.repo.ListProductDiscountWindows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product discounts")
	}
	return append(p.snapshot.Windows(), productWindows(productRows)...), nil
}

// WarmTop renders the first listing page and the detail payloads of the
// newest published products so the first visitors hit the cache.
func (s *service) WarmTop(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}
	first, err := s.List(ctx, ListInput{})
	if err != nil {
		return 0, err
	}
	if _, err := s.Discounted(ctx, pagination.Params{}); err != nil {
		return 0, err
	}

	rows, err := s.repo.ListPublished(ctx, ProductQuery{})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	warmed := 0
	for _, row := range rows {
		if _, err := s.Detail(ctx, Lookup{Field: LookupID, Value: row.ID.String()}); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"product_id": row.ID.String(), "error": err.Error()}), "cache warm skipped product")
			continue
		}
		warmed++
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"details": warmed, "first_page": len(first.Items)}), "catalog cache warmed")
	return warmed, nil
}

func listParams(input ListInput) cache.Params {
	f := input.Filters
	params := cache.Params{
		"limit": pagination.NormalizeLimit(input.Pagination.Limit),
	}
	if input.Pagination.Cursor != "" {
		params["cursor"] = input.Pagination.Cursor
	}
	if v := strings.ToLower(strings.TrimSpace(f.Search)); v != "" {
		params["search"] = v
	}
	if v := strings.TrimSpace(f.CategorySlug); v != "" {
		params["category"] = v
	}
	if tags := normalizeTags(f.Tags); len(tags) > 0 {
		sort.Strings(tags)
		params["tags"] = strings.Join(tags, ",")
	}
	if f.PriceMin != nil {
		params["price_min"] = f.PriceMin.String()
	}
	if f.PriceMax != nil {
		params["price_max"] = f.PriceMax.String()
	}
	if f.HasDiscount != nil {
		params["has_discount"] = *f.HasDiscount
	}
	if f.CreatedAfter != nil {
		params["created_after"] = f.CreatedAfter.UTC().Format(time.RFC3339)
	}
	if f.CreatedBefore != nil {
		params["created_before"] = f.CreatedBefore.UTC().Format(time.RFC3339)
	}
	return params
}

func normalizeField(field LookupField) LookupField {
	switch field {
	case LookupSlug, LookupKey:
		return field
	default:
		return LookupID
	}
}

func detailPrefix(field LookupField) string {
	switch field {
	case LookupSlug:
		return cache.PrefixProductSlug
	case LookupKey:
		return cache.PrefixProductKey
	default:
		return cache.PrefixProductDetail
	}
}

func matchesCreated(createdAt time.Time, after, before *time.Time) bool {
	if after != nil && createdAt.Before(*after) {
		return false
	}
	if before != nil && createdAt.After(*before) {
		return false
	}
	return true
}

// matchesPrice keeps products with at least one tier at or above min and at
// least one tier at or below max.
func matchesPrice(tiers []models.PriceTier, min, max *decimal.Decimal) bool {
	if min == nil && max == nil {
		return true
	}
	minOK, maxOK := min == nil, max == nil
	for _, t := range tiers {
		if min != nil && t.Price.GreaterThanOrEqual(*min) {
			minOK = true
		}
		if max != nil && t.Price.LessThanOrEqual(*max) {
			maxOK = true
		}
	}
	return minOK && maxOK
}
