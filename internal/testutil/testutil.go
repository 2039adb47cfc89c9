// Package testutil builds throwaway SQLite databases, Redis caches and
// catalog fixtures for package tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/config"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/metrics"
	"github.com/angelmondragon/catalog-discounts/pkg/migrate"
	"github.com/angelmondragon/catalog-discounts/pkg/redis"
)

// Now is the reference instant fixtures are built around.
var Now = time.Date(2025, 11, 28, 10, 0, 0, 0, time.UTC)

// NewDB opens a private in-memory SQLite database with every catalog table.
func NewDB(t *testing.T) *db.Client {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8]),
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := migrate.AutoMigrateModels(context.Background(), client); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return client
}

// Logger returns a JSON logger writing into buf.
func Logger(buf *bytes.Buffer) *logger.Logger {
	if buf == nil {
		buf = &bytes.Buffer{}
	}
	return logger.New(logger.Options{ServiceName: "test", Output: buf})
}

// NewRedis starts a miniredis server and returns a client bound to it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: srv.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

// NewCache builds a cache over a fresh miniredis server.
func NewCache(t *testing.T, clk clock.Clock, m *metrics.PricingMetrics) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	client, srv := NewRedis(t)
	c, err := cache.New(client, Logger(nil), m, clk, cache.Options{})
	if err != nil {
		t.Fatalf("build cache: %v", err)
	}
	return c, srv
}

// MustCategory inserts a category.
func MustCategory(t *testing.T, client *db.Client, title string) *models.Category {
	t.Helper()
	category := &models.Category{Title: title, Slug: slugify(title)}
	if err := client.DB().Create(category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category
}

// MustTag inserts a tag.
func MustTag(t *testing.T, client *db.Client, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: slugify(name)}
	if err := client.DB().Create(tag).Error; err != nil {
		t.Fatalf("create tag: %v", err)
	}
	return tag
}

// ProductOption tweaks a product fixture before insert.
type ProductOption func(*models.Product)

// InCategory assigns the product to category.
func InCategory(category *models.Category) ProductOption {
	return func(p *models.Product) {
		id := category.ID
		p.CategoryID = &id
	}
}

// Unpublished hides the product from storefront listings.
func Unpublished() ProductOption {
	return func(p *models.Product) { p.Published = false }
}

// CreatedAt overrides the creation timestamp.
func CreatedAt(ts time.Time) ProductOption {
	return func(p *models.Product) { p.CreatedAt = ts }
}

// WithTags links the product to tags.
func WithTags(tags ...*models.Tag) ProductOption {
	return func(p *models.Product) {
		for _, tag := range tags {
			p.Tags = append(p.Tags, *tag)
		}
	}
}

// WithDescription sets the short description.
func WithDescription(text string) ProductOption {
	return func(p *models.Product) { p.ShortDescription = &text }
}

// MustProduct inserts a published product.
func MustProduct(t *testing.T, client *db.Client, title string, opts ...ProductOption) *models.Product {
	t.Helper()
	slug := slugify(title)
	product := &models.Product{
		Key:       strings.ToUpper(strings.ReplaceAll(slug, "-", "_")),
		Title:     title,
		Slug:      slug,
		Published: true,
		CreatedAt: Now.Add(-48 * time.Hour),
	}
	for _, opt := range opts {
		opt(product)
	}
	if err := client.DB().Omit("Tags.*").Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

// MustTier inserts a price tier without an inline discount.
func MustTier(t *testing.T, client *db.Client, productID uuid.UUID, price string, quantity int) *models.PriceTier {
	t.Helper()
	tier := &models.PriceTier{
		ProductID:    productID,
		Price:        decimal.RequireFromString(price),
		Unit:         enums.UnitPiece,
		DiscountKind: enums.DiscountKindFixedAmount,
		Quantity:     quantity,
		LeadTimeDays: 1,
	}
	if err := client.DB().Create(tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}
	return tier
}

// MustCampaign inserts a global percentage campaign running around Now.
func MustCampaign(t *testing.T, client *db.Client, code string, priority int, pct string) *models.DiscountCampaign {
	t.Helper()
	campaign := &models.DiscountCampaign{
		Name:           strings.ToUpper(code[:1]) + strings.ReplaceAll(code[1:], "-", " "),
		Code:           code,
		Value:          decimal.RequireFromString(pct),
		Kind:           enums.DiscountKindPercentage,
		Scope:          enums.CampaignScopeGlobal,
		StartDate:      Now.Add(-24 * time.Hour),
		ExpirationDate: Now.Add(24 * time.Hour),
		Priority:       priority,
		IsActive:       true,
	}
	if err := client.DB().Create(campaign).Error; err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	return campaign
}

func slugify(value string) string {
	return strings.Trim(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "-"), "-")
}
