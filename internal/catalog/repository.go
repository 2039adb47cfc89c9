package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/internal/repo"
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
)

// ProductQuery holds the filters that are pushed down to SQL. Window, price
// and discount filters run after resolution.
type ProductQuery struct {
	Search       string
	CategorySlug string
	Tags         []string
}

// Repository reads and writes catalog rows.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) withDetail(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.name ASC")
		}).
		Preload("Tiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("price_tiers.quantity ASC").Order("price_tiers.created_at ASC")
		}).
		Preload("Discounts", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_discounts.start_date DESC NULLS FIRST").Order("product_discounts.created_at DESC")
		})
}

// ListPublished returns published products matching query, newest first.
func (r *Repository) ListPublished(ctx context.Context, query ProductQuery) ([]models.Product, error) {
	qb := r.withDetail(ctx).Model(&models.Product{}).Where("products.published = ?", true)

	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.title) LIKE ? OR LOWER(COALESCE(products.short_description, '')) LIKE ?)", pattern, pattern)
	}
	if slug := strings.TrimSpace(query.CategorySlug); slug != "" {
		qb = qb.Where("products.category_id IN (SELECT categories.id FROM categories WHERE categories.slug = ?)", slug)
	}
	if tags := normalizeTags(query.Tags); len(tags) > 0 {
		qb = qb.Where(`EXISTS (
			SELECT 1 FROM product_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.product_id = products.id AND (t.slug IN ? OR LOWER(t.name) IN ?)
		)`, tags, tags)
	}

	var rows []models.Product
	if err := qb.Order("products.created_at DESC").Order("products.id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindPublished loads one published product by id, slug or key.
func (r *Repository) FindPublished(ctx context.Context, lookup Lookup) (*models.Product, error) {
	var row models.Product
	qb := r.withDetail(ctx).Where("products.published = ?", true)
	switch lookup.Field {
	case LookupSlug:
		qb = qb.Where("products.slug = ?", lookup.Value)
	case LookupKey:
		qb = qb.Where("products.key = ?", lookup.Value)
	default:
		id, err := uuid.Parse(lookup.Value)
		if err != nil {
			return nil, gorm.ErrRecordNotFound
		}
		qb = qb.Where("products.id = ?", id)
	}
	if err := qb.First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindProduct loads a product regardless of its published flag.
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	if err := r.FindByID(ctx, &row, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListActiveCategoryDiscounts returns flagged category discounts, newest
// first. Windows are checked by the resolver.
func (r *Repository) ListActiveCategoryDiscounts(ctx context.Context) ([]models.CategoryDiscount, error) {
	var rows []models.CategoryDiscount
	if err := r.DB(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProductDiscountWindows returns every product discount that carries a
// window leg.
func (r *Repository) ListProductDiscountWindows(ctx context.Context) ([]models.ProductDiscount, error) {
	var rows []models.ProductDiscount
	if err := r.DB(ctx).
		Where("start_date IS NOT NULL OR expiration_date IS NOT NULL").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListTags returns every tag ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var rows []models.Tag
	if err := r.DB(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCategory loads a category by id.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var row models.Category
	if err := r.FindByID(ctx, &row, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// FindTier loads a price tier by id.
func (r *Repository) FindTier(ctx context.Context, id uuid.UUID) (*models.PriceTier, error) {
	var row models.PriceTier
	if err := r.FindByID(ctx, &row, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateTier(ctx context.Context, tier *models.PriceTier) error {
	return r.DB(ctx).Create(tier).Error
}

func (r *Repository) SaveTier(ctx context.Context, tier *models.PriceTier) error {
	return r.DB(ctx).Save(tier).Error
}

func (r *Repository) DeleteTier(ctx context.Context, id uuid.UUID) error {
	_, err := r.DeleteByID(ctx, &models.PriceTier{}, id)
	return err
}

// FindProductDiscount loads a product discount by id.
func (r *Repository) FindProductDiscount(ctx context.Context, id uuid.UUID) (*models.ProductDiscount, error) {
	var row models.ProductDiscount
	if err := r.FindByID(ctx, &row, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateProductDiscount(ctx context.Context, discount *models.ProductDiscount) error {
	return r.DB(ctx).Create(discount).Error
}

func (r *Repository) DeleteProductDiscount(ctx context.Context, id uuid.UUID) error {
	_, err := r.DeleteByID(ctx, &models.ProductDiscount{}, id)
	return err
}

// FindCategoryDiscount loads a category discount by id.
func (r *Repository) FindCategoryDiscount(ctx context.Context, id uuid.UUID) (*models.CategoryDiscount, error) {
	var row models.CategoryDiscount
	if err := r.FindByID(ctx, &row, id); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) CreateCategoryDiscount(ctx context.Context, discount *models.CategoryDiscount) error {
	return r.DB(ctx).Create(discount).Error
}

func (r *Repository) DeleteCategoryDiscount(ctx context.Context, id uuid.UUID) error {
	_, err := r.DeleteByID(ctx, &models.CategoryDiscount{}, id)
	return err
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
