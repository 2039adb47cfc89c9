package campaigns

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/internal/repo"
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
)

// Repository persists discount campaigns and their scope associations.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Bind(tx)}
}

func (r *Repository) withScope(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Preload("Categories").
		Preload("Products")
}

// ListActiveFlagged returns every campaign with is_active set, whatever its
// window. Window filtering happens against the caller's clock.
func (r *Repository) ListActiveFlagged(ctx context.Context) ([]models.DiscountCampaign, error) {
	var rows []models.DiscountCampaign
	if err := r.withScope(ctx).
		Where("is_active = ?", true).
		Order("priority DESC").
		Order("start_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListAll returns every campaign, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.DiscountCampaign, error) {
	var rows []models.DiscountCampaign
	if err := r.withScope(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a campaign with its scope.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DiscountCampaign, error) {
	var row models.DiscountCampaign
	if err := r.withScope(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindActiveByCode loads an is_active campaign by its code.
func (r *Repository) FindActiveByCode(ctx context.Context, code string) (*models.DiscountCampaign, error) {
	var row models.DiscountCampaign
	if err := r.withScope(ctx).
		Where("code = ? AND is_active = ?", code, true).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts the campaign together with its category and product links.
func (r *Repository) Create(ctx context.Context, campaign *models.DiscountCampaign) error {
	return r.DB(ctx).Omit("Categories.*", "Products.*").Create(campaign).Error
}

// Update saves scalar columns and replaces the scope associations.
func (r *Repository) Update(ctx context.Context, campaign *models.DiscountCampaign) error {
	tx := r.DB(ctx)
	if err := tx.Omit("Categories", "Products").Save(campaign).Error; err != nil {
		return err
	}
	if err := tx.Model(campaign).Association("Categories").Replace(campaign.Categories); err != nil {
		return err
	}
	return tx.Model(campaign).Association("Products").Replace(campaign.Products)
}

// Delete removes the campaign and its links.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.DB(ctx)
	campaign := &models.DiscountCampaign{ID: id}
	if err := tx.Model(campaign).Association("Categories").Clear(); err != nil {
		return false, err
	}
	if err := tx.Model(campaign).Association("Products").Clear(); err != nil {
		return false, err
	}
	return r.DeleteByID(ctx, &models.DiscountCampaign{}, id)
}

// FindCategories loads the categories with the given ids.
func (r *Repository) FindCategories(ctx context.Context, ids []uuid.UUID) ([]models.Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Category
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindProducts loads the products with the given ids.
func (r *Repository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
