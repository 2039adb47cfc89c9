package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

// AdminService is the operator write surface for pricing data.
type AdminService interface {
	CreateTier(ctx context.Context, productID uuid.UUID, input TierInput) (*TierDTO, error)
	UpdateTier(ctx context.Context, tierID uuid.UUID, input TierInput) (*TierDTO, error)
	DeleteTier(ctx context.Context, tierID uuid.UUID) error
	CreateProductDiscount(ctx context.Context, productID uuid.UUID, input ProductDiscountInput) (*ProductDiscountDTO, error)
	DeleteProductDiscount(ctx context.Context, id uuid.UUID) error
	CreateCategoryDiscount(ctx context.Context, categoryID uuid.UUID, input CategoryDiscountInput) (*CategoryDiscountDTO, error)
	DeleteCategoryDiscount(ctx context.Context, id uuid.UUID) error
}

// TierInput is a price tier write.
type TierInput struct {
	Price         decimal.Decimal
	Quantity      int
	Unit          enums.Unit
	DiscountValue decimal.Decimal
	DiscountKind  enums.DiscountKind
	LeadTimeDays  int
}

// ProductDiscountInput is a product discount write.
type ProductDiscountInput struct {
	Value          decimal.Decimal
	Kind           enums.DiscountKind
	StartDate      *time.Time
	ExpirationDate *time.Time
}

// CategoryDiscountInput is a category discount write.
type CategoryDiscountInput struct {
	Name           string
	Value          decimal.Decimal
	Kind           enums.DiscountKind
	IsActive       bool
	StartDate      *time.Time
	ExpirationDate *time.Time
}

type invalidator interface {
	InvalidateProduct(ctx context.Context, ref cache.ProductRef) error
	InvalidateAll(ctx context.Context) (int64, error)
}

type adminService struct {
	repo  *Repository
	cache invalidator
	logg  *logger.Logger
}

// NewAdminService wires the operator service.
func NewAdminService(repo *Repository, c invalidator, logg *logger.Logger) (AdminService, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &adminService{repo: repo, cache: c, logg: logg}, nil
}

func (s *adminService) CreateTier(ctx context.Context, productID uuid.UUID, input TierInput) (*TierDTO, error) {
	input = normalizeTier(input)
	if err := validateTier(input); err != nil {
		return nil, err
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	tier := &models.PriceTier{ProductID: product.ID}
	applyTier(tier, input)
	if err := s.repo.CreateTier(ctx, tier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create price tier")
	}
	s.invalidateProduct(ctx, product)
	return newTierDTO(tier), nil
}

func (s *adminService) UpdateTier(ctx context.Context, tierID uuid.UUID, input TierInput) (*TierDTO, error) {
	input = normalizeTier(input)
	if err := validateTier(input); err != nil {
		return nil, err
	}
	tier, err := s.repo.FindTier(ctx, tierID)
	if err != nil {
		return nil, notFoundOr(err, "price tier")
	}
	applyTier(tier, input)
	if err := s.repo.SaveTier(ctx, tier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update price tier")
	}
	s.invalidateProductID(ctx, tier.ProductID)
	return newTierDTO(tier), nil
}

func (s *adminService) DeleteTier(ctx context.Context, tierID uuid.UUID) error {
	tier, err := s.repo.FindTier(ctx, tierID)
	if err != nil {
		return notFoundOr(err, "price tier")
	}
	if err := s.repo.DeleteTier(ctx, tierID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price tier")
	}
	s.invalidateProductID(ctx, tier.ProductID)
	return nil
}

func (s *adminService) CreateProductDiscount(ctx context.Context, productID uuid.UUID, input ProductDiscountInput) (*ProductDiscountDTO, error) {
	if err := validateDiscount(input.Kind, input.Value, input.StartDate, input.ExpirationDate); err != nil {
		return nil, err
	}
	product, err := s.product(ctx, productID)
	if err != nil {
		return nil, err
	}
	discount := &models.ProductDiscount{
		ProductID:      product.ID,
		Value:          input.Value,
		Kind:           input.Kind,
		StartDate:      utcPtr(input.StartDate),
		ExpirationDate: utcPtr(input.ExpirationDate),
	}
	if err := s.repo.CreateProductDiscount(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product discount")
	}
	s.invalidateProduct(ctx, product)
	return newProductDiscountDTO(discount), nil
}

func (s *adminService) DeleteProductDiscount(ctx context.Context, id uuid.UUID) error {
	discount, err := s.repo.FindProductDiscount(ctx, id)
	if err != nil {
		return notFoundOr(err, "product discount")
	}
	if err := s.repo.DeleteProductDiscount(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product discount")
	}
	s.invalidateProductID(ctx, discount.ProductID)
	return nil
}

func (s *adminService) CreateCategoryDiscount(ctx context.Context, categoryID uuid.UUID, input CategoryDiscountInput) (*CategoryDiscountDTO, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if err := validateDiscount(input.Kind, input.Value, input.StartDate, input.ExpirationDate); err != nil {
		return nil, err
	}
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, "category")
	}
	discount := &models.CategoryDiscount{
		CategoryID:     category.ID,
		Name:           input.Name,
		Value:          input.Value,
		Kind:           input.Kind,
		IsActive:       input.IsActive,
		StartDate:      utcPtr(input.StartDate),
		ExpirationDate: utcPtr(input.ExpirationDate),
	}
	if err := s.repo.CreateCategoryDiscount(ctx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category discount")
	}
	s.invalidateAll(ctx)
	return newCategoryDiscountDTO(discount), nil
}

func (s *adminService) DeleteCategoryDiscount(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCategoryDiscount(ctx, id); err != nil {
		return notFoundOr(err, "category discount")
	}
	if err := s.repo.DeleteCategoryDiscount(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category discount")
	}
	s.invalidateAll(ctx)
	return nil
}

func (s *adminService) product(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

func (s *adminService) invalidateProductID(ctx context.Context, id uuid.UUID) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		// the row is gone; fall back to the id-keyed entries
		product = &models.Product{ID: id}
	}
	s.invalidateProduct(ctx, product)
}

func (s *adminService) invalidateProduct(ctx context.Context, product *models.Product) {
	ref := cache.ProductRef{ID: product.ID.String(), Slug: product.Slug, Key: product.Key}
	if err := s.cache.InvalidateProduct(ctx, ref); err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, ref.ID), "invalidate product cache", err)
	}
}

func (s *adminService) invalidateAll(ctx context.Context) {
	if _, err := s.cache.InvalidateAll(ctx); err != nil {
		s.logg.Error(ctx, "invalidate catalog cache", err)
	}
}

func normalizeTier(input TierInput) TierInput {
	if input.Unit == "" {
		input.Unit = enums.UnitPiece
	}
	if input.DiscountKind == "" {
		input.DiscountKind = enums.DiscountKindFixedAmount
	}
	if input.LeadTimeDays == 0 {
		input.LeadTimeDays = 1
	}
	return input
}

func validateTier(input TierInput) error {
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Unit.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid unit %q", input.Unit)
	}
	if input.LeadTimeDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "production_days cannot be negative")
	}
	if input.DiscountValue.IsZero() {
		if !input.DiscountKind.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid discount kind %q", input.DiscountKind)
		}
		return nil
	}
	if err := pricing.ValidateAmount(input.DiscountKind, input.DiscountValue); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return nil
}

func validateDiscount(kind enums.DiscountKind, value decimal.Decimal, start, end *time.Time) error {
	if err := pricing.ValidateAmount(kind, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	if err := pricing.ValidateWindow(start, end); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	return nil
}

func applyTier(tier *models.PriceTier, input TierInput) {
	tier.Price = input.Price
	tier.Quantity = input.Quantity
	tier.Unit = input.Unit
	tier.DiscountValue = input.DiscountValue
	tier.DiscountKind = input.DiscountKind
	tier.LeadTimeDays = input.LeadTimeDays
}

func notFoundOr(err error, what string) error {
	if db.IsNotFound(err) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", what)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+what)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
