package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

// CategoryDTO is the category attached to a product payload.
type CategoryDTO struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// TagDTO is a product tag.
type TagDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductCardDTO is the listing shape of a product.
type ProductCardDTO struct {
	ID                uuid.UUID           `json:"id"`
	Key               string              `json:"key"`
	Title             string              `json:"title"`
	Slug              string              `json:"slug"`
	ShortDescription  *string             `json:"short_description,omitempty"`
	Category          *CategoryDTO        `json:"category,omitempty"`
	Tags              []TagDTO            `json:"tags"`
	PriceRange        *pricing.PriceRange `json:"price_range"`
	HasActiveDiscount bool                `json:"has_active_discount"`
	CreatedAt         time.Time           `json:"created_at"`
}

// TierQuoteDTO is one price tier with its resolved discount.
type TierQuoteDTO struct {
	ID           uuid.UUID        `json:"id"`
	Quantity     int              `json:"quantity"`
	Unit         enums.Unit       `json:"unit"`
	UnitLabel    string           `json:"unit_label"`
	LeadTimeDays int              `json:"production_days"`
	Price        decimal.Decimal  `json:"price"`
	PriceNew     decimal.Decimal  `json:"price_new"`
	PriceOld     *decimal.Decimal `json:"price_old"`
	HasDiscount  bool             `json:"has_discount"`
	pricing.Resolution
}

// ProductDetailDTO adds per-tier quotes to the card.
type ProductDetailDTO struct {
	ProductCardDTO
	Tiers []TierQuoteDTO `json:"prices"`
}

func newCardDTO(m *models.Product, quotes []pricing.Quote) ProductCardDTO {
	card := ProductCardDTO{
		ID:               m.ID,
		Key:              m.Key,
		Title:            m.Title,
		Slug:             m.Slug,
		ShortDescription: m.ShortDescription,
		Tags:             make([]TagDTO, 0, len(m.Tags)),
		PriceRange:       pricing.Summarize(quotes),
		CreatedAt:        m.CreatedAt,
	}
	if m.Category != nil {
		card.Category = &CategoryDTO{ID: m.Category.ID, Title: m.Category.Title, Slug: m.Category.Slug}
	}
	for _, tag := range m.Tags {
		card.Tags = append(card.Tags, newTagDTO(tag))
	}
	card.HasActiveDiscount = card.PriceRange != nil && card.PriceRange.HasDiscount
	return card
}

func newDetailDTO(m *models.Product, quotes []pricing.Quote) *ProductDetailDTO {
	detail := &ProductDetailDTO{
		ProductCardDTO: newCardDTO(m, quotes),
		Tiers:          make([]TierQuoteDTO, 0, len(quotes)),
	}
	for _, q := range quotes {
		detail.Tiers = append(detail.Tiers, TierQuoteDTO{
			ID:           q.TierID,
			Quantity:     q.Quantity,
			Unit:         q.Unit,
			UnitLabel:    q.UnitLabel,
			LeadTimeDays: q.LeadTimeDays,
			Price:        q.Price,
			PriceNew:     q.PriceNew,
			PriceOld:     q.PriceOld,
			HasDiscount:  q.HasDiscount(),
			Resolution:   q.Resolution,
		})
	}
	return detail
}

func newTagDTO(tag models.Tag) TagDTO {
	return TagDTO{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}
}

// TierDTO is the admin view of a stored price tier.
type TierDTO struct {
	ID            uuid.UUID          `json:"id"`
	ProductID     uuid.UUID          `json:"product_id"`
	Price         decimal.Decimal    `json:"price"`
	Unit          enums.Unit         `json:"unit"`
	Quantity      int                `json:"quantity"`
	DiscountValue decimal.Decimal    `json:"discount"`
	DiscountKind  enums.DiscountKind `json:"discount_type"`
	LeadTimeDays  int                `json:"production_days"`
}

func newTierDTO(m *models.PriceTier) *TierDTO {
	return &TierDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Price:         m.Price,
		Unit:          m.Unit,
		Quantity:      m.Quantity,
		DiscountValue: m.DiscountValue,
		DiscountKind:  m.DiscountKind,
		LeadTimeDays:  m.LeadTimeDays,
	}
}

// ProductDiscountDTO is the admin view of a product discount.
type ProductDiscountDTO struct {
	ID             uuid.UUID          `json:"id"`
	ProductID      uuid.UUID          `json:"product_id"`
	Value          decimal.Decimal    `json:"discount"`
	Kind           enums.DiscountKind `json:"discount_type"`
	StartDate      *time.Time         `json:"start_date"`
	ExpirationDate *time.Time         `json:"expiration_date"`
}

func newProductDiscountDTO(m *models.ProductDiscount) *ProductDiscountDTO {
	return &ProductDiscountDTO{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Value:          m.Value,
		Kind:           m.Kind,
		StartDate:      m.StartDate,
		ExpirationDate: m.ExpirationDate,
	}
}

// CategoryDiscountDTO is the admin view of a category discount.
type CategoryDiscountDTO struct {
	ID             uuid.UUID          `json:"id"`
	CategoryID     uuid.UUID          `json:"category_id"`
	Name           string             `json:"name"`
	Value          decimal.Decimal    `json:"discount"`
	Kind           enums.DiscountKind `json:"discount_type"`
	IsActive       bool               `json:"is_active"`
	StartDate      *time.Time         `json:"start_date"`
	ExpirationDate *time.Time         `json:"expiration_date"`
}

func newCategoryDiscountDTO(m *models.CategoryDiscount) *CategoryDiscountDTO {
	return &CategoryDiscountDTO{
		ID:             m.ID,
		CategoryID:     m.CategoryID,
		Name:           m.Name,
		Value:          m.Value,
		Kind:           m.Kind,
		IsActive:       m.IsActive,
		StartDate:      m.StartDate,
		ExpirationDate: m.ExpirationDate,
	}
}
