package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// ProductDiscount is a discount scoped to a single product. Both window legs
// are optional.
type ProductDiscount struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID      uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	Value          decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	Kind           enums.DiscountKind `gorm:"column:kind;not null;default:fixed_amount"`
	StartDate      *time.Time         `gorm:"column:start_date"`
	ExpirationDate *time.Time         `gorm:"column:expiration_date"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (d *ProductDiscount) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
