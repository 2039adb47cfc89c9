package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// PriceTier is the price of a product at or above a quantity threshold, with
// an optional inline discount.
type PriceTier struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index"`
	Price         decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	Unit          enums.Unit         `gorm:"column:unit;not null;default:piece"`
	DiscountValue decimal.Decimal    `gorm:"column:discount_value;type:numeric(12,2);not null;default:0"`
	DiscountKind  enums.DiscountKind `gorm:"column:discount_kind;not null;default:fixed_amount"`
	Quantity      int                `gorm:"column:quantity;not null"`
	LeadTimeDays  int                `gorm:"column:lead_time_days;not null;default:1"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (t *PriceTier) BeforeCreate(*gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
