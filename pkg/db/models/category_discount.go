package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// CategoryDiscount applies to every product in a category while active.
type CategoryDiscount struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	CategoryID     uuid.UUID          `gorm:"column:category_id;type:uuid;not null;index"`
	Category       *Category          `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Name           string             `gorm:"column:name;not null"`
	Value          decimal.Decimal    `gorm:"column:value;type:numeric(12,2);not null"`
	Kind           enums.DiscountKind `gorm:"column:kind;not null;default:percentage"`
	IsActive       bool               `gorm:"column:is_active;not null"`
	StartDate      *time.Time         `gorm:"column:start_date"`
	ExpirationDate *time.Time         `gorm:"column:expiration_date"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *CategoryDiscount) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
