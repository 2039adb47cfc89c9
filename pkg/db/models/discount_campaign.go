package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/pkg/enums"
)

// DiscountCampaign is a store-wide promotion. Scope decides whether
// Categories or Products narrow it.
type DiscountCampaign struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name           string              `gorm:"column:name;not null"`
	Code           string              `gorm:"column:code;not null;uniqueIndex"`
	Description    *string             `gorm:"column:description"`
	Value          decimal.Decimal     `gorm:"column:value;type:numeric(12,2);not null"`
	Kind           enums.DiscountKind  `gorm:"column:kind;not null;default:percentage"`
	Scope          enums.CampaignScope `gorm:"column:scope;not null;default:global"`
	StartDate      time.Time           `gorm:"column:start_date;not null"`
	ExpirationDate time.Time           `gorm:"column:expiration_date;not null"`
	Priority       int                 `gorm:"column:priority;not null;default:0"`
	IsActive       bool                `gorm:"column:is_active;not null"`
	Categories     []Category          `gorm:"many2many:campaign_categories"`
	Products       []Product           `gorm:"many2many:campaign_products"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *DiscountCampaign) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
