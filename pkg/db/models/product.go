package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a published catalog entry with quantity-tiered pricing.
type Product struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Key              string            `gorm:"column:key;not null;uniqueIndex"`
	Title            string            `gorm:"column:title;not null"`
	Slug             string            `gorm:"column:slug;not null;uniqueIndex"`
	ShortDescription *string           `gorm:"column:short_description"`
	CategoryID       *uuid.UUID        `gorm:"column:category_id;type:uuid"`
	Category         *Category         `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Published        bool              `gorm:"column:published;not null"`
	Tiers            []PriceTier       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Discounts        []ProductDiscount `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Tags             []Tag             `gorm:"many2many:product_tags"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
