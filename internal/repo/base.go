// Package repo holds the GORM plumbing shared by the catalog repositories.
package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// Bind returns a Base that runs every query on tx.
func (b Base) Bind(tx *gorm.DB) Base {
	return Base{db: tx}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// FindByID loads one row of dest's table by primary key.
func (b Base) FindByID(ctx context.Context, dest any, id uuid.UUID) error {
	return b.DB(ctx).First(dest, "id = ?", id).Error
}

// DeleteByID removes one row of model's table and reports whether it existed.
func (b Base) DeleteByID(ctx context.Context, model any, id uuid.UUID) (bool, error) {
	res := b.DB(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
