package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands usecases a context-bound handle and owns transaction boundaries.
type Transactor interface {
	DB(ctx context.Context) *gorm.DB
	// WithinTransaction commits when fn returns nil and rolls back otherwise.
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
