package repository

import (
	"context"
	"fmt"

	"mediastat/pkg/utils"

	"gorm.io/gorm"
)

// UnitOfWork runs several repository calls in one transaction. fn passes the
// given options to each call so they share the transaction; returning an error
// or panicking rolls everything back.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(utils.WithTx(tx))
	})
	if err != nil {
		return fmt.Errorf("unit of work: %w", err)
	}
	return nil
}
