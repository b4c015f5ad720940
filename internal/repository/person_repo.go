package repository

import (
	"context"

	"mediastat/internal/model"

	"gorm.io/gorm"
)

type PersonRepository interface {
	Count(ctx context.Context) (int64, error)
	// CleanupUnused deletes people no movie or show links to.
	CleanupUnused(ctx context.Context) (int64, error)
}

type personRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Person{}).Count(&count).Error
	return count, err
}

func (r *personRepository) CleanupUnused(ctx context.Context) (int64, error) {
	used := r.db.WithContext(ctx).Model(&model.MediaPerson{}).Select("person_id")
	res := r.db.WithContext(ctx).Where("id NOT IN (?)", used).Delete(&model.Person{})
	return res.RowsAffected, res.Error
}
