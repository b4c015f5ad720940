package repository

import (
	"context"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LibraryRepository interface {
	GetAll(ctx context.Context, collectionType string) ([]model.Library, error)
	// ReplaceAll upserts libraries and deletes the ones not present.
	ReplaceAll(ctx context.Context, libraries []model.Library, opts ...utils.DBOption) error
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) GetAll(ctx context.Context, collectionType string) ([]model.Library, error) {
	var libraries []model.Library
	db := r.db.WithContext(ctx)
	if collectionType != "" {
		db = db.Where("collection_type = ?", collectionType)
	}
	err := db.Order("name ASC").Find(&libraries).Error
	return libraries, err
}

func (r *libraryRepository) ReplaceAll(ctx context.Context, libraries []model.Library, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	ids := make([]string, 0, len(libraries))
	for _, l := range libraries {
		ids = append(ids, l.ID)
	}
	if len(ids) == 0 {
		return db.Where("1 = 1").Delete(&model.Library{}).Error
	}
	if err := db.Where("id NOT IN ?", ids).Delete(&model.Library{}).Error; err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&libraries).Error
}
