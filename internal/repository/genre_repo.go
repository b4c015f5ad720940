package repository

import (
	"context"

	"mediastat/internal/model"

	"gorm.io/gorm"
)

type GenreRepository interface {
	GetAll(ctx context.Context) ([]model.Genre, error)
	// CleanupUnused deletes genres no movie or show links to.
	CleanupUnused(ctx context.Context) (int64, error)
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) GetAll(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, err
}

func (r *genreRepository) CleanupUnused(ctx context.Context) (int64, error) {
	used := r.db.WithContext(ctx).Model(&model.MediaGenre{}).Select("genre_id")
	res := r.db.WithContext(ctx).Where("id NOT IN (?)", used).Delete(&model.Genre{})
	return res.RowsAffected, res.Error
}
