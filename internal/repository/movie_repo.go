package repository

import (
	"context"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MovieRepository interface {
	// GetAll returns movies of the given libraries (all when empty) with genres and people.
	GetAll(ctx context.Context, libraryIDs []string) ([]model.Movie, error)
	UpsertRange(ctx context.Context, movies []model.Movie, opts ...utils.DBOption) error
	// RemoveMissing deletes movies of libraryID whose id is not in keep.
	RemoveMissing(ctx context.Context, libraryID string, keep []string, opts ...utils.DBOption) (int64, error)
	Count(ctx context.Context, libraryIDs []string) (int64, error)
}

type movieRepository struct {
	db *gorm.DB
}

func NewMovieRepository(db *gorm.DB) MovieRepository {
	return &movieRepository{db: db}
}

func (r *movieRepository) GetAll(ctx context.Context, libraryIDs []string) ([]model.Movie, error) {
	var movies []model.Movie
	db := r.db.WithContext(ctx)
	if len(libraryIDs) > 0 {
		db = db.Where("library_id IN ?", libraryIDs)
	}
	if err := db.Order("sort_name ASC").Find(&movies).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	genres, err := loadGenres(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	people, err := loadPeople(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range movies {
		movies[i].Genres = genres[movies[i].ID]
		movies[i].People = people[movies[i].ID]
	}
	return movies, nil
}

func (r *movieRepository) UpsertRange(ctx context.Context, movies []model.Movie, opts ...utils.DBOption) error {
	if len(movies) == 0 {
		return nil
	}
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	links := newLinkSet()
	for _, m := range movies {
		links.add(m.ID, m.Genres, m.People)
	}
	if err := db.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&movies, batchSize).Error; err != nil {
		return err
	}
	return links.write(db)
}

func (r *movieRepository) RemoveMissing(ctx context.Context, libraryID string, keep []string, opts ...utils.DBOption) (int64, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	var stale []string
	query := db.Model(&model.Movie{}).Where("library_id = ?", libraryID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	if err := query.Pluck("id", &stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := deleteLinks(db, stale); err != nil {
		return 0, err
	}
	res := db.Where("id IN ?", stale).Delete(&model.Movie{})
	return res.RowsAffected, res.Error
}

func (r *movieRepository) Count(ctx context.Context, libraryIDs []string) (int64, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Movie{})
	if len(libraryIDs) > 0 {
		db = db.Where("library_id IN ?", libraryIDs)
	}
	err := db.Count(&count).Error
	return count, err
}
