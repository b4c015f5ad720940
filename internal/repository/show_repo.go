package repository

import (
	"context"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShowRepository interface {
	// GetAll returns shows of the given libraries (all when empty) with genres and people.
	GetAll(ctx context.Context, libraryIDs []string) ([]model.Show, error)
	GetByTvdbIDs(ctx context.Context, tvdbIDs []string) ([]model.Show, error)
	GetWithTvdbID(ctx context.Context) ([]model.Show, error)
	UpsertRange(ctx context.Context, shows []model.Show, opts ...utils.DBOption) error
	UpdateTvdbState(ctx context.Context, showID string, episodeCount int, failed bool) error
	RemoveMissing(ctx context.Context, libraryID string, keep []string, opts ...utils.DBOption) (int64, error)
}

type showRepository struct {
	db *gorm.DB
}

func NewShowRepository(db *gorm.DB) ShowRepository {
	return &showRepository{db: db}
}

func (r *showRepository) withLinks(ctx context.Context, shows []model.Show) ([]model.Show, error) {
	ids := make([]string, 0, len(shows))
	for _, s := range shows {
		ids = append(ids, s.ID)
	}
	genres, err := loadGenres(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	people, err := loadPeople(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range shows {
		shows[i].Genres = genres[shows[i].ID]
		shows[i].People = people[shows[i].ID]
	}
	return shows, nil
}

func (r *showRepository) GetAll(ctx context.Context, libraryIDs []string) ([]model.Show, error) {
	var shows []model.Show
	db := r.db.WithContext(ctx)
	if len(libraryIDs) > 0 {
		db = db.Where("library_id IN ?", libraryIDs)
	}
	if err := db.Order("sort_name ASC").Find(&shows).Error; err != nil {
		return nil, err
	}
	return r.withLinks(ctx, shows)
}

func (r *showRepository) GetByTvdbIDs(ctx context.Context, tvdbIDs []string) ([]model.Show, error) {
	var shows []model.Show
	if len(tvdbIDs) == 0 {
		return shows, nil
	}
	err := r.db.WithContext(ctx).Where("tvdb_id IN ?", tvdbIDs).Find(&shows).Error
	return shows, err
}

func (r *showRepository) GetWithTvdbID(ctx context.Context) ([]model.Show, error) {
	var shows []model.Show
	err := r.db.WithContext(ctx).Where("tvdb_id <> ''").Find(&shows).Error
	return shows, err
}

func (r *showRepository) UpsertRange(ctx context.Context, shows []model.Show, opts ...utils.DBOption) error {
	if len(shows) == 0 {
		return nil
	}
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	links := newLinkSet()
	for _, s := range shows {
		links.add(s.ID, s.Genres, s.People)
	}
	// TVDB columns are owned by the episode refresh and survive a catalog upsert.
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"library_id", "name", "sort_name", "tvdb_id", "status", "production_year",
			"run_time_ticks", "community_rating", "official_rating", "premiere_date",
			"date_created", "episode_count",
		}),
	}).CreateInBatches(&shows, batchSize).Error
	if err != nil {
		return err
	}
	return links.write(db)
}

func (r *showRepository) UpdateTvdbState(ctx context.Context, showID string, episodeCount int, failed bool) error {
	updates := map[string]interface{}{
		"tvdb_failed": failed,
	}
	if !failed {
		updates["tvdb_episode_count"] = episodeCount
		updates["tvdb_synced"] = true
	}
	return r.db.WithContext(ctx).Model(&model.Show{}).Where("id = ?", showID).Updates(updates).Error
}

func (r *showRepository) RemoveMissing(ctx context.Context, libraryID string, keep []string, opts ...utils.DBOption) (int64, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	var stale []string
	query := db.Model(&model.Show{}).Where("library_id = ?", libraryID)
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
	res := db.Where("id IN ?", stale).Delete(&model.Show{})
	return res.RowsAffected, res.Error
}
