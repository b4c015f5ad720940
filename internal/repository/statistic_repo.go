package repository

import (
	"context"
	"time"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
)

// statisticLookback bounds how many rows of one type are scanned for a matching library set.
const statisticLookback = 50

type StatisticRepository interface {
	// GetLastResultByType returns the newest statistic of type t computed over exactly collectionIDs, or nil.
	GetLastResultByType(ctx context.Context, t model.StatisticType, collectionIDs []string, opts ...utils.DBOption) (*model.Statistic, error)
	Add(ctx context.Context, statistic *model.Statistic, opts ...utils.DBOption) error
	DeleteOlderThan(ctx context.Context, date time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type statisticRepository struct {
	db *gorm.DB
}

func NewStatisticRepository(db *gorm.DB) StatisticRepository {
	return &statisticRepository{db: db}
}

func (r *statisticRepository) GetLastResultByType(ctx context.Context, t model.StatisticType, collectionIDs []string, opts ...utils.DBOption) (*model.Statistic, error) {
	var statistics []model.Statistic
	opts = append([]utils.DBOption{utils.WithPreload("Collections")}, opts...)
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("type = ?", t).
		Order("calculation_date_time DESC").
		Limit(statisticLookback).
		Find(&statistics).Error
	if err != nil {
		return nil, err
	}

	for i := range statistics {
		if utils.SameStringSet(statistics[i].CollectionIDs(), collectionIDs) {
			return &statistics[i], nil
		}
	}
	return nil, nil
}

func (r *statisticRepository) Add(ctx context.Context, statistic *model.Statistic, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(statistic).Error
}

func (r *statisticRepository) DeleteOlderThan(ctx context.Context, date time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Model(&model.Statistic{}).Select("id").Where("calculation_date_time < ?", date)
		if err := tx.Where("statistic_id IN (?)", stale).Delete(&model.StatisticCollection{}).Error; err != nil {
			return err
		}
		res := tx.Where("calculation_date_time < ?", date).Delete(&model.Statistic{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *statisticRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Statistic{}).Count(&count).Error
	return count, err
}
