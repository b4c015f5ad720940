package repository

import (
	"context"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
)

type TriggerRepository interface {
	GetAll(ctx context.Context, opts ...utils.DBOption) ([]model.TaskTrigger, error)
	GetByKey(ctx context.Context, key string, opts ...utils.DBOption) ([]model.TaskTrigger, error)
	// ReplaceForKey deletes every trigger of key and inserts triggers in one transaction.
	// An empty list is stored as a single None row so SeedDefaults leaves the key alone.
	ReplaceForKey(ctx context.Context, key string, triggers []model.TaskTrigger) ([]model.TaskTrigger, error)
	// SeedDefaults inserts triggers for key only when none exist. It reports whether it inserted.
	SeedDefaults(ctx context.Context, key string, triggers []model.TaskTrigger) (bool, error)
}

type triggerRepository struct {
	db *gorm.DB
}

func NewTriggerRepository(db *gorm.DB) TriggerRepository {
	return &triggerRepository{db: db}
}

func (r *triggerRepository) GetAll(ctx context.Context, opts ...utils.DBOption) ([]model.TaskTrigger, error) {
	var triggers []model.TaskTrigger
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("type <> ?", model.TriggerTypeNone).
		Order("task_key ASC, id ASC").
		Find(&triggers).Error
	return triggers, err
}

func (r *triggerRepository) GetByKey(ctx context.Context, key string, opts ...utils.DBOption) ([]model.TaskTrigger, error) {
	var triggers []model.TaskTrigger
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("task_key = ? AND type <> ?", key, model.TriggerTypeNone).
		Order("id ASC").
		Find(&triggers).Error
	return triggers, err
}

func (r *triggerRepository) ReplaceForKey(ctx context.Context, key string, triggers []model.TaskTrigger) ([]model.TaskTrigger, error) {
	rows := make([]model.TaskTrigger, 0, len(triggers))
	for _, t := range triggers {
		rows = append(rows, model.TaskTrigger{
			TaskKey:        key,
			Type:           t.Type,
			TimeOfDayTicks: t.TimeOfDayTicks,
			IntervalTicks:  t.IntervalTicks,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_key = ?", key).Delete(&model.TaskTrigger{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return tx.Create(&model.TaskTrigger{TaskKey: key, Type: model.TriggerTypeNone}).Error
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *triggerRepository) SeedDefaults(ctx context.Context, key string, triggers []model.TaskTrigger) (bool, error) {
	seeded := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.TaskTrigger{}).Where("task_key = ?", key).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(triggers) == 0 {
			return nil
		}
		rows := make([]model.TaskTrigger, 0, len(triggers))
		for _, t := range triggers {
			t.ID = 0
			t.TaskKey = key
			rows = append(rows, t)
		}
		seeded = true
		return tx.Create(&rows).Error
	})
	return seeded, err
}
