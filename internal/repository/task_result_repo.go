package repository

import (
	"context"
	"errors"
	"time"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
)

type TaskResultRepository interface {
	Create(ctx context.Context, result *model.TaskResult, opts ...utils.DBOption) error
	Update(ctx context.Context, result *model.TaskResult, opts ...utils.DBOption) error
	GetLatestByJobID(ctx context.Context, jobID string, opts ...utils.DBOption) (*model.TaskResult, error)
	// GetLatestByJobIDAndStatus returns the row with the newest end time, or nil when none exists.
	GetLatestByJobIDAndStatus(ctx context.Context, jobID string, status model.TaskStatus, opts ...utils.DBOption) (*model.TaskResult, error)
	ListByJobID(ctx context.Context, jobID string, limit int, opts ...utils.DBOption) ([]model.TaskResult, error)
	DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
	// AbortRunning marks rows left in Running by a previous process as Aborted.
	AbortRunning(ctx context.Context, at time.Time, opts ...utils.DBOption) (int64, error)
}

type taskResultRepository struct {
	db *gorm.DB
}

func NewTaskResultRepository(db *gorm.DB) TaskResultRepository {
	return &taskResultRepository{db: db}
}

func (r *taskResultRepository) Create(ctx context.Context, result *model.TaskResult, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(result).Error
}

func (r *taskResultRepository) Update(ctx context.Context, result *model.TaskResult, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Save(result).Error
}

func (r *taskResultRepository) first(db *gorm.DB) (*model.TaskResult, error) {
	var result model.TaskResult
	if err := db.First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *taskResultRepository) GetLatestByJobID(ctx context.Context, jobID string, opts ...utils.DBOption) (*model.TaskResult, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("job_id = ?", jobID).
		Order("start_time_utc DESC")
	return r.first(db)
}

func (r *taskResultRepository) GetLatestByJobIDAndStatus(ctx context.Context, jobID string, status model.TaskStatus, opts ...utils.DBOption) (*model.TaskResult, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("job_id = ? AND status = ?", jobID, status).
		Order("end_time_utc DESC")
	return r.first(db)
}

func (r *taskResultRepository) ListByJobID(ctx context.Context, jobID string, limit int, opts ...utils.DBOption) ([]model.TaskResult, error) {
	var results []model.TaskResult
	opts = append(opts, utils.WithLimit(limit))
	err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("job_id = ?", jobID).
		Order("start_time_utc DESC").
		Find(&results).Error
	return results, err
}

func (r *taskResultRepository) DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	res := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("start_time_utc < ? AND status <> ?", date, model.TaskStatusRunning).
		Delete(&model.TaskResult{})
	return res.RowsAffected, res.Error
}

func (r *taskResultRepository) AbortRunning(ctx context.Context, at time.Time, opts ...utils.DBOption) (int64, error) {
	res := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Model(&model.TaskResult{}).
		Where("status = ?", model.TaskStatusRunning).
		Updates(map[string]interface{}{
			"status":        model.TaskStatusAborted,
			"end_time_utc":  at,
			"error_message": "process stopped while the job was running",
		})
	return res.RowsAffected, res.Error
}
