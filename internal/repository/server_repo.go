package repository

import (
	"context"
	"errors"

	"mediastat/internal/model"
	"mediastat/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServerRepository stores the media server's own description: info, plugins, drives and users.
type ServerRepository interface {
	GetServerInfo(ctx context.Context) (*model.ServerInfo, error)
	UpsertServerInfo(ctx context.Context, info *model.ServerInfo, opts ...utils.DBOption) error
	ReplacePlugins(ctx context.Context, plugins []model.Plugin, opts ...utils.DBOption) error
	ReplaceDrives(ctx context.Context, drives []model.Drive, opts ...utils.DBOption) error
	ReplaceUsers(ctx context.Context, users []model.MediaServerUser, opts ...utils.DBOption) error
	GetPlugins(ctx context.Context) ([]model.Plugin, error)
	GetDrives(ctx context.Context) ([]model.Drive, error)
	GetUsers(ctx context.Context) ([]model.MediaServerUser, error)
}

type serverRepository struct {
	db *gorm.DB
}

func NewServerRepository(db *gorm.DB) ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) GetServerInfo(ctx context.Context) (*model.ServerInfo, error) {
	var info model.ServerInfo
	if err := r.db.WithContext(ctx).Order("updated_at DESC").First(&info).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &info, nil
}

func (r *serverRepository) UpsertServerInfo(ctx context.Context, info *model.ServerInfo, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(info).Error
}

func replaceAll[T any](db *gorm.DB, rows []T) error {
	var zero T
	if err := db.Where("1 = 1").Delete(&zero).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.CreateInBatches(&rows, batchSize).Error
}

func (r *serverRepository) ReplacePlugins(ctx context.Context, plugins []model.Plugin, opts ...utils.DBOption) error {
	return replaceAll(utils.ApplyOptions(r.db.WithContext(ctx), opts...), plugins)
}

func (r *serverRepository) ReplaceDrives(ctx context.Context, drives []model.Drive, opts ...utils.DBOption) error {
	return replaceAll(utils.ApplyOptions(r.db.WithContext(ctx), opts...), drives)
}

func (r *serverRepository) ReplaceUsers(ctx context.Context, users []model.MediaServerUser, opts ...utils.DBOption) error {
	return replaceAll(utils.ApplyOptions(r.db.WithContext(ctx), opts...), users)
}

func (r *serverRepository) GetPlugins(ctx context.Context) ([]model.Plugin, error) {
	var plugins []model.Plugin
	err := r.db.WithContext(ctx).Order("name ASC").Find(&plugins).Error
	return plugins, err
}

func (r *serverRepository) GetDrives(ctx context.Context) ([]model.Drive, error) {
	var drives []model.Drive
	err := r.db.WithContext(ctx).Order("path ASC").Find(&drives).Error
	return drives, err
}

func (r *serverRepository) GetUsers(ctx context.Context) ([]model.MediaServerUser, error) {
	var users []model.MediaServerUser
	err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}
