package repository

import (
	"context"
	"errors"
	"fmt"

	"mediastat/config"
	"mediastat/internal/model"
	"mediastat/pkg/cache"
	"mediastat/pkg/common"
	"mediastat/pkg/utils"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSystemParamNotFound is returned when a parameter has never been written.
var ErrSystemParamNotFound = errors.New("system parameter not found")

type SystemParamRepository interface {
	Get(ctx context.Context, name string, destValue interface{}) error
	Set(ctx context.Context, name string, value interface{}, opts ...utils.DBOption) error
}

type systemParamRepository struct {
	cfg           *config.Config
	inmemoryCache cache.Cache
	db            *gorm.DB
}

func NewSystemParamRepository(cfg *config.Config, inmemoryCache cache.Cache, db *gorm.DB) SystemParamRepository {
	return &systemParamRepository{cfg: cfg, inmemoryCache: inmemoryCache, db: db}
}

func (s *systemParamRepository) cacheKey(name string) string {
	return fmt.Sprintf(common.KEY_SYSTEM_PARAM, name)
}

func (s *systemParamRepository) Get(ctx context.Context, name string, destValue interface{}) error {
	if raw, found := cache.GetFromCache[[]byte](s.inmemoryCache, s.cacheKey(name)); found {
		return json.Unmarshal(raw, destValue)
	}

	var param model.SystemParameter
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&param).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSystemParamNotFound
		}
		return err
	}
	if s.inmemoryCache != nil {
		s.inmemoryCache.Set(s.cacheKey(name), []byte(param.Value), s.cfg.Cache.SysParamExpDuration)
	}
	return json.Unmarshal(param.Value, destValue)
}

func (s *systemParamRepository) Set(ctx context.Context, name string, value interface{}, opts ...utils.DBOption) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal system parameter %s: %w", name, err)
	}

	param := model.SystemParameter{Name: name, Value: raw}
	err = utils.ApplyOptions(s.db.WithContext(ctx), opts...).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&param).Error
	if err != nil {
		return err
	}
	if s.inmemoryCache != nil {
		s.inmemoryCache.Delete(s.cacheKey(name))
	}
	return nil
}
