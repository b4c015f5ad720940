package service

import (
	"context"
	"errors"
	"fmt"

	"mediastat/internal/model"
	"mediastat/internal/repository"
)

const defaultUpdateTrain = "release"

// SettingsService reads and writes the stored setting groups. Groups that were
// never written come back with their defaults.
type SettingsService interface {
	GetMediaServer(ctx context.Context) (model.MediaServerSettings, error)
	SaveMediaServer(ctx context.Context, settings model.MediaServerSettings) error
	GetTvdb(ctx context.Context) (model.TvdbSettings, error)
	SaveTvdb(ctx context.Context, settings model.TvdbSettings) error
	GetUpdate(ctx context.Context) (model.UpdateSettings, error)
	SaveUpdate(ctx context.Context, settings model.UpdateSettings) error
	GetMediaServerStatus(ctx context.Context) (model.MediaServerStatus, error)
	SaveMediaServerStatus(ctx context.Context, status model.MediaServerStatus) error
}

type settingsService struct {
	systemParamRepo repository.SystemParamRepository
	tvdbApiKey      string
}

func NewSettingsService(systemParamRepo repository.SystemParamRepository, tvdbApiKey string) SettingsService {
	return &settingsService{systemParamRepo: systemParamRepo, tvdbApiKey: tvdbApiKey}
}

func getSetting[T any](ctx context.Context, repo repository.SystemParamRepository, name string, fallback T) (T, error) {
	value := fallback
	if err := repo.Get(ctx, name, &value); err != nil {
		if errors.Is(err, repository.ErrSystemParamNotFound) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("failed to read %s settings: %w", name, err)
	}
	return value, nil
}

func (s *settingsService) save(ctx context.Context, name string, value interface{}) error {
	if err := s.systemParamRepo.Set(ctx, name, value); err != nil {
		return fmt.Errorf("failed to save %s settings: %w", name, err)
	}
	return nil
}

func (s *settingsService) GetMediaServer(ctx context.Context) (model.MediaServerSettings, error) {
	return getSetting(ctx, s.systemParamRepo, model.SysParamMediaServer, model.MediaServerSettings{})
}

func (s *settingsService) SaveMediaServer(ctx context.Context, settings model.MediaServerSettings) error {
	return s.save(ctx, model.SysParamMediaServer, settings)
}

// GetTvdb falls back to the configured api key when none is stored.
func (s *settingsService) GetTvdb(ctx context.Context) (model.TvdbSettings, error) {
	settings, err := getSetting(ctx, s.systemParamRepo, model.SysParamTvdb, model.TvdbSettings{})
	if err != nil {
		return settings, err
	}
	if settings.ApiKey == "" {
		settings.ApiKey = s.tvdbApiKey
	}
	return settings, nil
}

func (s *settingsService) SaveTvdb(ctx context.Context, settings model.TvdbSettings) error {
	return s.save(ctx, model.SysParamTvdb, settings)
}

func (s *settingsService) GetUpdate(ctx context.Context) (model.UpdateSettings, error) {
	return getSetting(ctx, s.systemParamRepo, model.SysParamUpdate, model.UpdateSettings{UpdateTrain: defaultUpdateTrain})
}

func (s *settingsService) SaveUpdate(ctx context.Context, settings model.UpdateSettings) error {
	return s.save(ctx, model.SysParamUpdate, settings)
}

func (s *settingsService) GetMediaServerStatus(ctx context.Context) (model.MediaServerStatus, error) {
	return getSetting(ctx, s.systemParamRepo, model.SysParamMediaServerStatus, model.MediaServerStatus{})
}

func (s *settingsService) SaveMediaServerStatus(ctx context.Context, status model.MediaServerStatus) error {
	return s.save(ctx, model.SysParamMediaServerStatus, status)
}
