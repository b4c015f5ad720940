package http

import (
	"context"

	"mediastat/internal/dto"
	"mediastat/internal/job"
	"mediastat/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Register(jobs ...job.Job) error { return nil }
func (m *mockScheduler) Start(ctx context.Context) error { return nil }
func (m *mockScheduler) Stop(ctx context.Context) error  { return nil }

func (m *mockScheduler) FireJob(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockScheduler) CancelJob(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *mockScheduler) GetAllJobs(ctx context.Context) ([]dto.JobInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.JobInfo), args.Error(1)
}

func (m *mockScheduler) UpdateTriggers(ctx context.Context, id string, triggers []model.TaskTrigger) ([]model.TaskTrigger, error) {
	args := m.Called(ctx, id, triggers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TaskTrigger), args.Error(1)
}

func (m *mockScheduler) GetJobHistory(ctx context.Context, id string, limit int) ([]dto.TaskResult, error) {
	args := m.Called(ctx, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.TaskResult), args.Error(1)
}

type mockStatisticService struct {
	mock.Mock
}

func (m *mockStatisticService) GetMovieStatistics(ctx context.Context, libraryIDs []string) (*dto.MovieStatistics, error) {
	args := m.Called(ctx, libraryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MovieStatistics), args.Error(1)
}

func (m *mockStatisticService) GetShowStatistics(ctx context.Context, libraryIDs []string) (*dto.ShowStatistics, error) {
	args := m.Called(ctx, libraryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ShowStatistics), args.Error(1)
}

type mockMediaServerService struct {
	mock.Mock
}

func (m *mockMediaServerService) GetToken(ctx context.Context, login dto.MediaServerLoginRequest) (*dto.MediaServerToken, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MediaServerToken), args.Error(1)
}

func (m *mockMediaServerService) GetStatus(ctx context.Context) (*dto.MediaServerStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.MediaServerStatus), args.Error(1)
}

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) GetMediaServer(ctx context.Context) (model.MediaServerSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.MediaServerSettings), args.Error(1)
}

func (m *mockSettingsService) SaveMediaServer(ctx context.Context, settings model.MediaServerSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *mockSettingsService) GetTvdb(ctx context.Context) (model.TvdbSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.TvdbSettings), args.Error(1)
}

func (m *mockSettingsService) SaveTvdb(ctx context.Context, settings model.TvdbSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *mockSettingsService) GetUpdate(ctx context.Context) (model.UpdateSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.UpdateSettings), args.Error(1)
}

func (m *mockSettingsService) SaveUpdate(ctx context.Context, settings model.UpdateSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *mockSettingsService) GetMediaServerStatus(ctx context.Context) (model.MediaServerStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.MediaServerStatus), args.Error(1)
}

func (m *mockSettingsService) SaveMediaServerStatus(ctx context.Context, status model.MediaServerStatus) error {
	return m.Called(ctx, status).Error(0)
}
