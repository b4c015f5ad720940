package service

import (
	"mediastat/config"
	"mediastat/internal/job"
	"mediastat/internal/repository"
	"mediastat/pkg/codec"
	"mediastat/pkg/lock"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
)

type Service struct {
	SchedulerService   SchedulerService
	TaskExecutor       TaskExecutor
	StatisticsGate     StatisticsGate
	StatisticService   StatisticService
	SettingsService    SettingsService
	MediaServerService MediaServerService
	UpdateService      UpdateService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	notifier Notifier,
	locker lock.Locker,
	m *metrics.Metrics,
	c codec.Codec,
) (*Service, error) {
	settingsService := NewSettingsService(repo.SystemParamRepo, cfg.Tvdb.ApiKey)
	updateService := NewUpdateService(cfg, log, repo.GithubRepo, settingsService)
	mediaServerService := NewMediaServerService(log, repo.MediaServerClients, settingsService)
	statisticsGate := NewStatisticsGate(log, repo.StatisticRepo, repo.TaskResultRepo, m)
	statisticService := NewStatisticService(log, repo, statisticsGate, c)

	taskExecutor := NewTaskExecutor(cfg, log, repo.TaskResultRepo, m)
	schedulerService := NewSchedulerService(cfg, log, repo.TriggerRepo, repo.TaskResultRepo, taskExecutor, locker, notifier, m)

	err := schedulerService.Register(
		job.NewMediaSyncJob(log, settingsService, repo),
		job.NewSmallSyncJob(log, settingsService, repo),
		job.NewPingJob(log, settingsService, repo.MediaServerClients, notifier),
		job.NewCheckUpdateJob(log, settingsService, updateService, notifier),
		job.NewDatabaseCleanupJob(log, repo),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		SchedulerService:   schedulerService,
		TaskExecutor:       taskExecutor,
		StatisticsGate:     statisticsGate,
		StatisticService:   statisticService,
		SettingsService:    settingsService,
		MediaServerService: mediaServerService,
		UpdateService:      updateService,
	}, nil
}
