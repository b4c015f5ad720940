package job

import (
	"context"
	"fmt"

	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/logger"
)

// DatabaseCleanupJob removes data made stale by the last successful media sync.
type DatabaseCleanupJob struct {
	base
	log         *logger.Logger
	statistics  repository.StatisticRepository
	people      repository.PersonRepository
	genres      repository.GenreRepository
	taskResults repository.TaskResultRepository
}

func NewDatabaseCleanupJob(log *logger.Logger, repo *repository.Repository) *DatabaseCleanupJob {
	return &DatabaseCleanupJob{
		base:        base{def: databaseCleanupDefinition()},
		log:         log,
		statistics:  repo.StatisticRepo,
		people:      repo.PersonRepo,
		genres:      repo.GenreRepo,
		taskResults: repo.TaskResultRepo,
	}
}

func (j *DatabaseCleanupJob) Run(ctx context.Context, r Reporter) error {
	lastSync, err := j.taskResults.GetLatestByJobIDAndStatus(ctx, model.JobIDMediaSync, model.TaskStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to find last media sync: %w", err)
	}

	if lastSync == nil {
		r.Warn("No successful media sync yet, keeping statistics")
	} else {
		deleted, err := j.statistics.DeleteOlderThan(ctx, lastSync.StartTimeUtc)
		if err != nil {
			return fmt.Errorf("failed to delete statistics: %w", err)
		}
		r.Info(fmt.Sprintf("Removed %d statistics older than %s", deleted, lastSync.StartTimeUtc.Format("2006-01-02 15:04:05")))
	}
	r.Progress(33)

	people, err := j.people.CleanupUnused(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete unused people: %w", err)
	}
	genres, err := j.genres.CleanupUnused(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete unused genres: %w", err)
	}
	r.Info(fmt.Sprintf("Removed %d people and %d genres without media", people, genres))
	r.Progress(66)

	if lastSync != nil {
		deleted, err := j.taskResults.DeleteOlderThan(ctx, lastSync.StartTimeUtc)
		if err != nil {
			return fmt.Errorf("failed to delete task results: %w", err)
		}
		r.Info(fmt.Sprintf("Removed %d task results", deleted))
	}

	j.log.InfoContext(ctx, "Database cleanup finished",
		logger.Field("people", people),
		logger.Field("genres", genres),
	)
	return nil
}
