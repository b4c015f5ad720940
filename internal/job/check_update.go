package job

import (
	"context"
	"fmt"

	"mediastat/pkg/logger"
)

// CheckUpdateJob looks for a newer release. With auto update on it marks an
// update in progress and downloads the release asset.
type CheckUpdateJob struct {
	base
	log         *logger.Logger
	settings    Settings
	updater     Updater
	broadcaster Broadcaster
}

func NewCheckUpdateJob(log *logger.Logger, settings Settings, updater Updater, broadcaster Broadcaster) *CheckUpdateJob {
	return &CheckUpdateJob{
		base:        base{def: checkUpdateDefinition()},
		log:         log,
		settings:    settings,
		updater:     updater,
		broadcaster: broadcaster,
	}
}

func (j *CheckUpdateJob) Run(ctx context.Context, r Reporter) error {
	result, err := j.updater.CheckForUpdate(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for update: %w", err)
	}
	r.Progress(20)

	if !result.IsUpdateAvailable {
		r.Info(fmt.Sprintf("Version %s is up to date", result.CurrentVersion))
		return nil
	}
	r.Info(fmt.Sprintf("Version %s is available, running %s", result.AvailableVersion, result.CurrentVersion))

	settings, err := j.settings.GetUpdate(ctx)
	if err != nil {
		return fmt.Errorf("failed to read update settings: %w", err)
	}
	if !settings.AutoUpdate {
		r.Info("Auto update is off, not downloading")
		return nil
	}

	settings.UpdateInProgress = true
	if err := j.settings.SaveUpdate(ctx, settings); err != nil {
		return fmt.Errorf("failed to mark update in progress: %w", err)
	}
	j.broadcaster.BroadcastUpdateState(true)
	r.Progress(40)

	path, err := j.updater.DownloadUpdate(ctx, result)
	if err != nil {
		return fmt.Errorf("failed to download update: %w", err)
	}
	r.Info(fmt.Sprintf("Downloaded %s", path))
	r.Progress(90)

	settings.UpdateInProgress = false
	if err := j.settings.SaveUpdate(ctx, settings); err != nil {
		return fmt.Errorf("failed to clear update in progress: %w", err)
	}
	j.broadcaster.BroadcastUpdateState(false)
	return nil
}

// OnFail clears the update flag set before the download.
func (j *CheckUpdateJob) OnFail(ctx context.Context) {
	settings, err := j.settings.GetUpdate(ctx)
	if err != nil {
		j.log.ErrorContext(ctx, "Failed to read update settings", logger.ErrorField(err))
		return
	}
	if settings.UpdateInProgress {
		settings.UpdateInProgress = false
		if err := j.settings.SaveUpdate(ctx, settings); err != nil {
			j.log.ErrorContextWithAlert(ctx, "Failed to clear update in progress", logger.ErrorField(err))
		}
	}
	j.broadcaster.BroadcastUpdateState(false)
}
