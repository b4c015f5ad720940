package job

import (
	"context"
	"fmt"

	"mediastat/internal/repository"
	"mediastat/pkg/logger"
)

// SmallSyncJob refreshes server info, plugins, drives and users. Each list is
// replaced wholesale.
type SmallSyncJob struct {
	base
	clientHolder
	log    *logger.Logger
	server repository.ServerRepository
}

func NewSmallSyncJob(log *logger.Logger, settings Settings, repo *repository.Repository) *SmallSyncJob {
	return &SmallSyncJob{
		base:         base{def: smallSyncDefinition()},
		clientHolder: clientHolder{clients: repo.MediaServerClients, settings: settings},
		log:          log,
		server:       repo.ServerRepo,
	}
}

func (j *SmallSyncJob) Run(ctx context.Context, r Reporter) error {
	client, err := j.open(ctx)
	if err != nil {
		return err
	}

	info, err := client.GetServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("failed to get server info: %w", err)
	}
	if err := j.server.UpsertServerInfo(ctx, toServerInfo(info)); err != nil {
		return fmt.Errorf("failed to store server info: %w", err)
	}
	r.Info(fmt.Sprintf("Server %s runs version %s", info.ServerName, info.Version))
	r.Progress(35)

	plugins, err := client.ListPlugins(ctx)
	if err != nil {
		return fmt.Errorf("failed to list plugins: %w", err)
	}
	if err := j.server.ReplacePlugins(ctx, toPlugins(plugins)); err != nil {
		return fmt.Errorf("failed to store plugins: %w", err)
	}
	r.Info(fmt.Sprintf("Synced %d plugins", len(plugins)))
	r.Progress(55)

	drives, err := client.ListDrives(ctx)
	if err != nil {
		return fmt.Errorf("failed to list drives: %w", err)
	}
	if err := j.server.ReplaceDrives(ctx, toDrives(drives)); err != nil {
		return fmt.Errorf("failed to store drives: %w", err)
	}
	r.Info(fmt.Sprintf("Synced %d drives", len(drives)))
	r.Progress(65)

	users, err := client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if err := j.server.ReplaceUsers(ctx, toUsers(users)); err != nil {
		return fmt.Errorf("failed to store users: %w", err)
	}
	r.Info(fmt.Sprintf("Synced %d users", len(users)))
	return nil
}

func (j *SmallSyncJob) Dispose() {
	j.close()
}
