// Package job holds the background jobs run by the scheduler.
//
// A job only talks to its Reporter for progress and log lines. The scheduler
// owns the task result, the single-flight slot and the push transport.
package job

import (
	"context"

	"mediastat/internal/dto"
	"mediastat/internal/model"
)

const (
	KeyMediaSync       = "MediaSync"
	KeySmallSync       = "SmallSync"
	KeyPing            = "Ping"
	KeyCheckUpdate     = "CheckUpdate"
	KeyDatabaseCleanup = "DatabaseCleanup"
)

// Reporter receives progress and log lines of one execution.
type Reporter interface {
	// Progress takes a percentage in [0, 100]. Values below the last reported one are raised to it.
	Progress(percent float64)
	Info(line string)
	Warn(line string)
	Error(line string)
}

type Job interface {
	Definition() model.JobDefinition
	Run(ctx context.Context, r Reporter) error
	// OnFail undoes optimistic state after Run returned an error. It runs before Dispose.
	OnFail(ctx context.Context)
	// Dispose releases resources acquired by Run. It is called once per execution.
	Dispose()
}

// Broadcaster pushes state that is not tied to one execution.
type Broadcaster interface {
	BroadcastConnectionStatus(missedPings int)
	BroadcastUpdateState(inProgress bool)
}

// Settings gives typed access to the stored setting groups.
type Settings interface {
	GetMediaServer(ctx context.Context) (model.MediaServerSettings, error)
	GetTvdb(ctx context.Context) (model.TvdbSettings, error)
	SaveTvdb(ctx context.Context, settings model.TvdbSettings) error
	GetUpdate(ctx context.Context) (model.UpdateSettings, error)
	SaveUpdate(ctx context.Context, settings model.UpdateSettings) error
	GetMediaServerStatus(ctx context.Context) (model.MediaServerStatus, error)
	SaveMediaServerStatus(ctx context.Context, status model.MediaServerStatus) error
}

// Updater finds and fetches new releases.
type Updater interface {
	CheckForUpdate(ctx context.Context) (*dto.UpdateResult, error)
	DownloadUpdate(ctx context.Context, update *dto.UpdateResult) (string, error)
}

// base carries the parts every job shares.
type base struct {
	def model.JobDefinition
}

func (b *base) Definition() model.JobDefinition {
	return b.def
}

func (b *base) OnFail(context.Context) {}

func (b *base) Dispose() {}
