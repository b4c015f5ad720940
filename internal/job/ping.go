package job

import (
	"context"
	"fmt"

	"mediastat/internal/repository"
	"mediastat/pkg/logger"
)

// PingJob probes the media server. Missed pings are counted and broadcast
// rather than failing the job.
type PingJob struct {
	base
	clientHolder
	log         *logger.Logger
	broadcaster Broadcaster
}

func NewPingJob(log *logger.Logger, settings Settings, clients repository.MediaServerClientFactory, broadcaster Broadcaster) *PingJob {
	return &PingJob{
		base:         base{def: pingDefinition()},
		clientHolder: clientHolder{clients: clients, settings: settings},
		log:          log,
		broadcaster:  broadcaster,
	}
}

func (j *PingJob) Run(ctx context.Context, r Reporter) error {
	status, err := j.settings.GetMediaServerStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to read media server status: %w", err)
	}

	reachable := false
	client, err := j.open(ctx)
	if err != nil {
		return err
	}
	reply, err := client.Ping(ctx)
	switch {
	case err != nil:
		r.Warn(fmt.Sprintf("Media server ping failed: %v", err))
	case reply != repository.PingReply:
		r.Warn(fmt.Sprintf("Media server answered ping with %q", reply))
	default:
		reachable = true
	}

	if reachable {
		status.MissedPings = 0
		r.Info("Media server is online")
	} else {
		status.MissedPings++
		j.log.WarnContext(ctx, "Media server missed a ping", logger.IntField("missed_pings", status.MissedPings))
	}

	if err := j.settings.SaveMediaServerStatus(ctx, status); err != nil {
		return fmt.Errorf("failed to store media server status: %w", err)
	}
	j.broadcaster.BroadcastConnectionStatus(status.MissedPings)
	return nil
}

func (j *PingJob) Dispose() {
	j.close()
}
