package service

import "mediastat/internal/dto"

// Notifier pushes job and server state to connected observers. Calls must not
// block on slow observers.
type Notifier interface {
	BroadcastProgress(jobID string, percent float64)
	BroadcastLog(jobID, line string, severity dto.LogSeverity)
	BroadcastConnectionStatus(missedPings int)
	BroadcastUpdateState(inProgress bool)
	BroadcastJobInfo(info dto.JobInfo)
}
