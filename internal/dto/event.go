package dto

import "time"

const (
	MessageTypeJobProgress      = "job_progress"
	MessageTypeJobLog           = "job_log"
	MessageTypeJobInfo          = "job_info"
	MessageTypeConnectionStatus = "connection_status"
	MessageTypeUpdateState      = "update_state"
)

type LogSeverity string

const (
	LogSeverityInfo    LogSeverity = "info"
	LogSeverityWarning LogSeverity = "warning"
	LogSeverityError   LogSeverity = "error"
)

// Message is the envelope pushed to websocket observers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type JobProgressEvent struct {
	JobID   string  `json:"job_id"`
	Percent float64 `json:"percent"`
}

type JobLogEvent struct {
	JobID    string      `json:"job_id"`
	Line     string      `json:"line"`
	Severity LogSeverity `json:"severity"`
	Time     time.Time   `json:"time"`
}

type ConnectionStatusEvent struct {
	MissedPings int `json:"missed_pings"`
}

type UpdateStateEvent struct {
	InProgress bool `json:"in_progress"`
}
