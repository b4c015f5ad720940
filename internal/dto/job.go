package dto

import "time"

type JobInfo struct {
	ID          string        `json:"id"`
	Key         string        `json:"key"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	State       string        `json:"state"`
	Progress    float64       `json:"progress"`
	LastResult  *TaskResult   `json:"last_result,omitempty"`
	Triggers    []TriggerInfo `json:"triggers"`
}

type TaskResult struct {
	ID               string     `json:"id"`
	Key              string     `json:"key"`
	Name             string     `json:"name"`
	Status           string     `json:"status"`
	StartTimeUtc     time.Time  `json:"start_time_utc"`
	EndTimeUtc       *time.Time `json:"end_time_utc,omitempty"`
	RunTimeSeconds   float64    `json:"run_time_seconds"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	LongErrorMessage string     `json:"long_error_message,omitempty"`
}

type TriggerInfo struct {
	Type           string `json:"type" validate:"required,oneof=IntervalTrigger DailyTrigger StartupTrigger None"`
	TimeOfDayTicks *int64 `json:"time_of_day_ticks,omitempty" validate:"omitempty,min=0"`
	IntervalTicks  *int64 `json:"interval_ticks,omitempty" validate:"omitempty,min=0"`
}

type UpdateTriggersRequest struct {
	Triggers []TriggerInfo `json:"triggers" validate:"dive"`
}

type FireJobResponse struct {
	JobID   string `json:"job_id"`
	Started bool   `json:"started"`
}

type JobHistoryParam struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=500"`
}
