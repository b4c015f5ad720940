package model

import (
	"database/sql"
	"time"
)

type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "Running"
	TaskStatusCompleted TaskStatus = "Completed"
	TaskStatusFailed    TaskStatus = "Failed"
	TaskStatusCancelled TaskStatus = "Cancelled"
	TaskStatusAborted   TaskStatus = "Aborted"
)

// TaskResult is one execution of a job.
type TaskResult struct {
	ID               string     `gorm:"type:varchar(36);primaryKey"`
	JobID            string     `gorm:"type:varchar(36);not null;index"`
	Key              string     `gorm:"type:varchar(100);not null"`
	Name             string     `gorm:"type:varchar(255)"`
	StartTimeUtc     time.Time  `gorm:"not null;index"`
	EndTimeUtc       sql.NullTime
	Status           TaskStatus     `gorm:"type:varchar(20);not null;index"`
	ErrorMessage     sql.NullString `gorm:"type:text"`
	LongErrorMessage sql.NullString `gorm:"type:text"`
}

func (TaskResult) TableName() string {
	return "task_results"
}

func (r TaskResult) Duration() time.Duration {
	if !r.EndTimeUtc.Valid {
		return 0
	}
	return r.EndTimeUtc.Time.Sub(r.StartTimeUtc)
}
