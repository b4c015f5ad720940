package model

import "time"

// Stable job ids. They key single-flight and the "last successful run" lookups.
const (
	JobIDMediaSync       = "be68900b-ee1d-41ef-b12f-60ef3106052e"
	JobIDSmallSync       = "41e0bf22-1e6b-4f5d-90be-ec966f746a2f"
	JobIDPing            = "ce1fbc9e-21ee-450b-9cdf-58a0e17ea98e"
	JobIDCheckUpdate     = "78bc2bf2-0e8f-4ee1-8c0f-9f6f36f6a7a4"
	JobIDDatabaseCleanup = "b109ca73-3563-4062-a47b-e2f9c6e4b4c2"
)

const (
	JobCategorySync        = "Sync"
	JobCategoryMaintenance = "Maintenance"
	JobCategoryUpdater     = "Updater"
)

type JobState string

const (
	JobStateIdle    JobState = "Idle"
	JobStateRunning JobState = "Running"
)

// JobDefinition describes a registered job. It is not persisted.
type JobDefinition struct {
	ID          string
	Key         string
	Title       string
	Description string
	Category    string
	Prefix      string
	// QuietPeriod bounds the lease of a distributed lock. The in-process
	// lock holds until the execution returns.
	QuietPeriod     time.Duration
	DefaultTriggers []TaskTrigger
}
