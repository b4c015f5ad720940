package job

import (
	"time"

	"mediastat/internal/model"
	"mediastat/pkg/utils"
)

func mediaSyncDefinition() model.JobDefinition {
	return model.JobDefinition{
		ID:              model.JobIDMediaSync,
		Key:             KeyMediaSync,
		Title:           "Media sync",
		Description:     "Synchronizes movies and shows from the media server and refreshes TVDB episode counts",
		Category:        model.JobCategorySync,
		Prefix:          "MEDIA-SYNC",
		QuietPeriod:     time.Hour,
		DefaultTriggers: []model.TaskTrigger{model.DailyTrigger(3 * time.Hour)},
	}
}

func smallSyncDefinition() model.JobDefinition {
	return model.JobDefinition{
		ID:              model.JobIDSmallSync,
		Key:             KeySmallSync,
		Title:           "Small sync",
		Description:     "Synchronizes server info, plugins, drives and users",
		Category:        model.JobCategorySync,
		Prefix:          "SMALL-SYNC",
		QuietPeriod:     60 * time.Second,
		DefaultTriggers: []model.TaskTrigger{model.IntervalTrigger(time.Hour)},
	}
}

func pingDefinition() model.JobDefinition {
	return model.JobDefinition{
		ID:              model.JobIDPing,
		Key:             KeyPing,
		Title:           "Media server ping",
		Description:     "Checks that the media server is reachable",
		Category:        model.JobCategoryMaintenance,
		Prefix:          "PING",
		QuietPeriod:     30 * time.Second,
		DefaultTriggers: []model.TaskTrigger{model.IntervalTrigger(5 * time.Minute)},
	}
}

func checkUpdateDefinition() model.JobDefinition {
	return model.JobDefinition{
		ID:          model.JobIDCheckUpdate,
		Key:         KeyCheckUpdate,
		Title:       "Check for updates",
		Description: "Looks for a newer release and downloads it when auto update is on",
		Category:    model.JobCategoryUpdater,
		Prefix:      "CHECK-UPDATE",
		QuietPeriod: 30 * time.Second,
		DefaultTriggers: []model.TaskTrigger{
			{Type: model.TriggerTypeDaily, TimeOfDayTicks: utils.ToPointer(int64(10000))},
			model.StartupTrigger(),
		},
	}
}

func databaseCleanupDefinition() model.JobDefinition {
	return model.JobDefinition{
		ID:              model.JobIDDatabaseCleanup,
		Key:             KeyDatabaseCleanup,
		Title:           "Database cleanup",
		Description:     "Removes stale statistics, orphaned people and genres and old task results",
		Category:        model.JobCategoryMaintenance,
		Prefix:          "DATABASE-CLEANUP",
		QuietPeriod:     300 * time.Second,
		DefaultTriggers: []model.TaskTrigger{model.DailyTrigger(4 * time.Hour)},
	}
}
