package repository

import (
	"mediastat/internal/model"

	"gorm.io/gorm"
)

// Models lists every table owned by the application, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.SystemParameter{},
		&model.TaskTrigger{},
		&model.TaskResult{},
		&model.Statistic{},
		&model.StatisticCollection{},
		&model.Library{},
		&model.Movie{},
		&model.Show{},
		&model.Genre{},
		&model.Person{},
		&model.MediaGenre{},
		&model.MediaPerson{},
		&model.ServerInfo{},
		&model.Plugin{},
		&model.Drive{},
		&model.MediaServerUser{},
	}
}

// AutoMigrate creates the schema through gorm. Postgres deployments use the
// sql migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
