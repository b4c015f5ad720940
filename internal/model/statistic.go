package model

import (
	"time"

	"gorm.io/datatypes"
)

type StatisticType int

const (
	StatisticTypeMovieGeneral StatisticType = iota
	StatisticTypeMovieGraphs
	StatisticTypeMoviePeople
	StatisticTypeMovieSuspicious
	StatisticTypeShowGeneral
	StatisticTypeShowGraphs
	StatisticTypeShowPeople
	StatisticTypeShowCollected
)

func (t StatisticType) String() string {
	switch t {
	case StatisticTypeMovieGeneral:
		return "MovieGeneral"
	case StatisticTypeMovieGraphs:
		return "MovieGraphs"
	case StatisticTypeMoviePeople:
		return "MoviePeople"
	case StatisticTypeMovieSuspicious:
		return "MovieSuspicious"
	case StatisticTypeShowGeneral:
		return "ShowGeneral"
	case StatisticTypeShowGraphs:
		return "ShowGraphs"
	case StatisticTypeShowPeople:
		return "ShowPeople"
	case StatisticTypeShowCollected:
		return "ShowCollected"
	}
	return "Unknown"
}

// Statistic is a stored report. Rows are only inserted, never updated.
type Statistic struct {
	ID                  string        `gorm:"type:varchar(36);primaryKey"`
	Type                StatisticType `gorm:"not null;index"`
	CalculationDateTime time.Time     `gorm:"not null;index"`
	JsonResult          datatypes.JSON
	Collections         []StatisticCollection `gorm:"foreignKey:StatisticID"`
}

func (Statistic) TableName() string {
	return "statistics"
}

// CollectionIDs returns the library ids the statistic was computed over.
func (s Statistic) CollectionIDs() []string {
	ids := make([]string, 0, len(s.Collections))
	for _, c := range s.Collections {
		ids = append(ids, c.CollectionID)
	}
	return ids
}

type StatisticCollection struct {
	ID           uint   `gorm:"primaryKey"`
	StatisticID  string `gorm:"type:varchar(36);not null;index"`
	CollectionID string `gorm:"type:varchar(100);not null"`
}

func (StatisticCollection) TableName() string {
	return "statistic_collections"
}
