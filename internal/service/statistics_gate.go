package service

import (
	"context"
	"time"

	"mediastat/internal/apperror"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
	"mediastat/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// staleMargin lets a statistic computed shortly before the last media sync
// finished still count as fresh.
const staleMargin = 5 * time.Minute

const (
	gateResultHit       = "hit"
	gateResultMissing   = "missing"
	gateResultNoSync    = "no_sync"
	gateResultMismatch  = "collection_mismatch"
	gateResultOutOfDate = "out_of_date"
)

// StatisticsGate decides whether a stored statistic may be served.
type StatisticsGate interface {
	IsValid(ctx context.Context, statistic *model.Statistic, collectionIDs []string) (bool, error)
	AddStatistic(ctx context.Context, result []byte, calculatedAt time.Time, t model.StatisticType, collectionIDs []string) (*model.Statistic, error)
}

type statisticsGate struct {
	log            *logger.Logger
	statisticRepo  repository.StatisticRepository
	taskResultRepo repository.TaskResultRepository
	metrics        *metrics.Metrics
}

func NewStatisticsGate(log *logger.Logger, statisticRepo repository.StatisticRepository, taskResultRepo repository.TaskResultRepository, m *metrics.Metrics) StatisticsGate {
	return &statisticsGate{
		log:            log,
		statisticRepo:  statisticRepo,
		taskResultRepo: taskResultRepo,
		metrics:        m,
	}
}

func (g *statisticsGate) IsValid(ctx context.Context, statistic *model.Statistic, collectionIDs []string) (bool, error) {
	if statistic == nil {
		g.record("none", gateResultMissing)
		return false, nil
	}

	lastSync, err := g.taskResultRepo.GetLatestByJobIDAndStatus(ctx, model.JobIDMediaSync, model.TaskStatusCompleted)
	if err != nil {
		return false, apperror.Persistence("get last media sync", err)
	}

	typ := statistic.Type.String()
	switch {
	case lastSync == nil:
		g.record(typ, gateResultNoSync)
		return false, nil
	case !utils.SameStringSet(statistic.CollectionIDs(), collectionIDs):
		g.record(typ, gateResultMismatch)
		return false, nil
	case !statistic.CalculationDateTime.Add(staleMargin).After(lastSync.EndTimeUtc.Time):
		g.record(typ, gateResultOutOfDate)
		return false, nil
	}

	g.record(typ, gateResultHit)
	return true, nil
}

func (g *statisticsGate) record(typ, result string) {
	g.metrics.StatisticGate.WithLabelValues(typ, result).Inc()
}

func (g *statisticsGate) AddStatistic(ctx context.Context, result []byte, calculatedAt time.Time, t model.StatisticType, collectionIDs []string) (*model.Statistic, error) {
	statistic := &model.Statistic{
		ID:                  uuid.NewString(),
		Type:                t,
		CalculationDateTime: calculatedAt,
		JsonResult:          datatypes.JSON(result),
	}
	for _, id := range collectionIDs {
		statistic.Collections = append(statistic.Collections, model.StatisticCollection{
			StatisticID:  statistic.ID,
			CollectionID: id,
		})
	}

	if err := g.statisticRepo.Add(ctx, statistic); err != nil {
		g.log.ErrorContext(ctx, "Failed to store statistic", logger.ErrorField(err), logger.StringField("type", t.String()))
		return nil, apperror.Persistence("add statistic", err)
	}
	return statistic, nil
}
