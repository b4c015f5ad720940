package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mediastat/internal/apperror"
	"mediastat/internal/dto"
	"mediastat/internal/helper"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/codec"
	"mediastat/pkg/logger"
	"mediastat/pkg/utils"
)

type StatisticService interface {
	GetMovieStatistics(ctx context.Context, libraryIDs []string) (*dto.MovieStatistics, error)
	GetShowStatistics(ctx context.Context, libraryIDs []string) (*dto.ShowStatistics, error)
}

type statisticService struct {
	log           *logger.Logger
	gate          StatisticsGate
	statisticRepo repository.StatisticRepository
	libraryRepo   repository.LibraryRepository
	movieRepo     repository.MovieRepository
	showRepo      repository.ShowRepository
	codec         codec.Codec
	now           func() time.Time
}

func NewStatisticService(log *logger.Logger, repo *repository.Repository, gate StatisticsGate, c codec.Codec) StatisticService {
	return &statisticService{
		log:           log,
		gate:          gate,
		statisticRepo: repo.StatisticRepo,
		libraryRepo:   repo.LibraryRepo,
		movieRepo:     repo.MovieRepo,
		showRepo:      repo.ShowRepo,
		codec:         c,
		now:           utils.TimeNowUTC,
	}
}

// collectionIDs resolves an empty selection to every library of collectionType.
func (s *statisticService) collectionIDs(ctx context.Context, collectionType string, libraryIDs []string) ([]string, error) {
	if len(libraryIDs) > 0 {
		return utils.SortedUnique(libraryIDs), nil
	}
	libraries, err := s.libraryRepo.GetAll(ctx, collectionType)
	if err != nil {
		return nil, apperror.Persistence("list libraries", err)
	}
	ids := make([]string, 0, len(libraries))
	for _, l := range libraries {
		ids = append(ids, l.ID)
	}
	return utils.SortedUnique(ids), nil
}

// getOrCompute serves the stored statistic of type t when the gate accepts it,
// otherwise computes and stores a new one.
func getOrCompute[T any](ctx context.Context, s *statisticService, t model.StatisticType, ids []string, compute func() (T, error)) (T, error) {
	var out T

	stored, err := s.statisticRepo.GetLastResultByType(ctx, t, ids)
	if err != nil {
		return out, apperror.Persistence("get statistic", err)
	}
	valid, err := s.gate.IsValid(ctx, stored, ids)
	if err != nil {
		return out, err
	}
	if valid {
		if err := s.codec.Unmarshal(stored.JsonResult, &out); err == nil {
			return out, nil
		}
		s.log.WarnContext(ctx, "Stored statistic is unreadable, recalculating", logger.StringField("type", t.String()))
	}

	out, err = compute()
	if err != nil {
		return out, err
	}
	payload, err := s.codec.Marshal(out)
	if err != nil {
		return out, fmt.Errorf("failed to encode %s statistic: %w", t, err)
	}
	if _, err := s.gate.AddStatistic(ctx, payload, s.now(), t, ids); err != nil {
		return out, err
	}
	return out, nil
}

func (s *statisticService) GetMovieStatistics(ctx context.Context, libraryIDs []string) (*dto.MovieStatistics, error) {
	ids, err := s.collectionIDs(ctx, model.CollectionTypeMovies, libraryIDs)
	if err != nil {
		return nil, err
	}
	loadMovies := sync.OnceValues(func() ([]model.Movie, error) {
		movies, err := s.movieRepo.GetAll(ctx, ids)
		if err != nil {
			return nil, apperror.Persistence("list movies", err)
		}
		return movies, nil
	})

	general, err := getOrCompute(ctx, s, model.StatisticTypeMovieGeneral, ids, func() ([]dto.Card, error) {
		movies, err := loadMovies()
		return helper.MovieGeneralCards(movies), err
	})
	if err != nil {
		return nil, err
	}
	charts, err := getOrCompute(ctx, s, model.StatisticTypeMovieGraphs, ids, func() ([]dto.Chart, error) {
		movies, err := loadMovies()
		return helper.MovieCharts(movies), err
	})
	if err != nil {
		return nil, err
	}
	people, err := getOrCompute(ctx, s, model.StatisticTypeMoviePeople, ids, func() (moviePeople, error) {
		movies, err := loadMovies()
		return moviePeople{Actors: helper.MovieTopActors(movies), Directors: helper.MovieTopDirectors(movies)}, err
	})
	if err != nil {
		return nil, err
	}

	return &dto.MovieStatistics{
		General:     general,
		Charts:      charts,
		TopActors:   people.Actors,
		TopDirector: people.Directors,
	}, nil
}

type moviePeople struct {
	Actors    []dto.PersonCount `json:"actors"`
	Directors []dto.PersonCount `json:"directors"`
}

func (s *statisticService) GetShowStatistics(ctx context.Context, libraryIDs []string) (*dto.ShowStatistics, error) {
	ids, err := s.collectionIDs(ctx, model.CollectionTypeTvShows, libraryIDs)
	if err != nil {
		return nil, err
	}
	loadShows := sync.OnceValues(func() ([]model.Show, error) {
		shows, err := s.showRepo.GetAll(ctx, ids)
		if err != nil {
			return nil, apperror.Persistence("list shows", err)
		}
		return shows, nil
	})

	general, err := getOrCompute(ctx, s, model.StatisticTypeShowGeneral, ids, func() ([]dto.Card, error) {
		shows, err := loadShows()
		return helper.ShowGeneralCards(shows), err
	})
	if err != nil {
		return nil, err
	}
	charts, err := getOrCompute(ctx, s, model.StatisticTypeShowGraphs, ids, func() ([]dto.Chart, error) {
		shows, err := loadShows()
		return helper.ShowCharts(shows), err
	})
	if err != nil {
		return nil, err
	}
	actors, err := getOrCompute(ctx, s, model.StatisticTypeShowPeople, ids, func() ([]dto.PersonCount, error) {
		shows, err := loadShows()
		return helper.ShowTopActors(shows), err
	})
	if err != nil {
		return nil, err
	}
	collected, err := getOrCompute(ctx, s, model.StatisticTypeShowCollected, ids, func() ([]dto.ShowCollectedRow, error) {
		shows, err := loadShows()
		return helper.ShowCollectedRows(shows), err
	})
	if err != nil {
		return nil, err
	}

	return &dto.ShowStatistics{
		General:   general,
		Charts:    charts,
		TopActors: actors,
		Collected: collected,
	}, nil
}
