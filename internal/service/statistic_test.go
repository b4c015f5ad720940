package service

import (
	"context"
	"testing"
	"time"

	"mediastat/internal/dto"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/codec"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
	"mediastat/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMovies(t *testing.T, repo *repository.Repository) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.LibraryRepo.ReplaceAll(ctx, []model.Library{
		{ID: "lib-movies", Name: "Movies", CollectionType: model.CollectionTypeMovies},
		{ID: "lib-shows", Name: "Shows", CollectionType: model.CollectionTypeTvShows},
	}))
	require.NoError(t, repo.MovieRepo.UpsertRange(ctx, []model.Movie{
		{ID: "m1", LibraryID: "lib-movies", Name: "Heat", ProductionYear: utils.ToPointer(1995)},
		{ID: "m2", LibraryID: "lib-movies", Name: "Collateral", ProductionYear: utils.ToPointer(2004)},
	}))
}

func newTestStatisticService(repo *repository.Repository) (*statisticService, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	gate := NewStatisticsGate(logger.NewNop(), repo.StatisticRepo, repo.TaskResultRepo, m)
	return NewStatisticService(logger.NewNop(), repo, gate, codec.NewJSON()).(*statisticService), m
}

func TestStatisticService_GetMovieStatistics(t *testing.T) {
	repo := newTestRepository(t)
	seedMovies(t, repo)
	s, _ := newTestStatisticService(repo)
	ctx := context.Background()

	stats, err := s.GetMovieStatistics(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, dto.Card{Title: "Movies", Value: "2"}, stats.General[0])
	require.Len(t, stats.Charts, 3)
	assert.Equal(t, []dto.ChartPoint{{Label: "1990s", Value: 1}, {Label: "2000s", Value: 1}}, stats.Charts[1].Points)

	count, err := repo.StatisticRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count, "one stored statistic per movie type")

	stored, err := repo.StatisticRepo.GetLastResultByType(ctx, model.StatisticTypeMovieGeneral, []string{"lib-movies"})
	require.NoError(t, err)
	assert.NotNil(t, stored, "empty selection resolves to every movie library")
}

func TestStatisticService_ServesCachedStatistic(t *testing.T) {
	repo := newTestRepository(t)
	seedMovies(t, repo)
	s, _ := newTestStatisticService(repo)
	ctx := context.Background()

	now := time.Now().UTC()
	addMediaSync(t, repo.TaskResultRepo, model.TaskStatusCompleted, now.Add(-2*time.Hour), now.Add(-time.Hour))

	first, err := s.GetMovieStatistics(ctx, []string{"lib-movies"})
	require.NoError(t, err)

	// a new movie is not visible until the cached statistic goes stale
	require.NoError(t, repo.MovieRepo.UpsertRange(ctx, []model.Movie{{ID: "m3", LibraryID: "lib-movies", Name: "Thief"}}))

	second, err := s.GetMovieStatistics(ctx, []string{"lib-movies"})
	require.NoError(t, err)
	assert.Equal(t, first.General, second.General)

	count, err := repo.StatisticRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// a sync finishing well after the calculation invalidates it
	addMediaSync(t, repo.TaskResultRepo, model.TaskStatusCompleted, now, now.Add(time.Hour))
	third, err := s.GetMovieStatistics(ctx, []string{"lib-movies"})
	require.NoError(t, err)
	assert.Equal(t, dto.Card{Title: "Movies", Value: "3"}, third.General[0])
}

func TestStatisticService_GetShowStatistics(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	require.NoError(t, repo.LibraryRepo.ReplaceAll(ctx, []model.Library{{ID: "lib-shows", Name: "Shows", CollectionType: model.CollectionTypeTvShows}}))
	require.NoError(t, repo.ShowRepo.UpsertRange(ctx, []model.Show{
		{ID: "s1", LibraryID: "lib-shows", Name: "The Wire", TvdbID: "79126", EpisodeCount: 60, Status: "Ended"},
	}))
	require.NoError(t, repo.ShowRepo.UpdateTvdbState(ctx, "s1", 62, false))
	s, _ := newTestStatisticService(repo)

	stats, err := s.GetShowStatistics(ctx, nil)
	require.NoError(t, err)
	require.Len(t, stats.Collected, 1)
	assert.Equal(t, 2, stats.Collected[0].MissingEpisodes)
	assert.Contains(t, stats.General, dto.Card{Title: "Ended shows", Value: "1"})

	count, err := repo.StatisticRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}
