package job

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"mediastat/internal/model"
	"mediastat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestDatabaseCleanupJob_Run(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	syncStart := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	syncEnd := syncStart.Add(20 * time.Minute)

	require.NoError(t, repo.TaskResultRepo.Create(ctx, &model.TaskResult{
		ID: uuid.NewString(), JobID: model.JobIDMediaSync, Key: KeyMediaSync, StartTimeUtc: syncStart,
		EndTimeUtc: sql.NullTime{Time: syncEnd, Valid: true}, Status: model.TaskStatusCompleted,
	}))
	oldPing := &model.TaskResult{
		ID: uuid.NewString(), JobID: model.JobIDPing, Key: KeyPing, StartTimeUtc: syncStart.Add(-48 * time.Hour),
		EndTimeUtc: sql.NullTime{Time: syncStart.Add(-48 * time.Hour), Valid: true}, Status: model.TaskStatusCompleted,
	}
	require.NoError(t, repo.TaskResultRepo.Create(ctx, oldPing))

	offsets := []time.Duration{-3 * time.Hour, -2 * time.Hour, -time.Hour, time.Hour, 2 * time.Hour}
	for _, offset := range offsets {
		id := uuid.NewString()
		require.NoError(t, repo.StatisticRepo.Add(ctx, &model.Statistic{
			ID:                  id,
			Type:                model.StatisticTypeMovieGeneral,
			CalculationDateTime: syncStart.Add(offset),
			JsonResult:          datatypes.JSON(`[]`),
			Collections:         []model.StatisticCollection{{StatisticID: id, CollectionID: "lib-1"}},
		}))
	}

	require.NoError(t, repo.MovieRepo.UpsertRange(ctx, []model.Movie{
		{ID: "m-1", LibraryID: "lib-1", Name: "Movie", Genres: []model.Genre{{ID: "g-1", Name: "Drama"}}},
		{
			ID: "m-2", LibraryID: "lib-1", Name: "Gone", Genres: []model.Genre{{ID: "g-orphan", Name: "Western"}},
			People: []model.MediaPerson{{PersonID: "p-orphan", Type: model.PersonTypeActor, Name: "Nobody"}},
		},
	}))
	_, err := repo.MovieRepo.RemoveMissing(ctx, "lib-1", []string{"m-1"})
	require.NoError(t, err)

	j := NewDatabaseCleanupJob(logger.NewNop(), repo)
	reporter := &recordingReporter{}
	require.NoError(t, j.Run(ctx, reporter))

	assert.Equal(t, []float64{33, 66}, reporter.progress)

	count, err := repo.StatisticRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	genres, err := repo.GenreRepo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "g-1", genres[0].ID)

	people, err := repo.PersonRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), people)

	pings, err := repo.TaskResultRepo.ListByJobID(ctx, model.JobIDPing, 10)
	require.NoError(t, err)
	assert.Empty(t, pings)
}

func TestDatabaseCleanupJob_NoSuccessfulSync(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	id := uuid.NewString()
	require.NoError(t, repo.StatisticRepo.Add(ctx, &model.Statistic{
		ID: id, Type: model.StatisticTypeShowGeneral, CalculationDateTime: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), JsonResult: datatypes.JSON(`[]`),
	}))

	j := NewDatabaseCleanupJob(logger.NewNop(), repo)
	reporter := &recordingReporter{}
	require.NoError(t, j.Run(ctx, reporter))

	count, err := repo.StatisticRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, reporter.count("warning"))
}
