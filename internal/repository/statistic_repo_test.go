package repository

import (
	"context"
	"testing"
	"time"

	"mediastat/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newStatistic(t model.StatisticType, calc time.Time, collections ...string) *model.Statistic {
	id := uuid.NewString()
	s := &model.Statistic{ID: id, Type: t, CalculationDateTime: calc, JsonResult: datatypes.JSON(`{}`)}
	for _, c := range collections {
		s.Collections = append(s.Collections, model.StatisticCollection{StatisticID: id, CollectionID: c})
	}
	return s
}

func TestStatisticRepository_DeleteOlderThan(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatisticRepository(db)
	ctx := context.Background()
	cutoff := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Add(ctx, newStatistic(model.StatisticTypeMovieGeneral, cutoff.Add(-time.Duration(i)*time.Hour), "lib-1")))
	}
	for i := 1; i <= 2; i++ {
		require.NoError(t, repo.Add(ctx, newStatistic(model.StatisticTypeMovieGeneral, cutoff.Add(time.Duration(i)*time.Hour), "lib-1")))
	}

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var collections int64
	require.NoError(t, db.Model(&model.StatisticCollection{}).Count(&collections).Error)
	assert.Equal(t, int64(2), collections)
}

func TestStatisticRepository_GetLastResultByType(t *testing.T) {
	db := newTestDB(t)
	repo := NewStatisticRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	older := newStatistic(model.StatisticTypeMovieGeneral, base, "lib-1", "lib-2")
	newerOtherSet := newStatistic(model.StatisticTypeMovieGeneral, base.Add(time.Hour), "lib-1")
	otherType := newStatistic(model.StatisticTypeShowGeneral, base.Add(2*time.Hour), "lib-1", "lib-2")
	for _, s := range []*model.Statistic{older, newerOtherSet, otherType} {
		require.NoError(t, repo.Add(ctx, s))
	}

	tests := []struct {
		name   string
		t      model.StatisticType
		ids    []string
		wantID string
	}{
		{name: "matches set regardless of order", t: model.StatisticTypeMovieGeneral, ids: []string{"lib-2", "lib-1"}, wantID: older.ID},
		{name: "newest with the same set", t: model.StatisticTypeMovieGeneral, ids: []string{"lib-1"}, wantID: newerOtherSet.ID},
		{name: "type filter", t: model.StatisticTypeShowGeneral, ids: []string{"lib-1", "lib-2"}, wantID: otherType.ID},
		{name: "no matching set", t: model.StatisticTypeMovieGeneral, ids: []string{"lib-3"}},
		{name: "no rows of type", t: model.StatisticTypeShowCollected, ids: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetLastResultByType(ctx, tt.t, tt.ids)
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}
