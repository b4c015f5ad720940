package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"mediastat/internal/apperror"
	"mediastat/pkg/logger"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTvdb(t *testing.T, handler http.Handler, now time.Time) *tvdbRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := newTestConfig()
	cfg.Tvdb.BaseURL = server.URL
	repo := NewTvdbRepository(cfg, logger.NewNop()).(*tvdbRepository)
	repo.now = func() time.Time { return now }
	return repo
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestTvdbRepository_Login(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
		wantKind apperror.Kind
	}{
		{name: "ok", status: http.StatusOK},
		{name: "unauthorized", status: http.StatusUnauthorized, wantCode: apperror.CodeTvdbLoginFailed, wantKind: apperror.KindBusiness},
		{name: "server error", status: http.StatusBadGateway, wantKind: apperror.KindTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestTvdb(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/login", r.URL.Path)
				writeJSON(w, tt.status, map[string]string{"token": "jwt"})
			}), time.Now())

			err := repo.Login(context.Background(), "key")
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, "jwt", repo.token)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperror.KindOf(err))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apperror.CodeOf(err))
				assert.Equal(t, http.StatusInternalServerError, apperror.StatusOf(err))
			}
		})
	}
}

func TestTvdbRepository_GetEpisodes(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	var calls int32

	repo := newTestTvdb(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/series/321/episodes", r.URL.Path)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		var next *int
		if page < 4 {
			n := page + 1
			next = &n
		}
		episodes := []map[string]interface{}{
			{"id": page*10 + 1, "airedSeason": 1, "airedEpisodeNumber": page, "firstAired": "2024-01-01"},
			{"id": page*10 + 2, "airedSeason": 0, "airedEpisodeNumber": page, "firstAired": "2024-01-01"},
		}
		switch page {
		case 3:
			episodes = append(episodes, map[string]interface{}{"id": 99, "airedSeason": 2, "firstAired": "2030-01-01"})
		case 4:
			episodes = append(episodes,
				map[string]interface{}{"id": 98, "airedSeason": 2, "firstAired": ""},
				map[string]interface{}{"id": 97, "airedSeason": 2, "firstAired": "2024-06-15"},
			)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"links": map[string]interface{}{"next": next}, "data": episodes})
	}), now)

	episodes, err := repo.GetEpisodes(context.Background(), "321")
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))

	var ids []int
	for _, ep := range episodes {
		ids = append(ids, ep.Id)
	}
	assert.Equal(t, []int{11, 21, 31, 41, 98, 97}, ids)
}

func TestTvdbRepository_GetEpisodes_NextEqualsCurrentPage(t *testing.T) {
	var calls int32
	repo := newTestTvdb(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, map[string]interface{}{"links": map[string]interface{}{"next": 1}, "data": []interface{}{}})
	}), time.Now())

	episodes, err := repo.GetEpisodes(context.Background(), "1")
	require.NoError(t, err)
	assert.Empty(t, episodes)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTvdbRepository_GetShowsToUpdate(t *testing.T) {
	now := time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC)
	since := now.AddDate(0, 0, -28)
	failing := since.AddDate(0, 0, 7).Unix()

	var calls int32
	repo := newTestTvdb(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		from, _ := strconv.ParseInt(r.URL.Query().Get("fromTime"), 10, 64)
		if from == failing {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		week := (from - since.Unix()) / int64(7*24*time.Hour/time.Second)
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []map[string]interface{}{
			{"id": 500, "lastUpdated": from},
			{"id": 600 + week, "lastUpdated": from},
		}})
	}), now)

	ids, err := repo.GetShowsToUpdate(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	assert.Equal(t, []string{"500", "600", "602", "603"}, ids)
}

func TestTvdbRepository_GetShowsToUpdate_Cancelled(t *testing.T) {
	repo := newTestTvdb(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}})
	}), time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.GetShowsToUpdate(ctx, time.Now().AddDate(0, 0, -14))
	assert.True(t, errors.Is(err, context.Canceled), fmt.Sprintf("got %v", err))
}
