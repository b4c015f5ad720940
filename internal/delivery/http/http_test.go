package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mediastat/internal/apperror"
	"mediastat/internal/delivery/websocket"
	"mediastat/internal/dto"
	"mediastat/internal/model"
	"mediastat/internal/service"
	"mediastat/pkg/codec"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
	"mediastat/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	echo        *echo.Echo
	scheduler   *mockScheduler
	statistics  *mockStatisticService
	mediaServer *mockMediaServerService
	settings    *mockSettingsService
	metrics     *metrics.Metrics
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		echo:        echo.New(),
		scheduler:   new(mockScheduler),
		statistics:  new(mockStatisticService),
		mediaServer: new(mockMediaServerService),
		settings:    new(mockSettingsService),
	}
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	f.metrics = m
	svc := &service.Service{
		SchedulerService:   f.scheduler,
		StatisticService:   f.statistics,
		MediaServerService: f.mediaServer,
		SettingsService:    f.settings,
	}
	hub := websocket.NewHub(logger.NewNop(), codec.NewJSON(), m, 16)
	NewHttpAPIHandler(f.echo, goValidator.New(), logger.NewNop(), svc, hub, registry).SetupRoutes()

	t.Cleanup(func() {
		f.scheduler.AssertExpectations(t)
		f.statistics.AssertExpectations(t)
		f.mediaServer.AssertExpectations(t)
		f.settings.AssertExpectations(t)
	})
	return f
}

func (f *handlerFixture) do(method, target, body string) (*httptest.ResponseRecorder, dto.BaseResponse) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	var resp dto.BaseResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func TestGetJobs(t *testing.T) {
	f := newHandlerFixture(t)
	f.scheduler.On("GetAllJobs", mock.Anything).Return([]dto.JobInfo{{ID: "job-1", Key: "MediaSync", State: "Idle"}}, nil)

	rec, resp := f.do(http.MethodGet, "/api/v1/jobs", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, rec.Body.String(), `"key":"MediaSync"`)
}

func TestFireJob(t *testing.T) {
	tests := []struct {
		name        string
		started     bool
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "started", started: true, wantStatus: http.StatusAccepted, wantMessage: "Job started"},
		{name: "already running", started: false, wantStatus: http.StatusOK, wantMessage: "Job is already running"},
		{
			name:       "unknown job",
			err:        apperror.NotFound(apperror.CodeJobNotFound, "job not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   apperror.CodeJobNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newHandlerFixture(t)
			f.scheduler.On("FireJob", mock.Anything, "job-1").Return(tt.started, tt.err)

			rec, resp := f.do(http.MethodPost, "/api/v1/jobs/job-1/fire", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, resp.ErrorCode)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, resp.Message)
			}
		})
	}
}

func TestCancelJob(t *testing.T) {
	f := newHandlerFixture(t)
	f.scheduler.On("CancelJob", "job-1").Return(false, nil)

	rec, resp := f.do(http.MethodPost, "/api/v1/jobs/job-1/cancel", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job is not running", resp.Message)
}

func TestUpdateTriggers(t *testing.T) {
	t.Run("converts and returns saved triggers", func(t *testing.T) {
		f := newHandlerFixture(t)
		interval := utils.DurationToTicks(6 * time.Hour)
		want := []model.TaskTrigger{{Type: model.TriggerTypeInterval, IntervalTicks: &interval}}
		f.scheduler.On("UpdateTriggers", mock.Anything, "job-1", want).Return(want, nil)

		rec, resp := f.do(http.MethodPut, "/api/v1/jobs/job-1/triggers",
			`{"triggers":[{"type":"IntervalTrigger","interval_ticks":`+jsonInt(interval)+`}]}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Triggers updated", resp.Message)
		assert.Contains(t, rec.Body.String(), `"type":"IntervalTrigger"`)
	})

	t.Run("rejects unknown trigger type before the scheduler", func(t *testing.T) {
		f := newHandlerFixture(t)

		rec, _ := f.do(http.MethodPut, "/api/v1/jobs/job-1/triggers", `{"triggers":[{"type":"WeeklyTrigger"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid trigger from scheduler", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.scheduler.On("UpdateTriggers", mock.Anything, "job-1", mock.Anything).
			Return(nil, apperror.Business(apperror.CodeInvalidTrigger, http.StatusBadRequest, errors.New("interval must be positive")))

		rec, resp := f.do(http.MethodPut, "/api/v1/jobs/job-1/triggers", `{"triggers":[{"type":"IntervalTrigger"}]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apperror.CodeInvalidTrigger, resp.ErrorCode)
	})
}

func TestGetJobHistory(t *testing.T) {
	f := newHandlerFixture(t)
	f.scheduler.On("GetJobHistory", mock.Anything, "job-1", 5).Return([]dto.TaskResult{{ID: "r1", Status: "Completed"}}, nil)
	f.scheduler.On("GetJobHistory", mock.Anything, "job-1", 0).Return([]dto.TaskResult{}, nil)

	rec, _ := f.do(http.MethodGet, "/api/v1/jobs/job-1/history?limit=5", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"Completed"`)

	rec, _ = f.do(http.MethodGet, "/api/v1/jobs/job-1/history?limit=0", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMovieStatistics(t *testing.T) {
	f := newHandlerFixture(t)
	f.statistics.On("GetMovieStatistics", mock.Anything, []string{"lib-1", "lib-2"}).
		Return(&dto.MovieStatistics{General: []dto.Card{{Title: "Movies", Value: "3"}}}, nil)

	rec, _ := f.do(http.MethodGet, "/api/v1/statistics/movies?library_ids=lib-1&library_ids=lib-2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Movies"`)
}

func TestGetShowStatistics_PersistenceError(t *testing.T) {
	f := newHandlerFixture(t)
	f.statistics.On("GetShowStatistics", mock.Anything, []string(nil)).
		Return(nil, apperror.Persistence("load shows", errors.New("disk I/O error")))

	rec, _ := f.do(http.MethodGet, "/api/v1/statistics/shows", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetMediaServerToken(t *testing.T) {
	t.Run("logs in", func(t *testing.T) {
		f := newHandlerFixture(t)
		login := dto.MediaServerLoginRequest{UserName: "admin", Password: "secret", Address: "http://emby.local:8096"}
		f.mediaServer.On("GetToken", mock.Anything, login).Return(&dto.MediaServerToken{Token: "abc", IsAdmin: true}, nil)

		rec, resp := f.do(http.MethodPost, "/api/v1/mediaserver/token",
			`{"username":"admin","password":"secret","address":"http://emby.local:8096"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged in", resp.Message)
	})

	t.Run("missing password", func(t *testing.T) {
		f := newHandlerFixture(t)

		rec, _ := f.do(http.MethodPost, "/api/v1/mediaserver/token", `{"username":"admin","address":"http://emby.local:8096"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("token failed", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.mediaServer.On("GetToken", mock.Anything, mock.Anything).
			Return(nil, apperror.Business(apperror.CodeTokenFailed, http.StatusInternalServerError, errors.New("unauthorized")))

		rec, resp := f.do(http.MethodPost, "/api/v1/mediaserver/token",
			`{"username":"admin","password":"wrong","address":"http://emby.local:8096"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, apperror.CodeTokenFailed, resp.ErrorCode)
	})
}

func TestGetMediaServerStatus(t *testing.T) {
	f := newHandlerFixture(t)
	f.mediaServer.On("GetStatus", mock.Anything).Return(&dto.MediaServerStatus{MissedPings: 3}, nil)

	rec, _ := f.do(http.MethodGet, "/api/v1/mediaserver/status", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missed_pings":3`)
}

func TestGetSettings(t *testing.T) {
	f := newHandlerFixture(t)
	f.settings.On("GetUpdate", mock.Anything).Return(model.UpdateSettings{AutoUpdate: true, UpdateTrain: "beta"}, nil)
	f.settings.On("GetTvdb", mock.Anything).Return(model.TvdbSettings{ApiKey: "tvdb-key"}, nil)

	rec, _ := f.do(http.MethodGet, "/api/v1/settings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"auto_update":true`)
	assert.Contains(t, rec.Body.String(), `"update_train":"beta"`)
	assert.Contains(t, rec.Body.String(), `"tvdb_api_key":"tvdb-key"`)
}

func TestUpdateSettings(t *testing.T) {
	lastUpdate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("saves editable fields and keeps job state", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.settings.On("GetUpdate", mock.Anything).Return(model.UpdateSettings{UpdateTrain: "release", UpdateInProgress: true}, nil)
		f.settings.On("GetTvdb", mock.Anything).Return(model.TvdbSettings{ApiKey: "old", LastUpdate: &lastUpdate}, nil)
		f.settings.On("SaveUpdate", mock.Anything,
			model.UpdateSettings{AutoUpdate: true, UpdateTrain: "beta", UpdateInProgress: true}).Return(nil).Once()
		f.settings.On("SaveTvdb", mock.Anything,
			model.TvdbSettings{ApiKey: "new", LastUpdate: &lastUpdate}).Return(nil).Once()

		rec, resp := f.do(http.MethodPut, "/api/v1/settings",
			`{"auto_update":true,"update_train":"beta","tvdb_api_key":"new"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Settings saved", resp.Message)
		assert.Contains(t, rec.Body.String(), `"update_in_progress":true`)
	})

	t.Run("unknown update train", func(t *testing.T) {
		f := newHandlerFixture(t)

		rec, _ := f.do(http.MethodPut, "/api/v1/settings", `{"auto_update":true,"update_train":"nightly"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.settings.AssertNotCalled(t, "SaveUpdate", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.settings.On("GetUpdate", mock.Anything).Return(model.UpdateSettings{}, errors.New("database is locked"))

		rec, _ := f.do(http.MethodPut, "/api/v1/settings", `{"update_train":"release"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	f := newHandlerFixture(t)
	f.metrics.JobFiresDropped.WithLabelValues("MediaSync").Inc()

	rec, _ := f.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mediastat_job_fires_dropped_total{job="MediaSync"} 1`)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
