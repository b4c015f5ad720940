package job

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mediastat/config"
	"mediastat/internal/dto"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/cache"
	"mediastat/pkg/database"
	"mediastat/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reportedLine struct {
	severity string
	line     string
}

type recordingReporter struct {
	mu       sync.Mutex
	progress []float64
	lines    []reportedLine
}

func (r *recordingReporter) Progress(percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, percent)
}

func (r *recordingReporter) add(severity, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, reportedLine{severity: severity, line: line})
}

func (r *recordingReporter) Info(line string)  { r.add("info", line) }
func (r *recordingReporter) Warn(line string)  { r.add("warning", line) }
func (r *recordingReporter) Error(line string) { r.add("error", line) }

func (r *recordingReporter) count(severity string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if l.severity == severity {
			n++
		}
	}
	return n
}

type fakeBroadcaster struct {
	mu          sync.Mutex
	missedPings []int
	updateState []bool
}

func (b *fakeBroadcaster) BroadcastConnectionStatus(missedPings int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missedPings = append(b.missedPings, missedPings)
}

func (b *fakeBroadcaster) BroadcastUpdateState(inProgress bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateState = append(b.updateState, inProgress)
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) GetMediaServer(ctx context.Context) (model.MediaServerSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.MediaServerSettings), args.Error(1)
}

func (m *mockSettings) GetTvdb(ctx context.Context) (model.TvdbSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.TvdbSettings), args.Error(1)
}

func (m *mockSettings) SaveTvdb(ctx context.Context, settings model.TvdbSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *mockSettings) GetUpdate(ctx context.Context) (model.UpdateSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.UpdateSettings), args.Error(1)
}

func (m *mockSettings) SaveUpdate(ctx context.Context, settings model.UpdateSettings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *mockSettings) GetMediaServerStatus(ctx context.Context) (model.MediaServerStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.MediaServerStatus), args.Error(1)
}

func (m *mockSettings) SaveMediaServerStatus(ctx context.Context, status model.MediaServerStatus) error {
	return m.Called(ctx, status).Error(0)
}

type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) CheckForUpdate(ctx context.Context) (*dto.UpdateResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UpdateResult), args.Error(1)
}

func (m *mockUpdater) DownloadUpdate(ctx context.Context, update *dto.UpdateResult) (string, error) {
	args := m.Called(ctx, update)
	return args.String(0), args.Error(1)
}

type mockMediaServerClient struct {
	mock.Mock
	closed int
}

func (m *mockMediaServerClient) Authenticate(ctx context.Context, userName, password string) (*dto.AuthenticationResult, error) {
	args := m.Called(ctx, userName, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuthenticationResult), args.Error(1)
}

func (m *mockMediaServerClient) GetServerInfo(ctx context.Context) (*dto.SystemInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SystemInfo), args.Error(1)
}

func (m *mockMediaServerClient) ListPlugins(ctx context.Context) ([]dto.PluginInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.PluginInfo), args.Error(1)
}

func (m *mockMediaServerClient) ListDrives(ctx context.Context) ([]dto.FileSystemEntryInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.FileSystemEntryInfo), args.Error(1)
}

func (m *mockMediaServerClient) ListUsers(ctx context.Context) ([]dto.UserDto, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.UserDto), args.Error(1)
}

func (m *mockMediaServerClient) Ping(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockMediaServerClient) ListLibraries(ctx context.Context) ([]dto.BaseItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]dto.BaseItem), args.Error(1)
}

func (m *mockMediaServerClient) ListItems(ctx context.Context, libraryID string, itemType string) ([]dto.BaseItem, error) {
	args := m.Called(ctx, libraryID, itemType)
	return args.Get(0).([]dto.BaseItem), args.Error(1)
}

func (m *mockMediaServerClient) CountEpisodes(ctx context.Context, showID string) (int, error) {
	args := m.Called(ctx, showID)
	return args.Int(0), args.Error(1)
}

func (m *mockMediaServerClient) Close() {
	m.closed++
}

type staticClientFactory struct {
	client repository.MediaServerClient
}

func (f staticClientFactory) New(address, token string) repository.MediaServerClient {
	return f.client
}

type mockTvdb struct {
	mock.Mock
}

func (m *mockTvdb) Login(ctx context.Context, apiKey string) error {
	return m.Called(ctx, apiKey).Error(0)
}

func (m *mockTvdb) GetEpisodes(ctx context.Context, seriesID string) ([]dto.VirtualEpisode, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.VirtualEpisode), args.Error(1)
}

func (m *mockTvdb) GetShowsToUpdate(ctx context.Context, since time.Time) ([]string, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]string), args.Error(1)
}

var configuredServer = model.MediaServerSettings{ServerAddress: "http://emby:8096", AccessToken: "token"}

func newTestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	db, err := database.NewDB(config.Database{
		Driver:   database.DriverSQLite,
		Path:     fmt.Sprintf("file:%s?mode=memory", uuid.NewString()),
		LogLevel: "Silent",
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.AutoMigrate(db.DB))

	cfg := &config.Config{Cache: config.Cache{SysParamExpDuration: time.Minute}}
	return repository.NewRepository(cfg, cache.NewCache(time.Minute, time.Minute), db.DB, logger.NewNop())
}
