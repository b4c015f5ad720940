package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"mediastat/config"
	"mediastat/internal/dto"
	"mediastat/internal/job"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/cache"
	"mediastat/pkg/database"
	"mediastat/pkg/lock"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestConfig() *config.Config {
	return &config.Config{
		App:       config.App{Name: "mediastat", Version: "1.0.0"},
		Cache:     config.Cache{SysParamExpDuration: time.Minute},
		Scheduler: config.Scheduler{PollInterval: time.Hour, EventBuffer: 16, HistoryLimit: 20, DisableStartup: true},
	}
}

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

	return repository.NewRepository(newTestConfig(), cache.NewCache(time.Minute, time.Minute), db.DB, logger.NewNop())
}

type fakeNotifier struct {
	mu          sync.Mutex
	progress    map[string][]float64
	logs        map[string][]string
	jobInfos    []dto.JobInfo
	missedPings []int
	updateState []bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{progress: make(map[string][]float64), logs: make(map[string][]string)}
}

func (n *fakeNotifier) BroadcastProgress(jobID string, percent float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress[jobID] = append(n.progress[jobID], percent)
}

func (n *fakeNotifier) BroadcastLog(jobID, line string, severity dto.LogSeverity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.logs[jobID] = append(n.logs[jobID], string(severity)+": "+line)
}

func (n *fakeNotifier) BroadcastConnectionStatus(missedPings int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.missedPings = append(n.missedPings, missedPings)
}

func (n *fakeNotifier) BroadcastUpdateState(inProgress bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updateState = append(n.updateState, inProgress)
}

func (n *fakeNotifier) BroadcastJobInfo(info dto.JobInfo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobInfos = append(n.jobInfos, info)
}

func (n *fakeNotifier) progressOf(jobID string) []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]float64(nil), n.progress[jobID]...)
}

func (n *fakeNotifier) logsOf(jobID string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.logs[jobID]...)
}

// scriptedJob runs fn and records the order of its lifecycle calls.
type scriptedJob struct {
	def model.JobDefinition
	fn  func(ctx context.Context, r job.Reporter) error

	mu    sync.Mutex
	calls []string
}

func newScriptedJob(key string, fn func(ctx context.Context, r job.Reporter) error, triggers ...model.TaskTrigger) *scriptedJob {
	return &scriptedJob{
		def: model.JobDefinition{
			ID:              uuid.NewString(),
			Key:             key,
			Title:           key + " job",
			Category:        model.JobCategoryMaintenance,
			Prefix:          key,
			QuietPeriod:     time.Minute,
			DefaultTriggers: triggers,
		},
		fn: fn,
	}
}

func (j *scriptedJob) record(call string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls = append(j.calls, call)
}

func (j *scriptedJob) Calls() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

func (j *scriptedJob) Definition() model.JobDefinition { return j.def }

func (j *scriptedJob) Run(ctx context.Context, r job.Reporter) error {
	j.record("run")
	if j.fn == nil {
		return nil
	}
	return j.fn(ctx, r)
}

func (j *scriptedJob) OnFail(context.Context) { j.record("onfail") }

func (j *scriptedJob) Dispose() { j.record("dispose") }

type schedulerFixture struct {
	scheduler *schedulerService
	repo      *repository.Repository
	notifier  *fakeNotifier
	locker    *lock.MemoryLocker
	metrics   *metrics.Metrics
}

func newSchedulerFixture(t *testing.T, cfg *config.Config, jobs ...job.Job) *schedulerFixture {
	t.Helper()
	repo := newTestRepository(t)
	notifier := newFakeNotifier()
	locker := lock.NewMemoryLocker()
	m := metrics.New(prometheus.NewRegistry())

	executor := NewTaskExecutor(cfg, logger.NewNop(), repo.TaskResultRepo, m)
	s := NewSchedulerService(cfg, logger.NewNop(), repo.TriggerRepo, repo.TaskResultRepo, executor, locker, notifier, m)
	require.NoError(t, s.Register(jobs...))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return &schedulerFixture{scheduler: s, repo: repo, notifier: notifier, locker: locker, metrics: m}
}

// lastResult waits for every execution to finish and returns the newest result of j.
func (f *schedulerFixture) lastResult(t *testing.T, j job.Job) *model.TaskResult {
	t.Helper()
	f.scheduler.wg.Wait()
	result, err := f.repo.TaskResultRepo.GetLatestByJobID(context.Background(), j.Definition().ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}
