package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"mediastat/config"
	"mediastat/internal/apperror"
	"mediastat/internal/dto"
	"mediastat/internal/job"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/common"
	"mediastat/pkg/lock"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
	"mediastat/pkg/utils"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	Register(jobs ...job.Job) error
	Start(ctx context.Context) error
	// Stop cancels running executions and waits for them until ctx expires.
	Stop(ctx context.Context) error
	// FireJob starts id in the background. It returns false when the job is already running.
	FireJob(ctx context.Context, id string) (bool, error)
	CancelJob(id string) (bool, error)
	GetAllJobs(ctx context.Context) ([]dto.JobInfo, error)
	UpdateTriggers(ctx context.Context, id string, triggers []model.TaskTrigger) ([]model.TaskTrigger, error)
	GetJobHistory(ctx context.Context, id string, limit int) ([]dto.TaskResult, error)
}

type execution struct {
	cancel   context.CancelCauseFunc
	reporter *executionReporter
}

type scheduledTrigger struct {
	trigger  model.TaskTrigger
	schedule cron.Schedule
	next     time.Time
}

type schedulerService struct {
	cfg            *config.Config
	log            *logger.Logger
	cronParser     cron.Parser
	triggerRepo    repository.TriggerRepository
	taskResultRepo repository.TaskResultRepository
	taskExecutor   TaskExecutor
	locker         lock.Locker
	notifier       Notifier
	metrics        *metrics.Metrics
	now            func() time.Time

	baseCtx  context.Context
	stopBase context.CancelCauseFunc
	wg       sync.WaitGroup

	mu       sync.Mutex
	cron     *cron.Cron
	stopped  bool
	jobs     map[string]job.Job
	order    []string
	running  map[string]*execution
	triggers map[string][]*scheduledTrigger
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	triggerRepo repository.TriggerRepository,
	taskResultRepo repository.TaskResultRepository,
	taskExecutor TaskExecutor,
	locker lock.Locker,
	notifier Notifier,
	m *metrics.Metrics,
) *schedulerService {
	baseCtx, stopBase := context.WithCancelCause(context.Background())
	return &schedulerService{
		cfg:            cfg,
		log:            log.With(logger.StringField("prefix", common.LOG_PREFIX_SCHEDULER)),
		cronParser:     cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		triggerRepo:    triggerRepo,
		taskResultRepo: taskResultRepo,
		taskExecutor:   taskExecutor,
		locker:         locker,
		notifier:       notifier,
		metrics:        m,
		now:            time.Now,
		baseCtx:        baseCtx,
		stopBase:       stopBase,
		jobs:           make(map[string]job.Job),
		running:        make(map[string]*execution),
		triggers:       make(map[string][]*scheduledTrigger),
	}
}

func (s *schedulerService) Register(jobs ...job.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range jobs {
		def := j.Definition()
		if _, ok := s.jobs[def.ID]; ok {
			return fmt.Errorf("job %s (%s) is already registered", def.Key, def.ID)
		}
		s.jobs[def.ID] = j
		s.order = append(s.order, def.ID)
	}
	return nil
}

func (s *schedulerService) Start(ctx context.Context) error {
	if err := s.loadTriggers(ctx); err != nil {
		return err
	}

	pollInterval := s.cfg.Scheduler.PollInterval
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", pollInterval), s.checkTriggers); err != nil {
		return fmt.Errorf("failed to schedule trigger poll: %w", err)
	}

	s.mu.Lock()
	s.cron = c
	s.mu.Unlock()
	c.Start()

	s.log.InfoContext(ctx, "Scheduler started",
		logger.IntField("job_count", len(s.order)),
		logger.DurationField("poll_interval", pollInterval),
	)

	if !s.cfg.Scheduler.DisableStartup {
		s.fireStartupJobs()
	}
	return nil
}

// loadTriggers seeds default triggers and builds the schedules of every registered job.
func (s *schedulerService) loadTriggers(ctx context.Context) error {
	s.mu.Lock()
	jobs := make([]job.Job, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, s.jobs[id])
	}
	s.mu.Unlock()

	for _, j := range jobs {
		def := j.Definition()
		seeded, err := s.triggerRepo.SeedDefaults(ctx, def.Key, def.DefaultTriggers)
		if err != nil {
			return fmt.Errorf("failed to seed triggers of %s: %w", def.Key, err)
		}
		if seeded {
			s.log.InfoContext(ctx, "Seeded default triggers", logger.StringField("job_key", def.Key))
		}

		triggers, err := s.triggerRepo.GetByKey(ctx, def.Key)
		if err != nil {
			return fmt.Errorf("failed to load triggers of %s: %w", def.Key, err)
		}
		if err := s.setTriggers(def.ID, triggers); err != nil {
			return err
		}
	}
	return nil
}

func (s *schedulerService) setTriggers(jobID string, triggers []model.TaskTrigger) error {
	now := s.now()
	scheduled := make([]*scheduledTrigger, 0, len(triggers))
	for _, t := range triggers {
		schedule, err := s.scheduleOf(t)
		if err != nil {
			return err
		}
		st := &scheduledTrigger{trigger: t, schedule: schedule}
		if schedule != nil {
			st.next = schedule.Next(now)
		}
		scheduled = append(scheduled, st)
	}

	s.mu.Lock()
	s.triggers[jobID] = scheduled
	s.mu.Unlock()
	return nil
}

// scheduleOf returns nil for triggers that are not time based.
func (s *schedulerService) scheduleOf(t model.TaskTrigger) (cron.Schedule, error) {
	switch t.Type {
	case model.TriggerTypeDaily:
		tod := t.TimeOfDay()
		hour := int(tod / time.Hour)
		minute := int(tod % time.Hour / time.Minute)
		second := int(tod % time.Minute / time.Second)
		schedule, err := s.cronParser.Parse(fmt.Sprintf("%d %d %d * * *", second, minute, hour))
		if err != nil {
			return nil, fmt.Errorf("failed to parse daily trigger: %w", err)
		}
		return schedule, nil
	case model.TriggerTypeInterval:
		return cron.Every(t.Interval()), nil
	}
	return nil, nil
}

// checkTriggers fires every job with a trigger that is due.
func (s *schedulerService) checkTriggers() {
	now := s.now()
	var due []string

	s.mu.Lock()
	for _, id := range s.order {
		fire := false
		for _, st := range s.triggers[id] {
			if st.schedule == nil || now.Before(st.next) {
				continue
			}
			fire = true
			st.next = st.schedule.Next(now)
		}
		if fire {
			due = append(due, id)
		}
	}
	s.mu.Unlock()

	for _, id := range due {
		if _, err := s.FireJob(s.baseCtx, id); err != nil {
			s.log.ErrorContext(s.baseCtx, "Failed to fire job", logger.ErrorField(err), logger.StringField("job_id", id))
		}
	}
}

func (s *schedulerService) fireStartupJobs() {
	var startup []string
	s.mu.Lock()
	for _, id := range s.order {
		for _, st := range s.triggers[id] {
			if st.trigger.Type == model.TriggerTypeStartup {
				startup = append(startup, id)
				break
			}
		}
	}
	s.mu.Unlock()

	for _, id := range startup {
		if _, err := s.FireJob(s.baseCtx, id); err != nil {
			s.log.ErrorContext(s.baseCtx, "Failed to fire startup job", logger.ErrorField(err), logger.StringField("job_id", id))
		}
	}
}

func (s *schedulerService) getJob(id string) (job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, apperror.NotFound(apperror.CodeJobNotFound, fmt.Sprintf("job %s not found", id))
	}
	return j, nil
}

func (s *schedulerService) FireJob(ctx context.Context, id string) (bool, error) {
	j, err := s.getJob(id)
	if err != nil {
		return false, err
	}
	def := j.Definition()

	lease, ok, err := s.locker.TryLock(ctx, fmt.Sprintf(common.KEY_JOB_LOCK, def.ID), def.QuietPeriod)
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock of %s: %w", def.Key, err)
	}
	if !ok {
		s.metrics.JobFiresDropped.WithLabelValues(def.Key).Inc()
		s.log.InfoContext(ctx, "Job is already running, fire dropped", logger.StringField("job_key", def.Key))
		return false, nil
	}

	execCtx, cancel := context.WithCancelCause(s.baseCtx)
	stopTimeout := context.CancelFunc(func() {})
	if s.cfg.Scheduler.JobTimeout > 0 {
		execCtx, stopTimeout = context.WithTimeoutCause(execCtx, s.cfg.Scheduler.JobTimeout, ErrJobTimeout)
	}
	reporter := newExecutionReporter(def.ID, def.Prefix, s.cfg.Scheduler.EventBuffer, s.notifier, s.log)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		stopTimeout()
		cancel(ErrSchedulerStopped)
		reporter.Close()
		lease.Release()
		return false, ErrSchedulerStopped
	}
	s.running[def.ID] = &execution{cancel: cancel, reporter: reporter}
	s.wg.Add(1)
	s.mu.Unlock()

	s.notifier.BroadcastJobInfo(s.jobInfo(def, model.JobStateRunning, 0, nil))

	utils.GoSafe(func() {
		var result *model.TaskResult
		defer func() {
			stopTimeout()
			cancel(nil)
			reporter.Close()

			s.mu.Lock()
			delete(s.running, def.ID)
			s.mu.Unlock()
			lease.Release()

			s.notifier.BroadcastJobInfo(s.jobInfo(def, model.JobStateIdle, reporter.Percent(), result))
			s.wg.Done()
		}()

		var err error
		result, err = s.taskExecutor.Execute(execCtx, j, reporter)
		if err != nil {
			s.log.ErrorContextWithAlert(execCtx, "Failed to execute task", logger.ErrorField(err), logger.StringField("job_key", def.Key))
		}
	})
	return true, nil
}

func (s *schedulerService) CancelJob(id string) (bool, error) {
	if _, err := s.getJob(id); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	exec, ok := s.running[id]
	if !ok {
		return false, nil
	}
	exec.cancel(ErrJobCancelled)
	return true, nil
}

func (s *schedulerService) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	c := s.cron
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.stopBase(ErrSchedulerStopped)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.InfoContext(ctx, "Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.log.WarnContext(ctx, "Scheduler stop timed out with jobs still running", logger.ErrorField(ctx.Err()))
		return ctx.Err()
	}
}

func (s *schedulerService) GetAllJobs(ctx context.Context) ([]dto.JobInfo, error) {
	s.mu.Lock()
	ids := append([]string(nil), s.order...)
	s.mu.Unlock()

	infos := make([]dto.JobInfo, 0, len(ids))
	for _, id := range ids {
		j, err := s.getJob(id)
		if err != nil {
			return nil, err
		}
		def := j.Definition()

		last, err := s.taskResultRepo.GetLatestByJobID(ctx, def.ID)
		if err != nil {
			return nil, apperror.Persistence("get latest task result", err)
		}

		state, percent := model.JobStateIdle, 0.0
		s.mu.Lock()
		if exec, ok := s.running[def.ID]; ok {
			state, percent = model.JobStateRunning, exec.reporter.Percent()
		}
		s.mu.Unlock()

		infos = append(infos, s.jobInfo(def, state, percent, last))
	}
	return infos, nil
}

func (s *schedulerService) jobInfo(def model.JobDefinition, state model.JobState, percent float64, last *model.TaskResult) dto.JobInfo {
	s.mu.Lock()
	scheduled := s.triggers[def.ID]
	triggers := make([]dto.TriggerInfo, 0, len(scheduled))
	for _, st := range scheduled {
		triggers = append(triggers, ToTriggerInfo(st.trigger))
	}
	s.mu.Unlock()

	info := dto.JobInfo{
		ID:          def.ID,
		Key:         def.Key,
		Title:       def.Title,
		Description: def.Description,
		Category:    def.Category,
		State:       string(state),
		Progress:    percent,
		Triggers:    triggers,
	}
	if last != nil {
		info.LastResult = utils.ToPointer(toTaskResultDTO(*last))
	}
	return info
}

func (s *schedulerService) UpdateTriggers(ctx context.Context, id string, triggers []model.TaskTrigger) ([]model.TaskTrigger, error) {
	j, err := s.getJob(id)
	if err != nil {
		return nil, err
	}
	def := j.Definition()

	for _, t := range triggers {
		if err := t.Validate(); err != nil {
			return nil, apperror.Business(apperror.CodeInvalidTrigger, http.StatusBadRequest, err)
		}
	}

	saved, err := s.triggerRepo.ReplaceForKey(ctx, def.Key, triggers)
	if err != nil {
		return nil, apperror.Persistence("replace triggers", err)
	}
	if err := s.setTriggers(def.ID, saved); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "Triggers updated", logger.StringField("job_key", def.Key), logger.IntField("trigger_count", len(saved)))
	return saved, nil
}

func (s *schedulerService) GetJobHistory(ctx context.Context, id string, limit int) ([]dto.TaskResult, error) {
	j, err := s.getJob(id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.cfg.Scheduler.HistoryLimit
	}

	results, err := s.taskResultRepo.ListByJobID(ctx, j.Definition().ID, limit)
	if err != nil {
		return nil, apperror.Persistence("list task results", err)
	}
	history := make([]dto.TaskResult, 0, len(results))
	for _, r := range results {
		history = append(history, toTaskResultDTO(r))
	}
	return history, nil
}

func ToTriggerInfo(t model.TaskTrigger) dto.TriggerInfo {
	return dto.TriggerInfo{
		Type:           string(t.Type),
		TimeOfDayTicks: t.TimeOfDayTicks,
		IntervalTicks:  t.IntervalTicks,
	}
}

// ToTaskTrigger converts a requested trigger to its stored form.
func ToTaskTrigger(t dto.TriggerInfo) model.TaskTrigger {
	return model.TaskTrigger{
		Type:           model.TriggerType(t.Type),
		TimeOfDayTicks: t.TimeOfDayTicks,
		IntervalTicks:  t.IntervalTicks,
	}
}

func toTaskResultDTO(r model.TaskResult) dto.TaskResult {
	out := dto.TaskResult{
		ID:               r.ID,
		Key:              r.Key,
		Name:             r.Name,
		Status:           string(r.Status),
		StartTimeUtc:     r.StartTimeUtc,
		RunTimeSeconds:   r.Duration().Seconds(),
		ErrorMessage:     r.ErrorMessage.String,
		LongErrorMessage: r.LongErrorMessage.String,
	}
	if r.EndTimeUtc.Valid {
		out.EndTimeUtc = utils.ToPointer(r.EndTimeUtc.Time)
	}
	return out
}
