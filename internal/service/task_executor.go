package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mediastat/config"
	"mediastat/internal/apperror"
	"mediastat/internal/job"
	"mediastat/internal/model"
	"mediastat/internal/repository"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
	"mediastat/pkg/utils"

	"github.com/google/uuid"
)

// Causes attached to an execution context when it is cut short.
var (
	ErrJobCancelled     = errors.New("job cancelled")
	ErrJobTimeout       = errors.New("job timed out")
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

type TaskExecutor interface {
	// Execute runs j once and returns its persisted result. Dispose is always
	// called before Execute returns.
	Execute(ctx context.Context, j job.Job, reporter job.Reporter) (*model.TaskResult, error)
}

type taskExecutor struct {
	cfg            *config.Config
	log            *logger.Logger
	taskResultRepo repository.TaskResultRepository
	metrics        *metrics.Metrics
	now            func() time.Time
}

func NewTaskExecutor(cfg *config.Config, log *logger.Logger, taskResultRepo repository.TaskResultRepository, m *metrics.Metrics) TaskExecutor {
	return &taskExecutor{
		cfg:            cfg,
		log:            log,
		taskResultRepo: taskResultRepo,
		metrics:        m,
		now:            utils.TimeNowUTC,
	}
}

func (t *taskExecutor) Execute(ctx context.Context, j job.Job, reporter job.Reporter) (*model.TaskResult, error) {
	def := j.Definition()
	defer j.Dispose()

	result := &model.TaskResult{
		ID:           uuid.NewString(),
		JobID:        def.ID,
		Key:          def.Key,
		Name:         def.Title,
		StartTimeUtc: t.now(),
		Status:       model.TaskStatusRunning,
	}
	if err := t.taskResultRepo.Create(ctx, result); err != nil {
		t.log.ErrorContext(ctx, "Failed to create task result", logger.ErrorField(err), logger.StringField("job_key", def.Key))
		return nil, apperror.Persistence("create task result", err)
	}

	t.log.InfoContext(ctx, "Processing job", logger.StringField("job_key", def.Key), logger.StringField("result_id", result.ID))
	running := t.metrics.JobsRunning.WithLabelValues(def.Key)
	running.Inc()
	defer running.Dec()

	reporter.Progress(0)
	runErr := utils.CatchPanic(func() error {
		return j.Run(ctx, reporter)
	})

	result.EndTimeUtc = sql.NullTime{Time: t.now(), Valid: true}
	if runErr == nil {
		result.Status = model.TaskStatusCompleted
		reporter.Progress(100)
	} else {
		t.fail(ctx, j, reporter, result, runErr)
	}

	t.metrics.JobExecutions.WithLabelValues(def.Key, string(result.Status)).Inc()
	t.metrics.JobDuration.WithLabelValues(def.Key).Observe(result.Duration().Seconds())

	if err := t.taskResultRepo.Update(context.WithoutCancel(ctx), result); err != nil {
		t.log.ErrorContext(ctx, "Failed to update task result", logger.ErrorField(err), logger.StringField("job_key", def.Key))
		return result, apperror.Persistence("update task result", err)
	}

	t.log.InfoContext(ctx, "Job finished",
		logger.StringField("job_key", def.Key),
		logger.StringField("status", string(result.Status)),
		logger.DurationField("duration", result.Duration()),
	)
	return result, nil
}

func (t *taskExecutor) fail(ctx context.Context, j job.Job, reporter job.Reporter, result *model.TaskResult, runErr error) {
	def := j.Definition()
	result.Status = statusOf(ctx)

	switch result.Status {
	case model.TaskStatusCancelled:
		result.ErrorMessage = sql.NullString{String: ErrJobCancelled.Error(), Valid: true}
		reporter.Warn(fmt.Sprintf("%s was cancelled", def.Title))
	case model.TaskStatusAborted:
		result.ErrorMessage = sql.NullString{String: context.Cause(ctx).Error(), Valid: true}
		reporter.Warn(fmt.Sprintf("%s was aborted: %v", def.Title, context.Cause(ctx)))
	default:
		result.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
		long := fmt.Sprintf("%+v", runErr)
		var panicErr *utils.PanicError
		if errors.As(runErr, &panicErr) {
			long = fmt.Sprintf("%v\n%s", panicErr.Value, panicErr.Stack)
		}
		result.LongErrorMessage = sql.NullString{String: long, Valid: true}
		reporter.Error(fmt.Sprintf("%s failed: %v", def.Title, runErr))
		t.log.ErrorContextWithAlert(ctx, "Failed to execute job",
			logger.ErrorField(runErr),
			logger.StringField("job_key", def.Key),
			logger.StringField("result_id", result.ID),
		)
	}

	failCtx := context.WithoutCancel(ctx)
	if err := utils.CatchPanic(func() error {
		j.OnFail(failCtx)
		return nil
	}); err != nil {
		t.log.ErrorContext(ctx, "OnFail panicked", logger.ErrorField(err), logger.StringField("job_key", def.Key))
	}
}

// statusOf maps the reason an execution context ended to a task status.
// A job that returns an error while its context is still live has failed.
func statusOf(ctx context.Context) model.TaskStatus {
	if ctx.Err() == nil {
		return model.TaskStatusFailed
	}
	if errors.Is(context.Cause(ctx), ErrJobCancelled) {
		return model.TaskStatusCancelled
	}
	return model.TaskStatusAborted
}
