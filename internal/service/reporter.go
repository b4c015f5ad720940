package service

import (
	"context"
	"sync"

	"mediastat/internal/dto"
	"mediastat/pkg/logger"

	"go.uber.org/zap"
)

const defaultEventBuffer = 64

type reporterEvent struct {
	progress bool
	percent  float64
	line     string
	severity dto.LogSeverity
}

// executionReporter forwards one execution's progress and log lines to the
// notifier. Events are queued and drained by a single goroutine so observers
// see them in the order they were reported.
type executionReporter struct {
	jobID    string
	prefix   string
	log      *logger.Logger
	notifier Notifier

	mu      sync.Mutex
	percent float64
	closed  bool
	events  chan reporterEvent
	done    chan struct{}
}

func newExecutionReporter(jobID, prefix string, buffer int, notifier Notifier, log *logger.Logger) *executionReporter {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	r := &executionReporter{
		jobID:    jobID,
		prefix:   prefix,
		log:      log,
		notifier: notifier,
		events:   make(chan reporterEvent, buffer),
		done:     make(chan struct{}),
	}
	go r.drain()
	return r
}

func (r *executionReporter) drain() {
	defer close(r.done)
	for ev := range r.events {
		if ev.progress {
			r.notifier.BroadcastProgress(r.jobID, ev.percent)
			continue
		}
		r.notifier.BroadcastLog(r.jobID, ev.line, ev.severity)
	}
}

func (r *executionReporter) Progress(percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if percent < r.percent {
		percent = r.percent
	}
	r.percent = percent
	r.events <- reporterEvent{progress: true, percent: percent}
}

func (r *executionReporter) Info(line string) {
	r.logLine(line, dto.LogSeverityInfo)
}

func (r *executionReporter) Warn(line string) {
	r.logLine(line, dto.LogSeverityWarning)
}

func (r *executionReporter) Error(line string) {
	r.logLine(line, dto.LogSeverityError)
}

func (r *executionReporter) logLine(line string, severity dto.LogSeverity) {
	fields := []zap.Field{logger.StringField("job_prefix", r.prefix), logger.StringField("job_id", r.jobID)}
	switch severity {
	case dto.LogSeverityWarning:
		r.log.WarnContext(context.Background(), line, fields...)
	case dto.LogSeverityError:
		r.log.ErrorContext(context.Background(), line, fields...)
	default:
		r.log.InfoContext(context.Background(), line, fields...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.events <- reporterEvent{line: line, severity: severity}
}

// Percent is the last reported progress.
func (r *executionReporter) Percent() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.percent
}

// Close stops accepting events and waits until the queued ones are delivered.
func (r *executionReporter) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()
	<-r.done
}
