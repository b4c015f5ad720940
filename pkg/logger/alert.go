package logger

import (
	"context"
	"time"

	"mediastat/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap/zapcore"
)

// AlertPayload is the body posted to the alert webhook.
type AlertPayload struct {
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields"`
	Time    time.Time              `json:"time"`
}

type AlertCore struct {
	core     zapcore.Core
	client   *resty.Client
	url      string
	minLevel zapcore.Level
	fields   []zapcore.Field
}

func NewAlertCore(core zapcore.Core, url string, timeout time.Duration, minLevel zapcore.Level) *AlertCore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AlertCore{
		core:     core,
		client:   resty.New().SetTimeout(timeout),
		url:      url,
		minLevel: minLevel,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		client:   a.client,
		url:      a.url,
		minLevel: a.minLevel,
		fields:   append(append([]zapcore.Field{}, a.fields...), fields...),
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && shouldAlert(fields) {
		all := append(append([]zapcore.Field{}, a.fields...), fields...)
		go a.send(entry, all)
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func shouldAlert(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

func (a *AlertCore) send(entry zapcore.Entry, fields []zapcore.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	payload := AlertPayload{
		Level:   entry.Level.CapitalString(),
		Message: entry.Message,
		Fields:  enc.Fields,
		Time:    entry.Time,
	}

	// best effort, a failed alert must not recurse into the logger
	_, _ = a.client.R().
		SetContext(context.Background()).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(a.url)
}
