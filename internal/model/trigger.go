package model

import (
	"errors"
	"fmt"
	"time"

	"mediastat/pkg/utils"
)

type TriggerType string

const (
	TriggerTypeInterval TriggerType = "IntervalTrigger"
	TriggerTypeDaily    TriggerType = "DailyTrigger"
	TriggerTypeStartup  TriggerType = "StartupTrigger"
	TriggerTypeNone     TriggerType = "None"
)

const ticksPerDay = int64(24 * time.Hour / 100)

type TaskTrigger struct {
	ID             uint        `gorm:"primaryKey"`
	TaskKey        string      `gorm:"type:varchar(100);not null;index"`
	Type           TriggerType `gorm:"type:varchar(50);not null"`
	TimeOfDayTicks *int64
	IntervalTicks  *int64
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (TaskTrigger) TableName() string {
	return "task_triggers"
}

func DailyTrigger(timeOfDay time.Duration) TaskTrigger {
	return TaskTrigger{Type: TriggerTypeDaily, TimeOfDayTicks: utils.ToPointer(utils.DurationToTicks(timeOfDay))}
}

func IntervalTrigger(interval time.Duration) TaskTrigger {
	return TaskTrigger{Type: TriggerTypeInterval, IntervalTicks: utils.ToPointer(utils.DurationToTicks(interval))}
}

func StartupTrigger() TaskTrigger {
	return TaskTrigger{Type: TriggerTypeStartup}
}

// TimeOfDay is the offset from midnight for daily triggers.
func (t TaskTrigger) TimeOfDay() time.Duration {
	if t.TimeOfDayTicks == nil {
		return 0
	}
	return utils.TicksToDuration(*t.TimeOfDayTicks)
}

func (t TaskTrigger) Interval() time.Duration {
	if t.IntervalTicks == nil {
		return 0
	}
	return utils.TicksToDuration(*t.IntervalTicks)
}

func (t TaskTrigger) Validate() error {
	switch t.Type {
	case TriggerTypeDaily:
		if t.TimeOfDayTicks == nil {
			return errors.New("daily trigger requires time of day")
		}
		if *t.TimeOfDayTicks < 0 || *t.TimeOfDayTicks >= ticksPerDay {
			return fmt.Errorf("time of day %d ticks is outside a day", *t.TimeOfDayTicks)
		}
	case TriggerTypeInterval:
		if t.IntervalTicks == nil {
			return errors.New("interval trigger requires an interval")
		}
		if *t.IntervalTicks > utils.MaxTicks {
			return fmt.Errorf("interval %d ticks is out of range", *t.IntervalTicks)
		}
		if t.Interval() < time.Second {
			return fmt.Errorf("interval %s is shorter than one second", t.Interval())
		}
	case TriggerTypeStartup, TriggerTypeNone:
	default:
		return fmt.Errorf("unknown trigger type %q", t.Type)
	}
	return nil
}
