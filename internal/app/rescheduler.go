package app

import (
	"database/sql"
	"time"

	"reminder_notifier/internal/calendar"
	"reminder_notifier/internal/domain/reminder"
)

// Rescheduler decides what happens to a record after it fired: it is either
// disabled (flag cleared) or re-armed on the next business day at the same
// time of day.
type Rescheduler struct {
	cal         *calendar.Calendar
	repeatAware bool
}

// NewRescheduler builds a Rescheduler. With repeatAware false every record is
// disabled after firing, whatever its repeat policy.
func NewRescheduler(cal *calendar.Calendar, repeatAware bool) *Rescheduler {
	return &Rescheduler{cal: cal, repeatAware: repeatAware}
}

func (r *Rescheduler) Reschedule(rec *reminder.Record, now time.Time) reminder.Update {
	if !r.repeatAware || !rec.Repeat.IsRepeating() || !rec.NotifyTime.Valid {
		return reminder.Update{NotifyFlag: false, LastSentTime: now}
	}
	return reminder.Update{
		NotifyFlag:   true,
		NotifyTime:   sql.NullTime{Time: r.nextAfter(rec.NotifyTime.Time, now), Valid: true},
		LastSentTime: now,
	}
}

// nextAfter returns the next business-day slot of t strictly after now.
// A slot that fell behind by several days is first moved forward by whole
// days to an occurrence at or before now. One day of slack absorbs the
// 23h and 25h days around daylight saving changes.
func (r *Rescheduler) nextAfter(t, now time.Time) time.Time {
	next := r.cal.NextBusinessDay(t)
	if next.After(now) {
		return next
	}
	behind := int(now.Sub(t)/calendar.Day) - 1
	if behind < 0 {
		behind = 0
	}
	next = r.cal.NextBusinessDay(r.cal.AddDays(t, behind))
	for !next.After(now) {
		next = r.cal.NextBusinessDay(next)
	}
	return next
}
