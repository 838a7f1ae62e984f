// internal/domain/reminder/record.go
package reminder

import (
	"database/sql"
	"time"

	"reminder_notifier/internal/calendar"
)

// Record is one schedulable reminder row owned by an operator.
// Corresponds to the 'reminder_records' table (see migrations/).
type Record struct {
	ID            string
	DatabaseID    string
	NotifyFlag    bool
	NotifyTime    sql.NullTime           // When the reminder fires, compared in UTC
	NotifyDays    []calendar.WeekdayCode // Optional weekday restriction
	Repeat        RepeatPolicy
	Title         sql.NullString
	CustomMessage sql.NullString
	BusinessLabel sql.NullString
	LastSentTime  sql.NullTime
}

// FiresOn reports whether the record may fire on the given weekday.
// An empty NotifyDays set means every day.
func (r *Record) FiresOn(day calendar.WeekdayCode) bool {
	if len(r.NotifyDays) == 0 {
		return true
	}
	for _, d := range r.NotifyDays {
		if d == day {
			return true
		}
	}
	return false
}

// Update is the partial write applied after a successful send.
// NotifyTime is only written when Valid.
type Update struct {
	NotifyFlag   bool
	NotifyTime   sql.NullTime
	LastSentTime time.Time
}

// Rearmed reports whether the update keeps the record armed for another run.
func (u Update) Rearmed() bool {
	return u.NotifyFlag && u.NotifyTime.Valid
}
