// internal/app/formatter.go
package app

import (
	"database/sql"
	"fmt"
	"html"
	"strings"
	"time"

	"reminder_notifier/internal/domain/reminder"
)

// Placeholders substituted for absent display fields.
const (
	PlaceholderTitle    = "(untitled)"
	PlaceholderBusiness = "(none)"
	PlaceholderTime     = "(unscheduled)"
)

// defaultMessageTemplate is rendered in Telegram HTML parse mode.
const defaultMessageTemplate = "🔔 <b>Reminder: %s</b>\n" +
	"Business: %s\n" +
	"Scheduled: %s\n\n" +
	"<i>This reminder was sent automatically. Edit the record to change or stop it.</i>"

// FormatMessage returns the record's custom message verbatim when it has
// one, otherwise the default message. It never fails.
func FormatMessage(rec *reminder.Record, loc *time.Location) string {
	if custom := textOrDefault(rec.CustomMessage, ""); custom != "" {
		return custom
	}
	return fmt.Sprintf(defaultMessageTemplate,
		html.EscapeString(textOrDefault(rec.Title, PlaceholderTitle)),
		html.EscapeString(textOrDefault(rec.BusinessLabel, PlaceholderBusiness)),
		formatNotifyTime(rec.NotifyTime, loc),
	)
}

// textOrDefault substitutes def for a NULL or blank value.
func textOrDefault(v sql.NullString, def string) string {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return def
	}
	return v.String
}

func formatNotifyTime(v sql.NullTime, loc *time.Location) string {
	if !v.Valid {
		return PlaceholderTime
	}
	if loc == nil {
		loc = time.UTC
	}
	return v.Time.In(loc).Format(time.RFC3339)
}
