// internal/infra/database/postgres_reminder_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reminder_notifier/internal/calendar"
	"reminder_notifier/internal/domain/reminder"

	"github.com/lib/pq" // For pq.Array and driver registration
)

type PostgresReminderRepository struct {
	db         *sql.DB
	databaseID string
}

func NewPostgresReminderRepository(db *sql.DB, databaseID string) *PostgresReminderRepository {
	return &PostgresReminderRepository{db: db, databaseID: databaseID}
}

func (r *PostgresReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*reminder.Record, error) {
	query := `SELECT id, database_id, notify_flag, notify_at, notify_days, repeat_policy,
                      title, custom_message, business, last_sent_at
               FROM reminder_records
               WHERE database_id = $1 AND notify_flag = TRUE AND notify_at <= $2
               ORDER BY notify_at, id
               LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, r.databaseID, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying due reminder records: %w", err)
	}
	defer rows.Close()

	records := make([]*reminder.Record, 0)
	for rows.Next() {
		rec := &reminder.Record{}
		var days []string
		var repeat string
		if err := rows.Scan(
			&rec.ID, &rec.DatabaseID, &rec.NotifyFlag, &rec.NotifyTime, pq.Array(&days), &repeat,
			&rec.Title, &rec.CustomMessage, &rec.BusinessLabel, &rec.LastSentTime,
		); err != nil {
			return nil, fmt.Errorf("error scanning reminder record row: %w", err)
		}
		rec.NotifyDays = toWeekdayCodes(days)
		rec.Repeat = reminder.ParseRepeatPolicy(repeat)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder record rows: %w", err)
	}
	return records, nil
}

func (r *PostgresReminderRepository) ApplyUpdate(ctx context.Context, id string, u reminder.Update) error {
	query := `UPDATE reminder_records
               SET notify_flag = $1, last_sent_at = $2, notify_at = COALESCE($3, notify_at), updated_at = $2
               WHERE database_id = $4 AND id = $5`
	var notifyAt any // nil keeps the stored notify time
	if u.NotifyTime.Valid {
		notifyAt = u.NotifyTime.Time.UTC()
	}
	res, err := r.db.ExecContext(ctx, query, u.NotifyFlag, u.LastSentTime.UTC(), notifyAt, r.databaseID, id)
	if err != nil {
		return fmt.Errorf("error updating reminder record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows for reminder record %s: %w", id, err)
	}
	if n == 0 {
		return reminder.ErrRecordNotFound
	}
	return nil
}

// toWeekdayCodes normalizes stored weekday labels. Unknown labels are kept
// verbatim so they never match a real weekday.
func toWeekdayCodes(values []string) []calendar.WeekdayCode {
	if len(values) == 0 {
		return nil
	}
	out := make([]calendar.WeekdayCode, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		code, err := calendar.ParseWeekdayCode(v)
		if err != nil {
			code = calendar.WeekdayCode(v)
		}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
