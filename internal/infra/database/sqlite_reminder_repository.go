package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"reminder_notifier/internal/domain/reminder"
)

// SQLiteReminderRepository stores reminder records in a local SQLite file.
// Timestamps are unix seconds (UTC) so range predicates compare numerically,
// and notify_days is a comma-separated list.
type SQLiteReminderRepository struct {
	db         *sql.DB
	databaseID string
}

func NewSQLiteReminderRepository(db *sql.DB, databaseID string) *SQLiteReminderRepository {
	return &SQLiteReminderRepository{db: db, databaseID: databaseID}
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS reminder_records (
    id             TEXT    NOT NULL,
    database_id    TEXT    NOT NULL,
    notify_flag    INTEGER NOT NULL DEFAULT 0,
    notify_at      INTEGER,
    notify_days    TEXT    NOT NULL DEFAULT '',
    repeat_policy  TEXT    NOT NULL DEFAULT '',
    title          TEXT,
    custom_message TEXT,
    business       TEXT,
    last_sent_at   INTEGER,
    updated_at     INTEGER,
    PRIMARY KEY (database_id, id)
);
CREATE INDEX IF NOT EXISTS reminder_records_due_idx ON reminder_records (database_id, notify_flag, notify_at);`

// Migrate creates the table if it does not exist.
func (r *SQLiteReminderRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("error creating sqlite schema: %w", err)
	}
	return nil
}

func (r *SQLiteReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*reminder.Record, error) {
	query := `SELECT id, database_id, notify_flag, notify_at, notify_days, repeat_policy,
                     title, custom_message, business, last_sent_at
              FROM reminder_records
              WHERE database_id = ? AND notify_flag = 1 AND notify_at <= ?
              ORDER BY notify_at, id
              LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, r.databaseID, now.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying due reminder records: %w", err)
	}
	defer rows.Close()

	records := make([]*reminder.Record, 0)
	for rows.Next() {
		rec := &reminder.Record{}
		var notifyAt, lastSent sql.NullInt64
		var days, repeat string
		if err := rows.Scan(
			&rec.ID, &rec.DatabaseID, &rec.NotifyFlag, &notifyAt, &days, &repeat,
			&rec.Title, &rec.CustomMessage, &rec.BusinessLabel, &lastSent,
		); err != nil {
			return nil, fmt.Errorf("error scanning reminder record row: %w", err)
		}
		rec.NotifyTime = unixToNullTime(notifyAt)
		rec.LastSentTime = unixToNullTime(lastSent)
		rec.NotifyDays = toWeekdayCodes(strings.Split(days, ","))
		rec.Repeat = reminder.ParseRepeatPolicy(repeat)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder record rows: %w", err)
	}
	return records, nil
}

func (r *SQLiteReminderRepository) ApplyUpdate(ctx context.Context, id string, u reminder.Update) error {
	query := `UPDATE reminder_records
              SET notify_flag = ?, last_sent_at = ?, notify_at = COALESCE(?, notify_at), updated_at = ?
              WHERE database_id = ? AND id = ?`
	var notifyAt sql.NullInt64
	if u.NotifyTime.Valid {
		notifyAt = sql.NullInt64{Int64: u.NotifyTime.Time.Unix(), Valid: true}
	}
	// The run's clock: updated_at is the send time, not a fresh clock read.
	sentAt := u.LastSentTime.Unix()
	res, err := r.db.ExecContext(ctx, query, u.NotifyFlag, sentAt, notifyAt, sentAt, r.databaseID, id)
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

func unixToNullTime(v sql.NullInt64) sql.NullTime {
	if !v.Valid {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: time.Unix(v.Int64, 0).UTC(), Valid: true}
}
