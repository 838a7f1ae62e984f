// internal/domain/reminder/repository.go
package reminder

import (
	"context"
	"errors"
	"time"
)

// ErrRecordNotFound is returned by ApplyUpdate when no record has the given ID.
var ErrRecordNotFound = errors.New("reminder record not found")

// Repository defines the reads and partial writes the notifier performs on
// the record store. It never creates or deletes records.
type Repository interface {
	// ListDue returns armed records whose notify time is at or before now,
	// at most limit of them, in store order.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Record, error)
	// ApplyUpdate writes the flag, last-sent time and (if valid) notify time.
	ApplyUpdate(ctx context.Context, id string, u Update) error
}
