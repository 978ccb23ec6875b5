package output

import (
	"context"
	"time"
)

// ReminderLedger remembers which reminders were already sent, for a bounded window.
type ReminderLedger interface {
	// MarkSent records key and reports whether it was absent, i.e. whether the caller should send.
	MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
