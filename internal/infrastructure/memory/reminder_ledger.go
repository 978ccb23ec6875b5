package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"eventbot/internal/ports/output"
)

var _ output.ReminderLedger = (*ReminderLedger)(nil)

const ledgerSweepInterval = 10 * time.Minute

// ReminderLedger is the single-process ledger used when no redis is configured.
type ReminderLedger struct {
	sent *cache.Cache
}

func NewReminderLedger() *ReminderLedger {
	return &ReminderLedger{sent: cache.New(cache.NoExpiration, ledgerSweepInterval)}
}

// MarkSent records key for ttl. Add refuses keys that are present and unexpired.
func (l *ReminderLedger) MarkSent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if err := l.sent.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}
