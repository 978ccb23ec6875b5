package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderLedger_MarkSent_Fresh(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ledger := NewReminderLedger(db)

	mock.ExpectSetNX("eventbot:reminder:Raid Night:1792526400", 1, 2*time.Hour).SetVal(true)

	fresh, err := ledger.MarkSent(context.Background(), "reminder:Raid Night:1792526400", 2*time.Hour)

	require.NoError(t, err)
	assert.True(t, fresh)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderLedger_MarkSent_AlreadySent(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ledger := NewReminderLedger(db)

	mock.ExpectSetNX("eventbot:k", 1, time.Hour).SetVal(false)

	fresh, err := ledger.MarkSent(context.Background(), "k", time.Hour)

	require.NoError(t, err)
	assert.False(t, fresh)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderLedger_MarkSent_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ledger := NewReminderLedger(db)

	mock.ExpectSetNX("eventbot:k", 1, time.Hour).SetErr(errors.New("connection refused"))

	_, err := ledger.MarkSent(context.Background(), "k", time.Hour)

	assert.Error(t, err)
}
