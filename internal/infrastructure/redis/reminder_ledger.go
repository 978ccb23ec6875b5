package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"eventbot/internal/ports/output"
)

const keyPrefix = "eventbot:"

var _ output.ReminderLedger = (*ReminderLedger)(nil)

// ReminderLedger keeps reminder dedup keys in redis so they survive restarts.
type ReminderLedger struct {
	client goredis.Cmdable
}

func NewReminderLedger(client goredis.Cmdable) *ReminderLedger {
	return &ReminderLedger{client: client}
}

func (l *ReminderLedger) MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fresh, err := l.client.SetNX(ctx, keyPrefix+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return fresh, nil
}

// NewClient connects to the redis at url and pings it.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 3

	client := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Println("✅ Redis connecté.")
	return client, nil
}
