package input

import (
	"context"
	"time"

	"eventbot/internal/domain/entities"
)

// EditField names an event field editable after creation.
type EditField string

const (
	FieldTime        EditField = "time"
	FieldDate        EditField = "date"
	FieldDescription EditField = "description"
	FieldCapacity    EditField = "max"
)

type CreateEventInput struct {
	Title       string
	Date        string // DD-MM-YYYY
	Time        string // HH:MM
	Description string
	Capacity    int // 0 = unlimited
	ChannelID   string
}

// DeleteSummary reports what a bulk delete removed.
type DeleteSummary struct {
	Events   []string
	Markers  int
	Messages int
}

// EventLifecycle is the single entry point for every event transition, shared by all front ends
// and the scheduler.
type EventLifecycle interface {
	CreateEvent(ctx context.Context, actor entities.Actor, in CreateEventInput) (*entities.Event, error)
	JoinEvent(ctx context.Context, actor entities.Actor, title string) (*entities.Event, error)
	LeaveEvent(ctx context.Context, actor entities.Actor, title string) (*entities.Event, error)
	TransferHost(ctx context.Context, actor entities.Actor, title, newHost string) (*entities.Event, error)
	RemoveParticipant(ctx context.Context, actor entities.Actor, title, member string) (*entities.Event, error)
	EditEvent(ctx context.Context, actor entities.Actor, title string, field EditField, value string) (*entities.Event, error)
	CompleteEvent(ctx context.Context, actor entities.Actor, title string) (*entities.Event, error)
	DeleteEvent(ctx context.Context, actor entities.Actor, title string) error
	DeleteAllEvents(ctx context.Context, actor entities.Actor) (DeleteSummary, error)

	PromoteToOngoing(ctx context.Context, title string, now time.Time) (bool, error)
	RemindStartingSoon(ctx context.Context, title string) (bool, error)

	GetEvent(ctx context.Context, title string) (*entities.Event, error)
	ListEvents(ctx context.Context) ([]entities.Event, error)
}
