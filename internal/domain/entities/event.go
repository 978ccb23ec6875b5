package entities

import (
	"time"

	"eventbot/pkg/tz"
)

type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
)

func (s Status) rank() int {
	switch s {
	case StatusUpcoming:
		return 1
	case StatusOngoing:
		return 2
	case StatusCompleted:
		return 3
	}
	return 0
}

// Valid reports whether s is one of the three lifecycle states.
func (s Status) Valid() bool { return s.rank() > 0 }

// CanTransitionTo reports whether next is strictly later in Upcoming → Ongoing → Completed.
// Ongoing may be skipped: a host can complete an event that never started.
func (s Status) CanTransitionTo(next Status) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// Event is one scheduled event, keyed by its title.
type Event struct {
	Title       string
	Date        string // DD-MM-YYYY
	Time        string // HH:MM UTC
	Description string
	Host        string
	Attendees   AttendeeSet
	MarkerID    string // per-event role; empty once deleted, recreated on next join
	ChannelID   string
	MessageID   string // status card; empty until first render
	Status      Status
	CreatedAt   time.Time
	Capacity    *int // nil = unlimited
}

// StartInstant parses Date and Time in the canonical zone.
func (e *Event) StartInstant() (time.Time, error) {
	return tz.StartInstant(e.Date, e.Time)
}

// Members is the attendee list with the host synthesized in front when not stored.
func (e *Event) Members() []string {
	return e.Attendees.WithHost(e.Host)
}

// HeadCount is the host-inclusive number of participants.
func (e *Event) HeadCount() int {
	return len(e.Members())
}

// IsMember reports whether userID is the host or a stored attendee.
func (e *Event) IsMember(userID string) bool {
	return userID == e.Host || e.Attendees.Contains(userID)
}

// IsFull reports whether a capacity is set and the host-inclusive count reached it.
func (e *Event) IsFull() bool {
	return e.Capacity != nil && e.HeadCount() >= *e.Capacity
}

// CanManage reports whether actor may run host-gated actions on this event.
func (e *Event) CanManage(actor Actor) bool {
	return actor.IsAdmin || actor.UserID == e.Host
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (e *Event) Clone() *Event {
	c := *e
	c.Attendees = e.Attendees.Clone()
	if e.Capacity != nil {
		n := *e.Capacity
		c.Capacity = &n
	}
	return &c
}

// Actor is the user initiating a command.
type Actor struct {
	UserID  string
	IsAdmin bool
}
