package output

import (
	"context"

	"eventbot/internal/domain/entities"
)

// EventPatch lists whole-field overwrites for one record. Nil fields are left untouched.
type EventPatch struct {
	Date        *string
	Time        *string
	Description *string
	Host        *string
	Attendees   *entities.AttendeeSet
	Status      *entities.Status
	MarkerID    *string // "" clears the marker
	MessageID   *string
	Capacity    *int // 0 clears the cap
}

// EventRepository stores one record per unique title.
// Get, Update and Delete return domain.ErrEventNotFound for unknown titles;
// Create returns domain.ErrEventExists when the title is taken.
type EventRepository interface {
	Get(ctx context.Context, title string) (*entities.Event, error)
	Create(ctx context.Context, event *entities.Event) error
	Update(ctx context.Context, title string, patch EventPatch) error
	Delete(ctx context.Context, title string) error
	List(ctx context.Context) ([]entities.Event, error)
}

// Apply writes the set fields of p onto e.
func (p EventPatch) Apply(e *entities.Event) {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Host != nil {
		e.Host = *p.Host
	}
	if p.Attendees != nil {
		e.Attendees = p.Attendees.Clone()
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.MarkerID != nil {
		e.MarkerID = *p.MarkerID
	}
	if p.MessageID != nil {
		e.MessageID = *p.MessageID
	}
	if p.Capacity != nil {
		if *p.Capacity <= 0 {
			e.Capacity = nil
		} else {
			n := *p.Capacity
			e.Capacity = &n
		}
	}
}
