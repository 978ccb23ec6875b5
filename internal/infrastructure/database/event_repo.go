package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/infrastructure/database/sqlc_generated"
	"eventbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository implements output.EventRepository using sqlc + pgx.
type EventRepository struct {
	q *sqlc_generated.Queries
}

func NewEventRepository(q *sqlc_generated.Queries) *EventRepository {
	return &EventRepository{q: q}
}

func (r *EventRepository) Get(ctx context.Context, title string) (*entities.Event, error) {
	row, err := r.q.GetEvent(ctx, title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", domain.ErrEventNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	e, err := eventToDomain(row)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

func (r *EventRepository) Create(ctx context.Context, event *entities.Event) error {
	params, err := eventToCreateParams(event)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	n, err := r.q.CreateEvent(ctx, params)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("create event: %w", domain.ErrEventExists)
	}
	return nil
}

func (r *EventRepository) Update(ctx context.Context, title string, patch output.EventPatch) error {
	params, err := patchToParams(title, patch)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := r.q.UpdateEvent(ctx, params)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update event: %w", domain.ErrEventNotFound)
	}
	return nil
}

func patchToParams(title string, p output.EventPatch) (sqlc_generated.UpdateEventParams, error) {
	params := sqlc_generated.UpdateEventParams{
		Title:       title,
		Date:        textOrNull(p.Date),
		Time:        textOrNull(p.Time),
		Description: textOrNull(p.Description),
		Host:        textOrNull(p.Host),
		MessageID:   textOrNull(p.MessageID),
	}
	if p.Attendees != nil {
		params.Attendees = pgtypeText(encodeAttendees(*p.Attendees))
	}
	if p.Status != nil {
		params.Status = pgtypeText(string(*p.Status))
	}
	if p.MarkerID != nil {
		roleID, err := snowflakeToInt8(*p.MarkerID)
		if err != nil {
			return params, fmt.Errorf("role id: %w", err)
		}
		params.SetRoleID = true
		params.RoleID = roleID
	}
	if p.Capacity != nil {
		params.SetMaxAttendees = true
		params.MaxAttendees = capacityToInt4(p.Capacity)
	}
	return params, nil
}

func (r *EventRepository) Delete(ctx context.Context, title string) error {
	n, err := r.q.DeleteEvent(ctx, title)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete event: %w", domain.ErrEventNotFound)
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context) ([]entities.Event, error) {
	rows, err := r.q.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	out := make([]entities.Event, 0, len(rows))
	for i := range rows {
		e, err := eventToDomain(rows[i])
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
