package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

// EventRepository keeps events in process memory. It backs DATABASE_URL=memory:// and tests.
type EventRepository struct {
	mu     sync.RWMutex
	events map[string]*entities.Event
	seq    map[string]int
	next   int
}

func NewEventRepository() *EventRepository {
	return &EventRepository{
		events: make(map[string]*entities.Event),
		seq:    make(map[string]int),
	}
}

func (r *EventRepository) Get(_ context.Context, title string) (*entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[title]
	if !ok {
		return nil, fmt.Errorf("get event: %w", domain.ErrEventNotFound)
	}
	return e.Clone(), nil
}

func (r *EventRepository) Create(_ context.Context, event *entities.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.Title]; ok {
		return fmt.Errorf("create event: %w", domain.ErrEventExists)
	}
	r.events[event.Title] = event.Clone()
	r.next++
	r.seq[event.Title] = r.next
	return nil
}

func (r *EventRepository) Update(_ context.Context, title string, patch output.EventPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[title]
	if !ok {
		return fmt.Errorf("update event: %w", domain.ErrEventNotFound)
	}
	patch.Apply(e)
	return nil
}

func (r *EventRepository) Delete(_ context.Context, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[title]; !ok {
		return fmt.Errorf("delete event: %w", domain.ErrEventNotFound)
	}
	delete(r.events, title)
	delete(r.seq, title)
	return nil
}

// List returns events in creation order.
func (r *EventRepository) List(_ context.Context) ([]entities.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, *e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return r.seq[out[i].Title] < r.seq[out[j].Title]
	})
	return out, nil
}
