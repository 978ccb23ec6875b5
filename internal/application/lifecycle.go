package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/moby/locker"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
	"eventbot/internal/ports/output"
	"eventbot/pkg/tz"
)

const (
	minDescriptionLength = 5
	// maxTitleLength keeps "complete:"+title within Discord's 100-character custom IDs and
	// role names.
	maxTitleLength = 90
	// maxCapacity is the largest value the max_attendees int4 column holds.
	maxCapacity = math.MaxInt32
)

var _ input.EventLifecycle = (*LifecycleService)(nil)

// LifecycleService applies every event transition. All writes to one title are serialized;
// gateway side effects are logged and discarded, the repository decides success.
type LifecycleService struct {
	repo    output.EventRepository
	gateway output.Gateway
	metrics output.Metrics
	locks   *locker.Locker // one lock per title
	now     func() time.Time
}

type Option func(*LifecycleService)

func WithClock(now func() time.Time) Option {
	return func(s *LifecycleService) { s.now = now }
}

func WithMetrics(m output.Metrics) Option {
	return func(s *LifecycleService) { s.metrics = m }
}

func NewLifecycleService(repo output.EventRepository, gateway output.Gateway, opts ...Option) *LifecycleService {
	s := &LifecycleService{
		repo:    repo,
		gateway: gateway,
		metrics: output.NopMetrics{},
		locks:   locker.New(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LifecycleService) CreateEvent(ctx context.Context, actor entities.Actor, in input.CreateEventInput) (_ *entities.Event, err error) {
	defer func() { s.observe("create", err) }()

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, domain.ErrTitleTooLong
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	clock, err := normalizeTime(in.Time)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	if in.Capacity < 0 {
		return nil, domain.ErrNegativeCapacity
	}
	if in.Capacity > maxCapacity {
		return nil, domain.ErrInvalidCapacity
	}

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	if _, err := s.repo.Get(ctx, title); err == nil {
		return nil, domain.ErrEventExists
	} else if !errors.Is(err, domain.ErrEventNotFound) {
		return nil, fmt.Errorf("create event: %w", err)
	}

	event := &entities.Event{
		Title:       title,
		Date:        date,
		Time:        clock,
		Description: description,
		Host:        actor.UserID,
		Attendees:   entities.NewAttendeeSet(actor.UserID),
		ChannelID:   in.ChannelID,
		Status:      entities.StatusUpcoming,
		CreatedAt:   s.now().In(tz.Canonical).Truncate(time.Second),
	}
	if in.Capacity > 0 {
		n := in.Capacity
		event.Capacity = &n
	}

	markerID, mErr := s.gateway.CreateMarker(ctx, title)
	if mErr == nil {
		event.MarkerID = markerID
	}
	s.sideEffect("create marker", title, mErr)

	if err := s.repo.Create(ctx, event); err != nil {
		if event.MarkerID != "" {
			s.sideEffect("delete marker", title, s.gateway.DeleteMarker(ctx, event.MarkerID))
		}
		return nil, fmt.Errorf("create event: %w", err)
	}

	if event.MarkerID != "" {
		s.sideEffect("grant marker", title, s.gateway.GrantMarker(ctx, event.Host, event.MarkerID))
	}
	s.refreshCard(ctx, event)
	return event.Clone(), nil
}

func (s *LifecycleService) JoinEvent(ctx context.Context, actor entities.Actor, title string) (_ *entities.Event, err error) {
	defer func() { s.observe("join", err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return nil, err
	}
	if event.IsMember(actor.UserID) {
		return nil, domain.ErrAlreadyAttending
	}
	if event.IsFull() {
		return nil, domain.ErrEventFull
	}

	event.Attendees.Add(actor.UserID)
	if err := s.repo.Update(ctx, title, output.EventPatch{Attendees: &event.Attendees}); err != nil {
		return nil, fmt.Errorf("join event: %w", err)
	}

	s.grantWithRecovery(ctx, event, actor.UserID)
	s.refreshCard(ctx, event)
	return event.Clone(), nil
}

func (s *LifecycleService) LeaveEvent(ctx context.Context, actor entities.Actor, title string) (_ *entities.Event, err error) {
	defer func() { s.observe("leave", err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return nil, err
	}
	if actor.UserID == event.Host {
		return nil, domain.ErrHostCannotLeave
	}
	if !event.Attendees.Contains(actor.UserID) {
		return nil, domain.ErrNotAttending
	}

	event.Attendees.Remove(actor.UserID)
	if err := s.repo.Update(ctx, title, output.EventPatch{Attendees: &event.Attendees}); err != nil {
		return nil, fmt.Errorf("leave event: %w", err)
	}

	if event.MarkerID != "" {
		s.sideEffect("revoke marker", title, s.gateway.RevokeMarker(ctx, actor.UserID, event.MarkerID))
		if event.Attendees.Len() == 0 {
			s.deleteMarkerIfUnheld(ctx, event, true)
		}
	}
	s.refreshCard(ctx, event)
	return event.Clone(), nil
}

func (s *LifecycleService) TransferHost(ctx context.Context, actor entities.Actor, title, newHost string) (_ *entities.Event, err error) {
	defer func() { s.observe("transfer_host", err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return nil, err
	}
	if !event.CanManage(actor) {
		return nil, domain.ErrNotHostOrAdmin
	}
	if newHost == event.Host {
		return nil, domain.ErrAlreadyHost
	}
	if !event.Attendees.Contains(newHost) {
		return nil, domain.ErrParticipantNotFound
	}

	oldHost := event.Host
	if err := s.repo.Update(ctx, title, output.EventPatch{Host: &newHost}); err != nil {
		return nil, fmt.Errorf("transfer host: %w", err)
	}
	event.Host = newHost

	if event.MarkerID != "" {
		s.sideEffect("revoke marker", title, s.gateway.RevokeMarker(ctx, oldHost, event.MarkerID))
	}
	s.grantWithRecovery(ctx, event, newHost)
	s.refreshCard(ctx, event)
	return event.Clone(), nil
}

func (s *LifecycleService) RemoveParticipant(ctx context.Context, actor entities.Actor, title, member string) (_ *entities.Event, err error) {
	defer func() { s.observe("remove_participant", err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return nil, err
	}
	if !event.CanManage(actor) {
		return nil, domain.ErrNotHostOrAdmin
	}
	if member == event.Host {
		return nil, domain.ErrHostCannotLeave
	}
	if !event.Attendees.Contains(member) {
		return nil, domain.ErrParticipantNotFound
	}

	event.Attendees.Remove(member)
	if err := s.repo.Update(ctx, title, output.EventPatch{Attendees: &event.Attendees}); err != nil {
		return nil, fmt.Errorf("remove participant: %w", err)
	}

	if event.MarkerID != "" {
		s.sideEffect("revoke marker", title, s.gateway.RevokeMarker(ctx, member, event.MarkerID))
	}
	s.refreshCard(ctx, event)
	return event.Clone(), nil
}

func (s *LifecycleService) EditEvent(ctx context.Context, actor entities.Actor, title string, field input.EditField, value string) (_ *entities.Event, err error) {
	defer func() { s.observe("edit_"+string(field), err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return nil, err
	}
	if !event.CanManage(actor) {
		return nil, domain.ErrNotHostOrAdmin
	}

	patch, err := editPatch(field, value)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, title, patch); err != nil {
		return nil, fmt.Errorf("edit event %s: %w", field, err)
	}
	patch.Apply(event)

	s.refreshCard(ctx, event)
	return event.Clone(), nil
}

func editPatch(field input.EditField, value string) (output.EventPatch, error) {
	value = strings.TrimSpace(value)
	switch field {
	case input.FieldTime:
		clock, err := normalizeTime(value)
		if err != nil {
			return output.EventPatch{}, err
		}
		return output.EventPatch{Time: &clock}, nil
	case input.FieldDate:
		date, err := normalizeDate(value)
		if err != nil {
			return output.EventPatch{}, err
		}
		return output.EventPatch{Date: &date}, nil
	case input.FieldDescription:
		if utf8.RuneCountInString(value) < minDescriptionLength {
			return output.EventPatch{}, domain.ErrDescriptionShort
		}
		return output.EventPatch{Description: &value}, nil
	case input.FieldCapacity:
		n, err := strconv.Atoi(value)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return output.EventPatch{}, domain.ErrInvalidCapacity
		}
		if n < 0 {
			return output.EventPatch{}, domain.ErrNegativeCapacity
		}
		if err != nil || n > maxCapacity {
			return output.EventPatch{}, domain.ErrInvalidCapacity
		}
		return output.EventPatch{Capacity: &n}, nil
	}
	return output.EventPatch{}, domain.ErrUnknownField
}

func (s *LifecycleService) CompleteEvent(ctx context.Context, actor entities.Actor, title string) (_ *entities.Event, err error) {
	defer func() { s.observe("complete", err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return nil, err
	}
	if !event.CanManage(actor) {
		return nil, domain.ErrNotHostOrAdmin
	}
	if event.Status == entities.StatusCompleted {
		// an earlier completion stopped before the row was removed
		return s.finishCompletion(ctx, event)
	}
	if !event.Status.CanTransitionTo(entities.StatusCompleted) {
		return nil, domain.ErrAlreadyCompleted
	}

	completed := entities.StatusCompleted
	if err := s.repo.Update(ctx, title, output.EventPatch{Status: &completed}); err != nil {
		return nil, fmt.Errorf("complete event: %w", err)
	}
	event.Status = completed

	if event.MarkerID != "" {
		s.sideEffect("announce concluded", title, s.gateway.Announce(ctx, output.Announcement{
			Kind:      output.AnnounceConcluded,
			ChannelID: event.ChannelID,
			MarkerID:  event.MarkerID,
			Title:     title,
		}))
		for _, userID := range event.Members() {
			s.sideEffect("revoke marker", title, s.gateway.RevokeMarker(ctx, userID, event.MarkerID))
		}
	}
	return s.finishCompletion(ctx, event)
}

// finishCompletion drops the marker once unheld, freezes the card and removes the row.
func (s *LifecycleService) finishCompletion(ctx context.Context, event *entities.Event) (*entities.Event, error) {
	if event.MarkerID != "" {
		s.deleteMarkerIfUnheld(ctx, event, false)
	}

	_, cardErr := s.gateway.RenderCard(ctx, event, true)
	s.sideEffect("render final card", event.Title, cardErr)

	if err := s.repo.Delete(ctx, event.Title); err != nil {
		return nil, fmt.Errorf("complete event: %w", err)
	}
	return event.Clone(), nil
}

func (s *LifecycleService) DeleteEvent(ctx context.Context, actor entities.Actor, title string) (err error) {
	defer func() { s.observe("delete", err) }()

	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return err
	}
	if !event.CanManage(actor) {
		return domain.ErrNotHostOrAdmin
	}
	s.purge(ctx, event)
	if err := s.repo.Delete(ctx, title); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *LifecycleService) DeleteAllEvents(ctx context.Context, actor entities.Actor) (summary input.DeleteSummary, err error) {
	defer func() { s.observe("delete_all", err) }()

	if !actor.IsAdmin {
		return summary, domain.ErrNotAdmin
	}
	events, err := s.repo.List(ctx)
	if err != nil {
		return summary, fmt.Errorf("delete all events: %w", err)
	}
	for _, listed := range events {
		s.deleteForBulk(ctx, listed.Title, &summary)
	}
	return summary, nil
}

func (s *LifecycleService) deleteForBulk(ctx context.Context, title string, summary *input.DeleteSummary) {
	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.repo.Get(ctx, title)
	if err != nil {
		return // completed or deleted since listing
	}
	markerDeleted, cardDeleted := s.purge(ctx, event)
	if err := s.repo.Delete(ctx, title); err != nil {
		log.Printf("❌ Suppression de l'événement %q: %v", title, err)
		return
	}
	summary.Events = append(summary.Events, title)
	if markerDeleted {
		summary.Markers++
	}
	if cardDeleted {
		summary.Messages++
	}
}

// purge removes the event's marker and status card.
func (s *LifecycleService) purge(ctx context.Context, event *entities.Event) (markerDeleted, cardDeleted bool) {
	if event.MarkerID != "" {
		err := s.gateway.DeleteMarker(ctx, event.MarkerID)
		s.sideEffect("delete marker", event.Title, err)
		markerDeleted = err == nil
	}
	if event.MessageID != "" {
		err := s.gateway.DeleteCard(ctx, event.ChannelID, event.MessageID)
		s.sideEffect("delete card", event.Title, err)
		cardDeleted = err == nil
	}
	return markerDeleted, cardDeleted
}

// PromoteToOngoing moves an Upcoming event whose start instant has passed to Ongoing.
// It reports false without error when the event is not due, already promoted, or its
// stored date/time does not parse.
func (s *LifecycleService) PromoteToOngoing(ctx context.Context, title string, now time.Time) (bool, error) {
	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return false, err
	}
	if event.Status != entities.StatusUpcoming {
		return false, nil
	}
	start, err := event.StartInstant()
	if err != nil || now.Before(start) {
		return false, nil
	}

	ongoing := entities.StatusOngoing
	if err := s.repo.Update(ctx, title, output.EventPatch{Status: &ongoing}); err != nil {
		s.observe("promote", err)
		return false, fmt.Errorf("promote event: %w", err)
	}
	event.Status = ongoing
	s.observe("promote", nil)

	if event.MarkerID != "" {
		s.sideEffect("announce started", title, s.gateway.Announce(ctx, output.Announcement{
			Kind:      output.AnnounceStarted,
			ChannelID: event.ChannelID,
			MarkerID:  event.MarkerID,
			Title:     title,
		}))
	}
	s.refreshCard(ctx, event)
	return true, nil
}

// RemindStartingSoon announces that an Upcoming event starts soon. It reports whether the
// announcement went out; events without a marker have nobody to notify.
func (s *LifecycleService) RemindStartingSoon(ctx context.Context, title string) (bool, error) {
	s.locks.Lock(title)
	defer s.locks.Unlock(title)

	event, err := s.load(ctx, title)
	if err != nil {
		return false, err
	}
	if event.Status != entities.StatusUpcoming || event.MarkerID == "" {
		return false, nil
	}
	err = s.gateway.Announce(ctx, output.Announcement{
		Kind:      output.AnnounceReminder,
		ChannelID: event.ChannelID,
		MarkerID:  event.MarkerID,
		Title:     title,
	})
	s.sideEffect("announce reminder", title, err)
	return err == nil, nil
}

func (s *LifecycleService) GetEvent(ctx context.Context, title string) (*entities.Event, error) {
	return s.load(ctx, title)
}

func (s *LifecycleService) ListEvents(ctx context.Context) ([]entities.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *LifecycleService) load(ctx context.Context, title string) (*entities.Event, error) {
	event, err := s.repo.Get(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("load event %q: %w", title, err)
	}
	return event, nil
}

// grantWithRecovery grants the event marker to userID, recreating the marker first when it
// is missing or turns out to have been deleted on the platform.
func (s *LifecycleService) grantWithRecovery(ctx context.Context, event *entities.Event, userID string) {
	if event.MarkerID != "" {
		err := s.gateway.GrantMarker(ctx, userID, event.MarkerID)
		if !errors.Is(err, output.ErrGatewayNotFound) {
			s.sideEffect("grant marker", event.Title, err)
			return
		}
		log.Printf("⚠️ Rôle introuvable pour l'événement %q, recréation", event.Title)
		event.MarkerID = ""
	}
	if !s.recreateMarker(ctx, event) {
		return
	}
	s.sideEffect("grant marker", event.Title, s.gateway.GrantMarker(ctx, userID, event.MarkerID))
}

func (s *LifecycleService) recreateMarker(ctx context.Context, event *entities.Event) bool {
	markerID, err := s.gateway.CreateMarker(ctx, event.Title)
	if err != nil {
		s.sideEffect("create marker", event.Title, err)
		return false
	}
	if err := s.repo.Update(ctx, event.Title, output.EventPatch{MarkerID: &markerID}); err != nil {
		log.Printf("❌ Enregistrement du rôle recréé (event=%q): %v", event.Title, err)
		s.sideEffect("delete marker", event.Title, s.gateway.DeleteMarker(ctx, markerID))
		return false
	}
	event.MarkerID = markerID
	log.Printf("♻️ Rôle recréé pour l'événement %q", event.Title)
	return true
}

// deleteMarkerIfUnheld deletes the marker once nobody holds it. When the count cannot be read
// the marker is kept. persist clears the stored id; completion skips it as the row goes away.
func (s *LifecycleService) deleteMarkerIfUnheld(ctx context.Context, event *entities.Event, persist bool) {
	holders, err := s.gateway.MarkerHolderCount(ctx, event.MarkerID)
	if err != nil {
		s.sideEffect("count marker holders", event.Title, err)
		return
	}
	if holders > 0 {
		log.Printf("ℹ️ Rôle de %q conservé (%d membres)", event.Title, holders)
		return
	}
	if err := s.gateway.DeleteMarker(ctx, event.MarkerID); err != nil && !errors.Is(err, output.ErrGatewayNotFound) {
		s.sideEffect("delete marker", event.Title, err)
		return
	}
	if persist {
		cleared := ""
		if err := s.repo.Update(ctx, event.Title, output.EventPatch{MarkerID: &cleared}); err != nil {
			log.Printf("❌ Effacement du rôle supprimé (event=%q): %v", event.Title, err)
			return
		}
	}
	event.MarkerID = ""
	log.Printf("🗑 Rôle de %q supprimé, plus aucun membre", event.Title)
}

// refreshCard re-renders the status card and persists the message id when it changed.
func (s *LifecycleService) refreshCard(ctx context.Context, event *entities.Event) {
	messageID, err := s.gateway.RenderCard(ctx, event, false)
	if err != nil {
		s.sideEffect("render card", event.Title, err)
		return
	}
	if messageID == "" || messageID == event.MessageID {
		return
	}
	if err := s.repo.Update(ctx, event.Title, output.EventPatch{MessageID: &messageID}); err != nil {
		log.Printf("❌ Enregistrement de la carte (event=%q): %v", event.Title, err)
		return
	}
	event.MessageID = messageID
}

// sideEffect logs and counts a failed gateway call. The transition it belongs to still succeeds.
func (s *LifecycleService) sideEffect(op, title string, err error) {
	if err == nil {
		return
	}
	s.metrics.ObserveSideEffectFailure(op)
	if output.IsSoftFailure(err) {
		log.Printf("ℹ️ Effet de bord %q sans objet (event=%q): %v", op, title, err)
		return
	}
	log.Printf("⚠️ Effet de bord %q ignoré (event=%q): %v", op, title, err)
}

func (s *LifecycleService) observe(transition string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	s.metrics.ObserveTransition(transition, outcome)
}

func normalizeDate(value string) (string, error) {
	d, err := time.ParseInLocation(tz.DateLayout, strings.TrimSpace(value), tz.Canonical)
	if err != nil {
		return "", domain.ErrInvalidDate
	}
	return d.Format(tz.DateLayout), nil
}

// normalizeTime accepts HH:MM, optionally suffixed with UTC, and returns the stored form.
func normalizeTime(value string) (string, error) {
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "UTC"))
	t, err := time.ParseInLocation(tz.ClockLayout, value, tz.Canonical)
	if err != nil {
		return "", domain.ErrInvalidTime
	}
	return t.Format(tz.TimeLayout), nil
}
