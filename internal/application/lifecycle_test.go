package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/infrastructure/memory"
	"eventbot/internal/ports/input"
	"eventbot/internal/ports/output"
)

var (
	fixedNow = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

	hostH  = entities.Actor{UserID: "H"}
	userA  = entities.Actor{UserID: "A"}
	userB  = entities.Actor{UserID: "B"}
	userC  = entities.Actor{UserID: "C"}
	admin  = entities.Actor{UserID: "ADMIN", IsAdmin: true}
	bgCtx  = context.Background()
	raidIn = input.CreateEventInput{
		Title:       "Raid Night",
		Date:        "05-03-2025",
		Time:        "20:00",
		Description: "Bring potions",
		Capacity:    3,
		ChannelID:   "chan",
	}
)

type harness struct {
	svc     *LifecycleService
	repo    *memory.EventRepository
	gw      *fakeGateway
	metrics *countingMetrics
}

func newHarness() *harness {
	h := &harness{
		repo:    memory.NewEventRepository(),
		gw:      newFakeGateway(),
		metrics: newCountingMetrics(),
	}
	h.svc = NewLifecycleService(h.repo, h.gw,
		WithClock(func() time.Time { return fixedNow }),
		WithMetrics(h.metrics),
	)
	return h
}

func (h *harness) stored(t *testing.T, title string) *entities.Event {
	t.Helper()
	e, err := h.repo.Get(bgCtx, title)
	require.NoError(t, err)
	return e
}

func (h *harness) create(t *testing.T, in input.CreateEventInput) *entities.Event {
	t.Helper()
	e, err := h.svc.CreateEvent(bgCtx, hostH, in)
	require.NoError(t, err)
	return e
}

func TestCreateEvent(t *testing.T) {
	h := newHarness()

	created := h.create(t, raidIn)

	got := h.stored(t, "Raid Night")
	assert.Equal(t, entities.StatusUpcoming, got.Status)
	assert.Equal(t, []string{"H"}, got.Attendees.IDs())
	assert.Equal(t, "H", got.Host)
	assert.Equal(t, "20:00 UTC", got.Time)
	assert.Equal(t, fixedNow, got.CreatedAt)
	require.NotNil(t, got.Capacity)
	assert.Equal(t, 3, *got.Capacity)

	assert.NotEmpty(t, got.MarkerID)
	assert.True(t, h.gw.holds(got.MarkerID, "H"))
	assert.NotEmpty(t, got.MessageID)
	assert.Equal(t, got.MessageID, created.MessageID)
	assert.Equal(t, 1, h.metrics.transitions["create/ok"])
}

func TestCreateEvent_ZeroCapacityIsUnlimited(t *testing.T) {
	h := newHarness()
	in := raidIn
	in.Capacity = 0

	h.create(t, in)
	assert.Nil(t, h.stored(t, "Raid Night").Capacity)
}

func TestCreateEvent_DuplicateTitle(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	before := h.stored(t, "Raid Night")

	other := raidIn
	other.Description = "Something else"
	_, err := h.svc.CreateEvent(bgCtx, userA, other)

	assert.ErrorIs(t, err, domain.ErrEventExists)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	assert.Equal(t, before, h.stored(t, "Raid Night"))
}

func TestCreateEvent_Validation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*input.CreateEventInput)
		want   error
	}{
		"blank title":       {func(in *input.CreateEventInput) { in.Title = "  " }, domain.ErrInvalidTitle},
		"bad date":          {func(in *input.CreateEventInput) { in.Date = "2025-03-05" }, domain.ErrInvalidDate},
		"impossible date":   {func(in *input.CreateEventInput) { in.Date = "31-02-2025" }, domain.ErrInvalidDate},
		"bad time":          {func(in *input.CreateEventInput) { in.Time = "8pm" }, domain.ErrInvalidTime},
		"negative capacity": {func(in *input.CreateEventInput) { in.Capacity = -1 }, domain.ErrNegativeCapacity},
		"no description":    {func(in *input.CreateEventInput) { in.Description = "" }, domain.ErrInvalidDescription},
		"title too long":    {func(in *input.CreateEventInput) { in.Title = strings.Repeat("é", maxTitleLength+1) }, domain.ErrTitleTooLong},
		"capacity overflow": {func(in *input.CreateEventInput) { in.Capacity = maxCapacity + 1 }, domain.ErrInvalidCapacity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			in := raidIn
			tc.mutate(&in)

			_, err := h.svc.CreateEvent(bgCtx, hostH, in)
			assert.ErrorIs(t, err, tc.want)

			_, err = h.repo.Get(bgCtx, in.Title)
			assert.ErrorIs(t, err, domain.ErrEventNotFound)
		})
	}
}

func TestCreateEvent_AcceptsUTCSuffix(t *testing.T) {
	h := newHarness()
	in := raidIn
	in.Time = "20:00 UTC"
	h.create(t, in)
	assert.Equal(t, "20:00 UTC", h.stored(t, "Raid Night").Time)
}

func TestRaidNightScenario(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)

	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	_, err = h.svc.JoinEvent(bgCtx, userB, "Raid Night")
	require.NoError(t, err)
	assert.Equal(t, 3, h.stored(t, "Raid Night").HeadCount())

	_, err = h.svc.JoinEvent(bgCtx, userC, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrEventFull)
	assert.Equal(t, domain.KindCapacity, domain.KindOf(err))
	assert.Equal(t, []string{"H", "A", "B"}, h.stored(t, "Raid Night").Attendees.IDs())

	_, err = h.svc.LeaveEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	assert.Equal(t, 2, h.stored(t, "Raid Night").HeadCount())

	_, err = h.svc.JoinEvent(bgCtx, userC, "Raid Night")
	require.NoError(t, err)
	assert.Equal(t, []string{"H", "B", "C"}, h.stored(t, "Raid Night").Attendees.IDs())

	assert.Equal(t, 1, h.metrics.transitions["join/capacity_exceeded"])
}

func TestJoinLeaveRoundTrip(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	before := h.stored(t, "Raid Night").Attendees.IDs()

	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	marker := h.stored(t, "Raid Night").MarkerID
	assert.True(t, h.gw.holds(marker, "A"))

	_, err = h.svc.LeaveEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)

	after := h.stored(t, "Raid Night")
	assert.Equal(t, before, after.Attendees.IDs())
	assert.False(t, h.gw.holds(marker, "A"))
	assert.Equal(t, marker, after.MarkerID, "host still holds the marker")
}

func TestJoinEvent_Rejections(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)

	_, err = h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrAlreadyAttending)

	_, err = h.svc.JoinEvent(bgCtx, hostH, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrAlreadyAttending)

	_, err = h.svc.JoinEvent(bgCtx, userA, "Nope")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestLeaveEvent_HostAlwaysRejected(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)

	_, err := h.svc.LeaveEvent(bgCtx, hostH, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrHostCannotLeave)

	// Host not stored in the attendee list.
	require.NoError(t, h.repo.Create(bgCtx, &entities.Event{
		Title: "Legacy", Date: "05-03-2025", Time: "20:00 UTC", Host: "H",
		Attendees: entities.NewAttendeeSet("A"), Status: entities.StatusUpcoming,
	}))
	_, err = h.svc.LeaveEvent(bgCtx, hostH, "Legacy")
	assert.ErrorIs(t, err, domain.ErrHostCannotLeave)
	assert.Equal(t, []string{"A"}, h.stored(t, "Legacy").Attendees.IDs())
}

func TestLeaveEvent_NotAttending(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	_, err := h.svc.LeaveEvent(bgCtx, userA, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrNotAttending)
}

func TestLeaveEvent_LastAttendeeDeletesUnheldMarker(t *testing.T) {
	h := newHarness()
	marker, err := h.gw.CreateMarker(bgCtx, "Legacy")
	require.NoError(t, err)
	require.NoError(t, h.gw.GrantMarker(bgCtx, "A", marker))
	require.NoError(t, h.repo.Create(bgCtx, &entities.Event{
		Title: "Legacy", Date: "05-03-2025", Time: "20:00 UTC", Host: "H",
		Attendees: entities.NewAttendeeSet("A"), MarkerID: marker, ChannelID: "chan",
		Status: entities.StatusUpcoming,
	}))

	_, err = h.svc.LeaveEvent(bgCtx, userA, "Legacy")
	require.NoError(t, err)

	assert.False(t, h.gw.markerExists(marker))
	assert.Empty(t, h.stored(t, "Legacy").MarkerID)
}

func TestLeaveEvent_KeepsMarkerStillHeld(t *testing.T) {
	h := newHarness()
	marker, err := h.gw.CreateMarker(bgCtx, "Legacy")
	require.NoError(t, err)
	require.NoError(t, h.gw.GrantMarker(bgCtx, "A", marker))
	require.NoError(t, h.gw.GrantMarker(bgCtx, "H", marker))
	require.NoError(t, h.repo.Create(bgCtx, &entities.Event{
		Title: "Legacy", Date: "05-03-2025", Time: "20:00 UTC", Host: "H",
		Attendees: entities.NewAttendeeSet("A"), MarkerID: marker, Status: entities.StatusUpcoming,
	}))

	_, err = h.svc.LeaveEvent(bgCtx, userA, "Legacy")
	require.NoError(t, err)

	assert.True(t, h.gw.markerExists(marker))
	assert.Equal(t, marker, h.stored(t, "Legacy").MarkerID)
}

func TestJoinEvent_RecreatesDeletedMarker(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	old := h.stored(t, "Raid Night").MarkerID
	require.NoError(t, h.gw.DeleteMarker(bgCtx, old))

	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)

	fresh := h.stored(t, "Raid Night").MarkerID
	assert.NotEmpty(t, fresh)
	assert.NotEqual(t, old, fresh)
	assert.True(t, h.gw.holds(fresh, "A"))
}

func TestJoinEvent_CreatesMarkerMissingSinceCreation(t *testing.T) {
	h := newHarness()
	h.gw.failCreate = errors.New("missing permissions")
	h.create(t, raidIn)
	assert.Empty(t, h.stored(t, "Raid Night").MarkerID)
	assert.Equal(t, 1, h.metrics.sideEffects["create marker"])

	h.gw.failCreate = nil
	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)

	marker := h.stored(t, "Raid Night").MarkerID
	assert.NotEmpty(t, marker)
	assert.True(t, h.gw.holds(marker, "A"))
}

func TestSideEffectFailureDoesNotFailTransition(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	h.gw.failRender = errors.New("discord down")

	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	assert.True(t, h.stored(t, "Raid Night").Attendees.Contains("A"))
	assert.Equal(t, 1, h.metrics.sideEffects["render card"])
	assert.Equal(t, 1, h.metrics.transitions["join/ok"])
}

func TestTransferHost(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	marker := h.stored(t, "Raid Night").MarkerID

	_, err = h.svc.TransferHost(bgCtx, hostH, "Raid Night", "B")
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)
	assert.Equal(t, "H", h.stored(t, "Raid Night").Host)

	_, err = h.svc.TransferHost(bgCtx, userA, "Raid Night", "A")
	assert.ErrorIs(t, err, domain.ErrNotHostOrAdmin)

	_, err = h.svc.TransferHost(bgCtx, hostH, "Raid Night", "H")
	assert.ErrorIs(t, err, domain.ErrAlreadyHost)

	updated, err := h.svc.TransferHost(bgCtx, hostH, "Raid Night", "A")
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Host)
	assert.Equal(t, "A", h.stored(t, "Raid Night").Host)
	assert.False(t, h.gw.holds(marker, "H"))
	assert.True(t, h.gw.holds(marker, "A"))
}

func TestTransferHost_ByAdmin(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	_, err := h.svc.JoinEvent(bgCtx, userB, "Raid Night")
	require.NoError(t, err)

	_, err = h.svc.TransferHost(bgCtx, admin, "Raid Night", "B")
	require.NoError(t, err)
	assert.Equal(t, "B", h.stored(t, "Raid Night").Host)
}

func TestRemoveParticipant(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	marker := h.stored(t, "Raid Night").MarkerID

	_, err = h.svc.RemoveParticipant(bgCtx, userB, "Raid Night", "A")
	assert.ErrorIs(t, err, domain.ErrNotHostOrAdmin)

	_, err = h.svc.RemoveParticipant(bgCtx, hostH, "Raid Night", "H")
	assert.ErrorIs(t, err, domain.ErrHostCannotLeave)

	_, err = h.svc.RemoveParticipant(bgCtx, hostH, "Raid Night", "C")
	assert.ErrorIs(t, err, domain.ErrParticipantNotFound)

	_, err = h.svc.RemoveParticipant(bgCtx, hostH, "Raid Night", "A")
	require.NoError(t, err)
	assert.False(t, h.stored(t, "Raid Night").Attendees.Contains("A"))
	assert.False(t, h.gw.holds(marker, "A"))
}

func TestEditEvent(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)

	e, err := h.svc.EditEvent(bgCtx, hostH, "Raid Night", input.FieldTime, "21:30")
	require.NoError(t, err)
	assert.Equal(t, "21:30 UTC", e.Time)

	e, err = h.svc.EditEvent(bgCtx, hostH, "Raid Night", input.FieldDate, "06-03-2025")
	require.NoError(t, err)
	assert.Equal(t, "06-03-2025", e.Date)

	_, err = h.svc.EditEvent(bgCtx, admin, "Raid Night", input.FieldDescription, "Bring elixirs")
	require.NoError(t, err)

	got := h.stored(t, "Raid Night")
	assert.Equal(t, "21:30 UTC", got.Time)
	assert.Equal(t, "06-03-2025", got.Date)
	assert.Equal(t, "Bring elixirs", got.Description)
}

func TestEditEvent_Rejections(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	before := h.stored(t, "Raid Night")

	cases := []struct {
		actor entities.Actor
		field input.EditField
		value string
		want  error
	}{
		{userA, input.FieldTime, "21:00", domain.ErrNotHostOrAdmin},
		{hostH, input.FieldTime, "25:00", domain.ErrInvalidTime},
		{hostH, input.FieldDate, "05/03/2025", domain.ErrInvalidDate},
		{hostH, input.FieldDescription, "abcd", domain.ErrDescriptionShort},
		{hostH, input.FieldCapacity, "many", domain.ErrInvalidCapacity},
		{hostH, input.FieldCapacity, "-2", domain.ErrNegativeCapacity},
		{hostH, input.FieldCapacity, "2147483648", domain.ErrInvalidCapacity},
		{hostH, input.FieldCapacity, "4294967299", domain.ErrInvalidCapacity},
		{hostH, input.FieldCapacity, "99999999999999999999", domain.ErrInvalidCapacity},
		{hostH, input.FieldCapacity, "-99999999999999999999", domain.ErrNegativeCapacity},
		{hostH, input.EditField("title"), "x", domain.ErrUnknownField},
	}
	for _, tc := range cases {
		_, err := h.svc.EditEvent(bgCtx, tc.actor, "Raid Night", tc.field, tc.value)
		assert.ErrorIs(t, err, tc.want, "%s=%q", tc.field, tc.value)
	}
	assert.Equal(t, before, h.stored(t, "Raid Night"))
}

func TestEditCapacityToZeroRemovesCap(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	for _, u := range []entities.Actor{userA, userB} {
		_, err := h.svc.JoinEvent(bgCtx, u, "Raid Night")
		require.NoError(t, err)
	}
	_, err := h.svc.JoinEvent(bgCtx, userC, "Raid Night")
	require.ErrorIs(t, err, domain.ErrEventFull)

	e, err := h.svc.EditEvent(bgCtx, hostH, "Raid Night", input.FieldCapacity, "0")
	require.NoError(t, err)
	assert.Nil(t, e.Capacity)
	assert.Nil(t, h.stored(t, "Raid Night").Capacity)

	for i := 0; i < 5; i++ {
		_, err := h.svc.JoinEvent(bgCtx, entities.Actor{UserID: fmt.Sprintf("extra-%d", i)}, "Raid Night")
		require.NoError(t, err)
	}
	assert.Equal(t, 8, h.stored(t, "Raid Night").HeadCount())
}

func TestCompleteEvent(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	marker := h.stored(t, "Raid Night").MarkerID

	_, err = h.svc.CompleteEvent(bgCtx, userA, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrNotHostOrAdmin)

	done, err := h.svc.CompleteEvent(bgCtx, hostH, "Raid Night")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, done.Status)

	_, err = h.repo.Get(bgCtx, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)

	assert.Equal(t, []string{"Raid Night"}, h.gw.announced(output.AnnounceConcluded))
	assert.False(t, h.gw.markerExists(marker))

	last := h.gw.renders[len(h.gw.renders)-1]
	assert.True(t, last.final)
	assert.Equal(t, entities.StatusCompleted, last.status)

	_, err = h.svc.CompleteEvent(bgCtx, hostH, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestCompleteEvent_KeepsMarkerHeldElsewhere(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	marker := h.stored(t, "Raid Night").MarkerID
	require.NoError(t, h.gw.GrantMarker(bgCtx, "outsider", marker))

	_, err := h.svc.CompleteEvent(bgCtx, admin, "Raid Night")
	require.NoError(t, err)
	assert.True(t, h.gw.markerExists(marker))
	assert.False(t, h.gw.holds(marker, "H"))
}

func TestCreateEvent_LongestTitle(t *testing.T) {
	h := newHarness()
	in := raidIn
	in.Title = strings.Repeat("é", maxTitleLength)
	h.create(t, in)
	assert.Equal(t, in.Title, h.stored(t, in.Title).Title)
}

func TestEditEvent_LargestCapacity(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)

	e, err := h.svc.EditEvent(bgCtx, hostH, "Raid Night", input.FieldCapacity, "2147483647")
	require.NoError(t, err)
	require.NotNil(t, e.Capacity)
	assert.Equal(t, maxCapacity, *e.Capacity)
}

// deleteFailingRepo fails Delete while err is set.
type deleteFailingRepo struct {
	*memory.EventRepository
	err error
}

func (r *deleteFailingRepo) Delete(ctx context.Context, title string) error {
	if r.err != nil {
		return r.err
	}
	return r.EventRepository.Delete(ctx, title)
}

func TestCompleteEvent_RetryFinishesInterruptedCompletion(t *testing.T) {
	repo := &deleteFailingRepo{EventRepository: memory.NewEventRepository()}
	gw := newFakeGateway()
	svc := NewLifecycleService(repo, gw, WithClock(func() time.Time { return fixedNow }))

	_, err := svc.CreateEvent(bgCtx, hostH, raidIn)
	require.NoError(t, err)
	_, err = svc.JoinEvent(bgCtx, userA, "Raid Night")
	require.NoError(t, err)
	stored, err := repo.Get(bgCtx, "Raid Night")
	require.NoError(t, err)
	marker := stored.MarkerID

	repo.err = errors.New("connection reset")
	_, err = svc.CompleteEvent(bgCtx, hostH, "Raid Night")
	require.Error(t, err)

	stuck, err := repo.Get(bgCtx, "Raid Night")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, stuck.Status)
	assert.False(t, gw.holds(marker, "A"))

	repo.err = nil
	done, err := svc.CompleteEvent(bgCtx, hostH, "Raid Night")
	require.NoError(t, err)
	assert.Equal(t, entities.StatusCompleted, done.Status)

	_, err = repo.Get(bgCtx, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.False(t, gw.markerExists(marker))
	assert.Len(t, gw.announced(output.AnnounceConcluded), 1)
}

func TestCompleteEvent_RetryStillChecksPermission(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.repo.Create(bgCtx, &entities.Event{
		Title: "Stale", Host: "H", Status: entities.StatusCompleted,
	}))
	_, err := h.svc.CompleteEvent(bgCtx, userA, "Stale")
	assert.ErrorIs(t, err, domain.ErrNotHostOrAdmin)

	_, err = h.svc.CompleteEvent(bgCtx, hostH, "Stale")
	require.NoError(t, err)
	_, err = h.repo.Get(bgCtx, "Stale")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestDeleteEvent(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	stored := h.stored(t, "Raid Night")

	assert.ErrorIs(t, h.svc.DeleteEvent(bgCtx, userA, "Raid Night"), domain.ErrNotHostOrAdmin)

	require.NoError(t, h.svc.DeleteEvent(bgCtx, hostH, "Raid Night"))
	_, err := h.repo.Get(bgCtx, "Raid Night")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	assert.False(t, h.gw.markerExists(stored.MarkerID))
	assert.False(t, h.gw.cards[stored.MessageID])

	assert.ErrorIs(t, h.svc.DeleteEvent(bgCtx, hostH, "Raid Night"), domain.ErrEventNotFound)
}

func TestDeleteAllEvents(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	movie := raidIn
	movie.Title = "Movie"
	h.create(t, movie)

	_, err := h.svc.DeleteAllEvents(bgCtx, hostH)
	assert.ErrorIs(t, err, domain.ErrNotAdmin)

	summary, err := h.svc.DeleteAllEvents(bgCtx, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{"Raid Night", "Movie"}, summary.Events)
	assert.Equal(t, 2, summary.Markers)
	assert.Equal(t, 2, summary.Messages)

	events, err := h.svc.ListEvents(bgCtx)
	require.NoError(t, err)
	assert.Empty(t, events)

	summary, err = h.svc.DeleteAllEvents(bgCtx, admin)
	require.NoError(t, err)
	assert.Empty(t, summary.Events)
}

func TestPromoteToOngoing(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	start := time.Date(2025, 3, 5, 20, 0, 0, 0, time.UTC)

	ok, err := h.svc.PromoteToOngoing(bgCtx, "Raid Night", start.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = h.svc.PromoteToOngoing(bgCtx, "Raid Night", start)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entities.StatusOngoing, h.stored(t, "Raid Night").Status)
	assert.Equal(t, []string{"Raid Night"}, h.gw.announced(output.AnnounceStarted))

	ok, err = h.svc.PromoteToOngoing(bgCtx, "Raid Night", start.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, h.gw.announced(output.AnnounceStarted), 1)
}

func TestRemindStartingSoon(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)

	ok, err := h.svc.RemindStartingSoon(bgCtx, "Raid Night")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Raid Night"}, h.gw.announced(output.AnnounceReminder))

	_, err = h.svc.RemindStartingSoon(bgCtx, "Nope")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	h := newHarness()
	in := raidIn
	in.Capacity = 5
	h.create(t, in)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		joined   int
		rejected int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.svc.JoinEvent(bgCtx, entities.Actor{UserID: fmt.Sprintf("u%d", i)}, "Raid Night")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				joined++
			} else if errors.Is(err, domain.ErrEventFull) {
				rejected++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, joined)
	assert.Equal(t, 16, rejected)
	assert.Equal(t, 5, h.stored(t, "Raid Night").HeadCount())
}

func TestLocksAreScopedToTitle(t *testing.T) {
	h := newHarness()
	h.create(t, raidIn)
	other := raidIn
	other.Title = "Dungeon Crawl"
	h.create(t, other)

	h.svc.locks.Lock("Raid Night")
	joinedRaid := make(chan error, 1)
	go func() {
		_, err := h.svc.JoinEvent(bgCtx, userA, "Raid Night")
		joinedRaid <- err
	}()

	_, err := h.svc.JoinEvent(bgCtx, userB, "Dungeon Crawl")
	require.NoError(t, err)

	select {
	case <-joinedRaid:
		t.Fatal("join ran while the title was locked")
	case <-time.After(20 * time.Millisecond):
	}
	require.NoError(t, h.svc.locks.Unlock("Raid Night"))
	require.NoError(t, <-joinedRaid)
}
