package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

const (
	DefaultTickInterval = time.Minute
	reminderLead        = 30 * time.Minute
	reminderDedupTTL    = 2 * time.Hour
)

// eventDriver is the part of the lifecycle engine the scheduler drives.
type eventDriver interface {
	ListEvents(ctx context.Context) ([]entities.Event, error)
	PromoteToOngoing(ctx context.Context, title string, now time.Time) (bool, error)
	RemindStartingSoon(ctx context.Context, title string) (bool, error)
}

// Scheduler scans active events once per interval, sending "starting soon" reminders and
// promoting started events to Ongoing.
type Scheduler struct {
	events   eventDriver
	ledger   output.ReminderLedger
	metrics  output.Metrics
	interval time.Duration
	now      func() time.Time
}

// TickReport lists the titles a tick acted on.
type TickReport struct {
	Reminded []string
	Promoted []string
}

func NewScheduler(events eventDriver, ledger output.ReminderLedger, metrics output.Metrics, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &Scheduler{
		events:   events,
		ledger:   ledger,
		metrics:  metrics,
		interval: interval,
		now:      time.Now,
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("⏰ Planificateur démarré (intervalle=%s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("⏰ Planificateur arrêté.")
			return
		case <-ticker.C:
			s.Tick(ctx, s.now())
		}
	}
}

// Tick runs one scan at now. Failures are logged, never returned.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) TickReport {
	started := time.Now()
	var report TickReport

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		log.Printf("❌ Planificateur: lecture des événements: %v", err)
		return report
	}

	report.Reminded = s.sendReminders(ctx, now, events)
	report.Promoted = s.promoteStarted(ctx, now, events)

	s.metrics.ObserveTick(time.Since(started), len(report.Reminded), len(report.Promoted))
	if len(report.Reminded) > 0 || len(report.Promoted) > 0 {
		log.Printf("⏰ Tick: %d rappel(s), %d événement(s) démarré(s)", len(report.Reminded), len(report.Promoted))
	}
	return report
}

// sendReminders announces every Upcoming event starting within the reminder window
// [now+30m, now+30m+interval), truncated to the minute. The full start instant is compared,
// so an event is only reminded on its own day.
func (s *Scheduler) sendReminders(ctx context.Context, now time.Time, events []entities.Event) []string {
	window := max(s.interval, time.Minute)
	from := now.Add(reminderLead).Truncate(time.Minute)
	to := from.Add(window)

	var reminded []string
	sent := make(map[string]struct{})
	for i := range events {
		e := &events[i]
		if e.Status != entities.StatusUpcoming {
			continue
		}
		if _, ok := sent[e.Title]; ok {
			continue
		}
		start, err := e.StartInstant()
		if err != nil || start.Before(from) || !start.Before(to) {
			continue
		}
		if !s.claimReminder(ctx, e.Title, start) {
			continue
		}

		ok, err := s.events.RemindStartingSoon(ctx, e.Title)
		if err != nil {
			log.Printf("❌ Rappel pour %q: %v", e.Title, err)
			continue
		}
		if ok {
			sent[e.Title] = struct{}{}
			reminded = append(reminded, e.Title)
		}
	}
	return reminded
}

// claimReminder consults the ledger so that overlapping ticks or a restart inside the window
// do not repeat a reminder. A ledger failure lets the reminder through.
func (s *Scheduler) claimReminder(ctx context.Context, title string, start time.Time) bool {
	if s.ledger == nil {
		return true
	}
	fresh, err := s.ledger.MarkSent(ctx, reminderKey(title, start), reminderDedupTTL)
	if err != nil {
		log.Printf("⚠️ Registre des rappels indisponible (%q): %v", title, err)
		return true
	}
	return fresh
}

func reminderKey(title string, start time.Time) string {
	return fmt.Sprintf("reminder:%s:%d", title, start.Unix())
}

func (s *Scheduler) promoteStarted(ctx context.Context, now time.Time, events []entities.Event) []string {
	var promoted []string
	for i := range events {
		e := &events[i]
		if e.Status != entities.StatusUpcoming {
			continue
		}
		start, err := e.StartInstant()
		if err != nil || now.Before(start) {
			continue
		}
		ok, err := s.events.PromoteToOngoing(ctx, e.Title, now)
		if err != nil {
			log.Printf("❌ Démarrage de %q: %v", e.Title, err)
			continue
		}
		if ok {
			promoted = append(promoted, e.Title)
		}
	}
	return promoted
}
