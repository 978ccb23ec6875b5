package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

// fakeGateway simulates a guild: markers with holders, status cards and posted announcements.
type fakeGateway struct {
	mu            sync.Mutex
	next          int
	markers       map[string]map[string]bool
	cards         map[string]bool
	announcements []output.Announcement
	renders       []renderCall
	failRender    error
	failCreate    error
}

type renderCall struct {
	title  string
	final  bool
	status entities.Status
	count  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{markers: make(map[string]map[string]bool), cards: make(map[string]bool)}
}

func (g *fakeGateway) id(prefix string) string {
	g.next++
	return fmt.Sprintf("%s-%d", prefix, g.next)
}

func (g *fakeGateway) CreateMarker(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCreate != nil {
		return "", g.failCreate
	}
	id := g.id("role")
	g.markers[id] = make(map[string]bool)
	return id, nil
}

func (g *fakeGateway) DeleteMarker(_ context.Context, markerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.markers[markerID]; !ok {
		return output.ErrGatewayNotFound
	}
	delete(g.markers, markerID)
	return nil
}

func (g *fakeGateway) GrantMarker(_ context.Context, userID, markerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	holders, ok := g.markers[markerID]
	if !ok {
		return fmt.Errorf("add role: %w", output.ErrGatewayNotFound)
	}
	holders[userID] = true
	return nil
}

func (g *fakeGateway) RevokeMarker(_ context.Context, userID, markerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	holders, ok := g.markers[markerID]
	if !ok {
		return output.ErrGatewayNotFound
	}
	delete(holders, userID)
	return nil
}

func (g *fakeGateway) MarkerHolderCount(_ context.Context, markerID string) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	holders, ok := g.markers[markerID]
	if !ok {
		return 0, output.ErrGatewayNotFound
	}
	return len(holders), nil
}

func (g *fakeGateway) Announce(_ context.Context, a output.Announcement) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.announcements = append(g.announcements, a)
	return nil
}

func (g *fakeGateway) RenderCard(_ context.Context, e *entities.Event, final bool) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failRender != nil {
		return "", g.failRender
	}
	g.renders = append(g.renders, renderCall{title: e.Title, final: final, status: e.Status, count: e.HeadCount()})
	if e.MessageID != "" && g.cards[e.MessageID] {
		return e.MessageID, nil
	}
	id := g.id("msg")
	g.cards[id] = true
	return id, nil
}

func (g *fakeGateway) DeleteCard(_ context.Context, _, messageID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.cards[messageID] {
		return output.ErrGatewayNotFound
	}
	delete(g.cards, messageID)
	return nil
}

func (g *fakeGateway) holds(markerID, userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.markers[markerID][userID]
}

func (g *fakeGateway) markerExists(markerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.markers[markerID]
	return ok
}

func (g *fakeGateway) announced(kind output.AnnouncementKind) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var titles []string
	for _, a := range g.announcements {
		if a.Kind == kind {
			titles = append(titles, a.Title)
		}
	}
	return titles
}

// countingMetrics records observations for assertions.
type countingMetrics struct {
	mu          sync.Mutex
	transitions map[string]int
	sideEffects map[string]int
	ticks       int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{transitions: make(map[string]int), sideEffects: make(map[string]int)}
}

func (m *countingMetrics) ObserveTransition(transition, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[transition+"/"+outcome]++
}

func (m *countingMetrics) ObserveSideEffectFailure(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sideEffects[op]++
}

func (m *countingMetrics) ObserveTick(time.Duration, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks++
}
