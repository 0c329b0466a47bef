package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"livecast/internal/core/domain"
	"livecast/internal/core/ports"
	"livecast/internal/infrastructure/repositories/memory"
	rlog "livecast/pkg/logger"
)

// sentEvent is one delivery captured by the fake transport.
type sentEvent struct {
	To      domain.ConnID
	Event   string
	Payload interface{}
}

// fakeSender records deliveries in order. Connections are considered
// connected unless explicitly marked offline.
type fakeSender struct {
	mu      sync.Mutex
	events  []sentEvent
	offline map[domain.ConnID]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{offline: make(map[domain.ConnID]bool)}
}

func (f *fakeSender) Send(id domain.ConnID, event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.offline[id] {
		return fmt.Errorf("connection %s not connected", id)
	}
	f.events = append(f.events, sentEvent{To: id, Event: event, Payload: payload})
	return nil
}

func (f *fakeSender) IsConnected(id domain.ConnID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.offline[id]
}

func (f *fakeSender) setOffline(id domain.ConnID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline[id] = true
}

// eventsFor returns every delivery made to one connection, in order.
func (f *fakeSender) eventsFor(id domain.ConnID) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentEvent
	for _, e := range f.events {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// eventsOfType returns every delivery of one event type to one connection.
func (f *fakeSender) eventsOfType(id domain.ConnID, event string) []sentEvent {
	var out []sentEvent
	for _, e := range f.eventsFor(id) {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// nopMetrics satisfies ports.SignalMetrics for tests.
type nopMetrics struct{}

func (nopMetrics) ConnectionOpened()                   {}
func (nopMetrics) ConnectionClosed()                   {}
func (nopMetrics) RelayDelivered(string)               {}
func (nopMetrics) RelayDropped(string, string)         {}
func (nopMetrics) EventBroadcast(string, int)          {}
func (nopMetrics) RoomMembers(string, int)             {}
func (nopMetrics) ObserveHandle(string, time.Duration) {}

var _ ports.SignalMetrics = nopMetrics{}

type testEnv struct {
	coordinator ports.Coordinator
	router      ports.SignalRouter
	broadcaster ports.EventBroadcaster
	registry    ports.ConnectionRegistry
	rooms       ports.RoomDirectory
	sender      *fakeSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	registry := memory.NewMemoryConnectionRegistry()
	rooms := memory.NewMemoryRoomDirectory()
	sender := newFakeSender()
	logger := rlog.NewNop()

	return &testEnv{
		coordinator: NewCoordinatorService(registry, rooms, sender, nopMetrics{}, logger),
		router:      NewRouterService(sender, nopMetrics{}, logger),
		broadcaster: NewBroadcastService(rooms, sender, nopMetrics{}, logger),
		registry:    registry,
		rooms:       rooms,
		sender:      sender,
	}
}

// join registers and joins in one step, failing the test on error.
func (e *testEnv) join(t *testing.T, id domain.ConnID, roomID domain.RoomID, role domain.Role) {
	t.Helper()

	ctx := context.Background()
	if err := e.coordinator.Connect(ctx, id); err != nil {
		t.Fatalf("connect %s: %v", id, err)
	}
	if err := e.coordinator.Join(ctx, id, roomID, role); err != nil {
		t.Fatalf("join %s: %v", id, err)
	}
}
