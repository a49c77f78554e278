package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/realtime"
	"github.com/koscakluka/ema-realtime/core/scheduling"
)

type recordingChannel struct {
	mu       sync.Mutex
	messages []any
}

func (c *recordingChannel) Send(_ context.Context, msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
	return nil
}

func (c *recordingChannel) snapshot() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.messages...)
}

func (c *recordingChannel) toolOutputs() []realtime.ToolOutput {
	var outputs []realtime.ToolOutput
	for _, msg := range c.snapshot() {
		if output, ok := msg.(realtime.ToolOutput); ok {
			outputs = append(outputs, output)
		}
	}
	return outputs
}

func (c *recordingChannel) sessionUpdates() []realtime.SessionUpdate {
	var updates []realtime.SessionUpdate
	for _, msg := range c.snapshot() {
		if update, ok := msg.(realtime.SessionUpdate); ok {
			updates = append(updates, update)
		}
	}
	return updates
}

func (c *recordingChannel) conversationItems(role realtime.Role) []realtime.ConversationItemCreate {
	var items []realtime.ConversationItemCreate
	for _, msg := range c.snapshot() {
		if item, ok := msg.(realtime.ConversationItemCreate); ok && item.Item.Role == role {
			items = append(items, item)
		}
	}
	return items
}

func (c *recordingChannel) responseCreates() int {
	count := 0
	for _, msg := range c.snapshot() {
		if _, ok := msg.(realtime.ResponseCreate); ok {
			count++
		}
	}
	return count
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) ofKind(kind events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matching []events.Event
	for _, event := range r.events {
		if event.Kind() == kind {
			matching = append(matching, event)
		}
	}
	return matching
}

func (r *eventRecorder) waitFor(t *testing.T, kind events.Kind, count int) []events.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if matching := r.ofKind(kind); len(matching) >= count {
			return matching
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d %q events, got %d", count, kind, len(r.ofKind(kind)))
		case <-time.After(time.Millisecond):
		}
	}
}

type stubMedia struct {
	mu          sync.Mutex
	plays       int
	pauses      int
	playErr     error
	panicOnPlay bool
}

func (m *stubMedia) Play(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOnPlay {
		panic("player exploded")
	}
	m.plays++
	return m.playErr
}

func (m *stubMedia) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauses++
	return nil
}

func (m *stubMedia) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

type stubAudio struct {
	mu      sync.Mutex
	muted   []bool
	micStop int
	micOn   int
}

func (a *stubAudio) SetAgentAudioMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = append(a.muted, muted)
}

func (a *stubAudio) StopMicrophone() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.micStop++
	return nil
}

func (a *stubAudio) StartMicrophone() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.micOn++
	return nil
}

type stubCalendar struct {
	mu           sync.Mutex
	availability scheduling.Availability
	release      chan struct{}
	bookings     []scheduling.BookingRequest
}

func (c *stubCalendar) Availability(ctx context.Context, _ scheduling.AvailabilityQuery) (scheduling.Availability, error) {
	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return scheduling.Availability{}, ctx.Err()
		}
	}
	return c.availability, nil
}

func (c *stubCalendar) Preferences(context.Context) (scheduling.Preferences, error) {
	return scheduling.Preferences{DefaultID: "primary"}, nil
}

func (c *stubCalendar) Book(_ context.Context, request scheduling.BookingRequest) (scheduling.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookings = append(c.bookings, request)
	if request.LeadID == "" {
		return scheduling.Booking{}, errors.New("missing_leadId")
	}
	return scheduling.Booking{EventID: "evt_1", HangoutLink: "https://meet/evt_1"}, nil
}

func (c *stubCalendar) bookingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bookings)
}

type stubPromptSource struct {
	prompt string
	err    error
}

func (s stubPromptSource) PullPrompt(context.Context) (string, error) {
	return s.prompt, s.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 11, 23, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func feed(t *testing.T, engine *Engine, messages ...string) {
	t.Helper()
	for _, message := range messages {
		if err := engine.HandleMessage(context.Background(), []byte(message)); err != nil {
			t.Fatalf("unexpected error handling %s: %v", message, err)
		}
	}
}
