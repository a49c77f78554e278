package realtime

import (
	"sync"
	"time"
)

// DefaultDebugLogCapacity bounds the operator-facing event log.
const DefaultDebugLogCapacity = 30

type DebugEntry struct {
	Kind       Kind
	Type       string
	Name       string
	CallID     string
	ReceivedAt time.Time
}

// DebugLog keeps the most recent classified events for inspection. It is
// never consulted by dispatch.
type DebugLog struct {
	mu       sync.Mutex
	entries  []DebugEntry
	capacity int
}

func NewDebugLog(capacity int) *DebugLog {
	if capacity <= 0 {
		capacity = DefaultDebugLogCapacity
	}
	return &DebugLog{capacity: capacity}
}

func (l *DebugLog) Append(event Event) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, DebugEntry{
		Kind:       event.Kind,
		Type:       event.Type,
		Name:       event.Name,
		CallID:     event.CallID,
		ReceivedAt: time.Now(),
	})
	if overflow := len(l.entries) - l.capacity; overflow > 0 {
		l.entries = append(l.entries[:0:0], l.entries[overflow:]...)
	}
}

// Entries returns the logged events, oldest first.
func (l *DebugLog) Entries() []DebugEntry {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]DebugEntry, len(l.entries))
	copy(entries, l.entries)
	return entries
}
