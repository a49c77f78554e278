package orchestration

import (
	"time"

	"github.com/koscakluka/ema-realtime/core/tools"
)

const recentCallsCapacity = 10

// CallRecord is one entry of the recent-calls log.
type CallRecord struct {
	ID           string
	Name         tools.Name
	CallID       string
	Arguments    string
	OK           bool
	Error        string
	Status       string
	DispatchedAt time.Time
	CompletedAt  time.Time
	// Synthesized marks a booking made on behalf of check_availability.
	Synthesized bool
}

func (e *Engine) recordCall(record CallRecord) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.recent = append(e.state.recent, record)
	if overflow := len(e.state.recent) - recentCallsCapacity; overflow > 0 {
		e.state.recent = append(e.state.recent[:0:0], e.state.recent[overflow:]...)
	}
}

// RecentCalls returns the last completed calls, oldest first.
func (e *Engine) RecentCalls() []CallRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := make([]CallRecord, len(e.state.recent))
	copy(records, e.state.recent)
	return records
}
