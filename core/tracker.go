package orchestration

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/koscakluka/ema-realtime/core/tools"
)

const (
	duplicateWindow = time.Second
	argsHashLimit   = 256
)

type dispatchRecord struct {
	name         tools.Name
	argsHash     string
	dispatchedAt time.Time
}

// dispatchTracker remembers the last dispatch so repeat deliveries of the
// same call collapse into one.
type dispatchTracker struct {
	mu   sync.Mutex
	now  func() time.Time
	last *dispatchRecord
}

// admit reports whether a call should run and, if so, records it as the last
// dispatch.
func (t *dispatchTracker) admit(name tools.Name, argsHash string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if last := t.last; last != nil && last.name == name && last.argsHash == argsHash && now.Sub(last.dispatchedAt) < duplicateWindow {
		return false
	}

	t.last = &dispatchRecord{name: name, argsHash: argsHash, dispatchedAt: now}
	return true
}

// argumentsHash is the encoded arguments, cut to a bounded length. Map keys
// are encoded in sorted order so equal arguments hash equally.
func argumentsHash(args map[string]any) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	if len(encoded) > argsHashLimit {
		encoded = encoded[:argsHashLimit]
	}
	return string(encoded)
}

// busyCounter counts running tools and reports transitions between idle and
// busy.
type busyCounter struct {
	mu       sync.Mutex
	count    int
	onChange func(busy bool)
}

func (c *busyCounter) acquire() {
	c.mu.Lock()
	c.count++
	becameBusy := c.count == 1
	c.mu.Unlock()

	if becameBusy && c.onChange != nil {
		c.onChange(true)
	}
}

func (c *busyCounter) release() {
	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		logger.Warn("busy counter released while idle")
		return
	}
	c.count--
	becameIdle := c.count == 0
	c.mu.Unlock()

	if becameIdle && c.onChange != nil {
		c.onChange(false)
	}
}

func (c *busyCounter) value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
