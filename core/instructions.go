package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/realtime"
	"github.com/koscakluka/ema-realtime/core/tools"
)

// SessionConfig is everything that goes into the session instructions.
type SessionConfig struct {
	Prompt   string
	Language string
	Platform string
	Role     string
	Guests   []string

	Voice                   string
	TurnDetection           *realtime.TurnDetection
	MaxResponseOutputTokens any
}

func (c SessionConfig) clone() SessionConfig {
	c.Guests = append([]string(nil), c.Guests...)
	if c.TurnDetection != nil {
		turnDetection := *c.TurnDetection
		c.TurnDetection = &turnDetection
	}
	return c
}

func (c SessionConfig) instructions(version int) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(c.Prompt))

	var details []string
	if c.Language != "" {
		details = append(details, "Always respond in "+c.Language+".")
	}
	if c.Platform != "" {
		details = append(details, "You are speaking on "+c.Platform+".")
	}
	if c.Role != "" {
		details = append(details, "Your role in this session: "+c.Role+".")
	}
	if len(c.Guests) > 0 {
		details = append(details, "Guests present: "+strings.Join(c.Guests, ", ")+".")
	}
	if len(details) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.Join(details, "\n"))
	}

	fmt.Fprintf(&b, "\n\n<!-- instructions v%d -->", version)
	return b.String()
}

// instructionSync numbers outgoing instruction payloads and owns the timer
// for the follow-up send.
type instructionSync struct {
	mu      sync.Mutex
	version int
	resend  *time.Timer
	stopped bool
}

func (s *instructionSync) next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}

func (s *instructionSync) current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// scheduleResend replaces any pending follow-up with send after delay.
func (s *instructionSync) scheduleResend(delay time.Duration, send func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.resend != nil {
		s.resend.Stop()
	}
	s.resend = time.AfterFunc(delay, send)
}

func (s *instructionSync) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.resend != nil {
		s.resend.Stop()
		s.resend = nil
	}
}

// InstructionVersion is the version tag of the last instructions sent.
func (e *Engine) InstructionVersion() int {
	return e.instructions.current()
}

// syncInstructions sends the full session configuration and sends it once
// more, with a new version tag, after the resend delay. The runtime may drop
// a single update that arrives in quick succession.
func (e *Engine) syncInstructions(ctx context.Context) error {
	config := e.SessionConfig()
	sessionTools, err := catalogueTools()
	if err != nil {
		return err
	}

	if err := e.sendInstructions(ctx, config, sessionTools); err != nil {
		return err
	}

	resendCtx := context.WithoutCancel(ctx)
	e.instructions.scheduleResend(e.resendDelay, func() {
		if e.closed.Load() {
			return
		}
		_ = e.sendInstructions(resendCtx, config, sessionTools)
	})
	return nil
}

func (e *Engine) sendInstructions(ctx context.Context, config SessionConfig, sessionTools []realtime.Tool) error {
	version := e.instructions.next()
	update := realtime.NewSessionUpdate(realtime.Session{
		Instructions:            config.instructions(version),
		Tools:                   sessionTools,
		ToolChoice:              "auto",
		Voice:                   config.Voice,
		TurnDetection:           config.TurnDetection,
		MaxResponseOutputTokens: config.MaxResponseOutputTokens,
	})

	if err := e.send(ctx, update); err != nil {
		return err
	}
	e.emit(events.NewInstructionsSent(version))
	return nil
}

func catalogueTools() ([]realtime.Tool, error) {
	definitions := tools.Catalogue()

	var sessionTools []realtime.Tool
	if err := copier.Copy(&sessionTools, &definitions); err != nil {
		return nil, fmt.Errorf("failed to build tool catalogue: %w", err)
	}
	for i := range sessionTools {
		sessionTools[i].Type = "function"
	}
	return sessionTools, nil
}
