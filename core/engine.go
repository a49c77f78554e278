package orchestration

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/realtime"
	"github.com/koscakluka/ema-realtime/core/scheduling"
	"github.com/koscakluka/ema-realtime/core/trivia"
)

const (
	defaultResendDelay = 175 * time.Millisecond
	defaultSilenceTick = time.Second

	seenCallsCapacity = 128
)

// Engine interprets the realtime event stream of one voice session, runs the
// tools it asks for and feeds their results back into the conversation.
//
// Messages must be handed to [Engine.HandleMessage] in arrival order from a
// single goroutine. Scheduling tools complete asynchronously.
type Engine struct {
	channel      Channel
	audio        AudioControl
	media        MediaPlayer
	scheduler    *scheduling.Orchestrator
	promptSource PromptSource

	triviaOptions []trivia.Option

	now           func() time.Time
	resendDelay   time.Duration
	silenceTick   time.Duration
	debugCapacity int

	callbacks engineCallbacks
	emit      eventEmitter

	debug      *realtime.DebugLog
	classifier *realtime.Classifier

	mu      sync.Mutex
	state   sessionState
	session SessionConfig
	opened  bool

	tracker      dispatchTracker
	busy         busyCounter
	seenCalls    *lru.Cache[string, struct{}]
	instructions instructionSync

	closed    atomic.Bool
	closeOnce sync.Once
	inflight  sync.WaitGroup
}

// sessionState is everything a tool call may change. It is guarded by
// Engine.mu.
type sessionState struct {
	pending *pendingCall
	silence silenceWindow
	trivia  *trivia.Session
	recent  []CallRecord
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:           time.Now,
		resendDelay:   defaultResendDelay,
		silenceTick:   defaultSilenceTick,
		debugCapacity: realtime.DefaultDebugLogCapacity,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.emit = newCallbackEventEmitter(e.callbacks)
	e.debug = realtime.NewDebugLog(e.debugCapacity)
	e.classifier = realtime.NewClassifier(e.debug)
	e.tracker.now = e.now
	e.busy.onChange = func(busy bool) { e.emit(events.NewBusyChanged(busy)) }
	e.seenCalls, _ = lru.New[string, struct{}](seenCallsCapacity)

	return e
}

// HandleMessage processes one message received from the realtime channel.
// Malformed messages are reported and dropped; they never affect the session.
func (e *Engine) HandleMessage(ctx context.Context, data []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}

	event, err := e.classifier.Classify(data)
	if err != nil {
		logger.Warn("dropping malformed realtime message", "error", err)
		return fmt.Errorf("failed to classify realtime message: %w", err)
	}

	switch event.Kind {
	case realtime.KindTextDelta:
		e.emit(events.NewAssistantResponseSegment(event.Delta, event.IsTranscript()))
	case realtime.KindToolCallHeader, realtime.KindArgumentsDelta, realtime.KindArgumentsDone:
		for _, call := range e.accumulate(event) {
			e.dispatch(ctx, call)
		}
	case realtime.KindResponseDone:
		for _, call := range e.completeResponse(event) {
			e.dispatch(ctx, call)
		}
		e.emit(events.NewAssistantResponseFinal(len(event.FunctionCalls)))
	default:
		logger.Debug("unhandled realtime event", "type", event.Type)
	}

	return nil
}

// Open pulls the stored prompt, if a source is configured, and sends the
// session instructions. Call it once the channel is established.
func (e *Engine) Open(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}

	if e.promptSource != nil {
		if prompt, err := e.promptSource.PullPrompt(ctx); err != nil {
			logger.Warn("failed to pull stored prompt", "error", err)
		} else {
			e.mu.Lock()
			e.session.Prompt = prompt
			e.mu.Unlock()
		}
	}

	e.mu.Lock()
	e.opened = true
	e.mu.Unlock()

	return e.syncInstructions(ctx)
}

// UpdateSession applies update to the session configuration and syncs the
// instructions when the session is open.
func (e *Engine) UpdateSession(ctx context.Context, update func(*SessionConfig)) error {
	if e.closed.Load() {
		return ErrClosed
	}

	e.mu.Lock()
	update(&e.session)
	opened := e.opened
	e.mu.Unlock()

	if !opened {
		return nil
	}
	return e.syncInstructions(ctx)
}

func (e *Engine) SetPrompt(ctx context.Context, prompt string) error {
	return e.UpdateSession(ctx, func(config *SessionConfig) { config.Prompt = prompt })
}

func (e *Engine) SessionConfig() SessionConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone()
}

// SendText posts a typed user message and asks for a response. Nothing is
// sent while a silence window is active.
func (e *Engine) SendText(ctx context.Context, text string) error {
	if e.closed.Load() {
		return ErrClosed
	}
	if active, _ := e.Silence(); active {
		return ErrSilenced
	}

	if err := e.send(ctx, realtime.NewConversationMessage(realtime.RoleUser, text)); err != nil {
		return err
	}
	return e.send(ctx, realtime.NewResponseCreate())
}

func (e *Engine) CancelResponse(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return e.send(ctx, realtime.NewResponseCancel())
}

// Close stops timers and drops any open call. An open silence window ends
// without restarting the microphone. Results of scheduling calls still in
// flight are discarded when they arrive.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.instructions.stop()
		e.endSilence(false)

		e.mu.Lock()
		e.state.pending = nil
		e.state.trivia = nil
		e.mu.Unlock()
	})
}

// Busy reports whether any tool is running.
func (e *Engine) Busy() bool {
	return e.busy.value() > 0
}

// DebugLog returns the most recent classified events, oldest first.
func (e *Engine) DebugLog() []realtime.DebugEntry {
	return e.debug.Entries()
}

func (e *Engine) send(ctx context.Context, msg any) error {
	if e.channel == nil {
		return nil
	}
	if err := e.channel.Send(ctx, msg); err != nil {
		logger.Warn("failed to send realtime message", "error", err)
		return fmt.Errorf("failed to send realtime message: %w", err)
	}
	return nil
}
