package orchestration

import (
	"context"
	"time"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/scheduling"
	"github.com/koscakluka/ema-realtime/core/trivia"
)

type EngineOption func(*Engine)

// Channel carries outbound control messages to the realtime runtime.
type Channel interface {
	Send(ctx context.Context, msg any) error
}

func WithChannel(channel Channel) EngineOption {
	return func(e *Engine) { e.channel = channel }
}

// AudioControl is the capture and playback surface silenced by start_silence.
type AudioControl interface {
	SetAgentAudioMuted(muted bool)
	StopMicrophone() error
	StartMicrophone() error
}

func WithAudioControl(audio AudioControl) EngineOption {
	return func(e *Engine) { e.audio = audio }
}

type MediaPlayer interface {
	Play(ctx context.Context) error
	Pause() error
}

func WithMediaPlayer(player MediaPlayer) EngineOption {
	return func(e *Engine) { e.media = player }
}

// WithCalendar enables check_availability and schedule_meeting.
func WithCalendar(calendar scheduling.Calendar, opts ...scheduling.Option) EngineOption {
	return func(e *Engine) {
		if calendar == nil {
			e.scheduler = nil
			return
		}
		e.scheduler = scheduling.New(calendar, opts...)
	}
}

type PromptSource interface {
	PullPrompt(ctx context.Context) (string, error)
}

// WithPromptSource makes [Engine.Open] pull the stored prompt before the
// first instruction sync.
func WithPromptSource(source PromptSource) EngineOption {
	return func(e *Engine) { e.promptSource = source }
}

func WithSessionConfig(config SessionConfig) EngineOption {
	return func(e *Engine) { e.session = config }
}

func WithTriviaOptions(opts ...trivia.Option) EngineOption {
	return func(e *Engine) { e.triviaOptions = append(e.triviaOptions, opts...) }
}

// WithClock replaces the clock used for the duplicate window and call
// records.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithResendDelay sets the delay before instructions are sent the second
// time.
func WithResendDelay(delay time.Duration) EngineOption {
	return func(e *Engine) { e.resendDelay = delay }
}

// WithSilenceTick sets the silence countdown period. One tick is one second
// of silence.
func WithSilenceTick(tick time.Duration) EngineOption {
	return func(e *Engine) {
		if tick > 0 {
			e.silenceTick = tick
		}
	}
}

func WithDebugLogCapacity(capacity int) EngineOption {
	return func(e *Engine) { e.debugCapacity = capacity }
}

// WithEventHandler registers a handler receiving every emitted event.
func WithEventHandler(handler func(events.Event)) EngineOption {
	return func(e *Engine) {
		if handler != nil {
			e.callbacks.handlers = append(e.callbacks.handlers, handler)
		}
	}
}

type engineCallbacks struct {
	handlers []func(events.Event)

	onResponse    func(segment string)
	onResponseEnd func()
	onStatus      func(status string)
	onBusyChanged func(busy bool)
	onHostSignal  func(signal events.HostSignalName)
}

func WithResponseCallback(callback func(segment string)) EngineOption {
	return func(e *Engine) { e.callbacks.onResponse = callback }
}

func WithResponseEndCallback(callback func()) EngineOption {
	return func(e *Engine) { e.callbacks.onResponseEnd = callback }
}

// WithStatusCallback registers a callback for short status lines, e.g.
// "Playback blocked".
func WithStatusCallback(callback func(status string)) EngineOption {
	return func(e *Engine) { e.callbacks.onStatus = callback }
}

// WithBusyCallback registers a callback invoked when tools start or stop
// running.
func WithBusyCallback(callback func(busy bool)) EngineOption {
	return func(e *Engine) { e.callbacks.onBusyChanged = callback }
}

func WithHostSignalCallback(callback func(signal events.HostSignalName)) EngineOption {
	return func(e *Engine) { e.callbacks.onHostSignal = callback }
}
