package orchestration

import (
	"fmt"
	"time"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/tools"
)

type silenceWindow struct {
	active    bool
	remaining int
	stop      chan struct{}
}

// Silence reports whether a silence window is active and how many seconds
// are left.
func (e *Engine) Silence() (active bool, remaining int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.silence.active, e.state.silence.remaining
}

// startSilence opens or restarts the silence window.
func (e *Engine) startSilence(args map[string]any) toolResult {
	seconds := tools.SilenceSeconds(args)
	stop := make(chan struct{})

	e.mu.Lock()
	if e.closed.Load() {
		e.mu.Unlock()
		return failure(tools.StartSilence, ErrorKindCollaborator, ErrClosed)
	}
	if previous := e.state.silence; previous.active {
		close(previous.stop)
	}
	e.state.silence = silenceWindow{active: true, remaining: seconds, stop: stop}
	e.mu.Unlock()

	e.muteAudio(true)
	e.emit(events.NewSilenceStarted(seconds))
	go e.countdown(stop)

	return toolResult{
		output: map[string]any{"seconds": seconds},
		status: fmt.Sprintf("Silent for %ds", seconds),
	}
}

func (e *Engine) stopSilence() toolResult {
	if !e.endSilence(true) {
		return toolResult{output: map[string]any{"active": false}, status: "Silence already off"}
	}

	e.emit(events.NewSilenceEnded(false))
	return toolResult{output: map[string]any{"active": false}, status: "Silence ended"}
}

// endSilence closes an active window, restoring audio when restore is set.
// It reports whether a window was open.
func (e *Engine) endSilence(restore bool) bool {
	e.mu.Lock()
	window := e.state.silence
	if !window.active {
		e.mu.Unlock()
		return false
	}
	close(window.stop)
	e.state.silence = silenceWindow{}
	e.mu.Unlock()

	if restore {
		e.muteAudio(false)
	}
	return true
}

func (e *Engine) countdown(stop chan struct{}) {
	ticker := time.NewTicker(e.silenceTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		e.mu.Lock()
		if e.state.silence.stop != stop {
			e.mu.Unlock()
			return
		}
		e.state.silence.remaining--
		remaining := e.state.silence.remaining
		expired := remaining <= 0
		if expired {
			e.state.silence = silenceWindow{}
		}
		e.mu.Unlock()

		e.emit(events.NewSilenceTick(remaining))
		if expired {
			e.muteAudio(false)
			e.emit(events.NewSilenceEnded(true))
			return
		}
	}
}

func (e *Engine) muteAudio(muted bool) {
	if e.audio == nil {
		return
	}

	e.audio.SetAgentAudioMuted(muted)
	if muted {
		if err := e.audio.StopMicrophone(); err != nil {
			logger.Warn("failed to stop microphone", "error", err)
		}
		return
	}
	if err := e.audio.StartMicrophone(); err != nil {
		logger.Warn("failed to restart microphone", "error", err)
	}
}
