package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/koscakluka/ema-realtime/core/events"
)

// consoleAudio stands in for the browser audio graph; the console has no
// microphone or speaker to mute.
type consoleAudio struct{}

func (consoleAudio) SetAgentAudioMuted(muted bool) {
	slog.Info("agent audio", "muted", muted)
}

func (consoleAudio) StopMicrophone() error {
	slog.Info("microphone stopped")
	return nil
}

func (consoleAudio) StartMicrophone() error {
	slog.Info("microphone started")
	return nil
}

type consoleMedia struct {
	mu      sync.Mutex
	playing bool
}

func (m *consoleMedia) Play(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		slog.Debug("media already playing")
	}
	m.playing = true
	slog.Info("media playing")
	return nil
}

func (m *consoleMedia) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	slog.Info("media paused")
	return nil
}

func logEvent(event events.Event) {
	switch e := event.(type) {
	case events.ToolCallStarted:
		slog.Debug("tool call started", "id", e.ID, "call_id", e.CallID, "name", e.Name, "arguments", e.Arguments)
	case events.ToolCallFailed:
		slog.Warn("tool call failed", "id", e.ID, "call_id", e.CallID, "name", e.Name, "error", e.Error)
	case events.ToolCallSuppressed:
		slog.Debug("tool call suppressed", "name", e.Name)
	case events.SilenceStarted:
		slog.Info("silence started", "seconds", e.Seconds)
	case events.SilenceEnded:
		slog.Info("silence ended", "expired", e.Expired)
	case events.TriviaQuestionAsked:
		slog.Info("trivia question", "player", e.Player, "round", e.Round, "question", e.Question)
	case events.TriviaFinished:
		slog.Info("trivia finished", "winner", e.Winner, "summary", e.Summary)
	case events.AvailabilityChecked:
		slog.Info("availability checked", "start", e.StartISO, "end", e.EndISO, "booked", e.Booked, "suggested", e.SuggestedStartISO)
	case events.MeetingScheduled:
		slog.Info("meeting scheduled", "title", e.Title, "start", e.StartISO, "link", e.Link)
	case events.InstructionsSent:
		slog.Debug("instructions sent", "version", e.Version)
	default:
		slog.Debug("engine event", "namespace", event.Kind().Namespace(), "kind", event.Kind())
	}
}
