package orchestration

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-realtime/core/events"
)

func TestSessionInstructions(t *testing.T) {
	testCases := []struct {
		name     string
		config   SessionConfig
		expected string
	}{
		{
			name:     "prompt only",
			config:   SessionConfig{Prompt: "  Be brief.  "},
			expected: "Be brief.\n\n<!-- instructions v1 -->",
		},
		{
			name:     "details only",
			config:   SessionConfig{Language: "German", Guests: []string{"Ana", "Ben"}},
			expected: "Always respond in German.\nGuests present: Ana, Ben.\n\n<!-- instructions v1 -->",
		},
		{
			name:   "everything",
			config: SessionConfig{Prompt: "Host the show.", Language: "English", Platform: "Zoom", Role: "co-host"},
			expected: "Host the show.\n\nAlways respond in English.\nYou are speaking on Zoom.\n" +
				"Your role in this session: co-host.\n\n<!-- instructions v1 -->",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.config.instructions(1); got != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestOpenSendsInstructionsTwice(t *testing.T) {
	channel := &recordingChannel{}
	recorder := &eventRecorder{}
	engine := NewEngine(
		WithChannel(channel),
		WithPromptSource(stubPromptSource{prompt: "Stored prompt."}),
		WithSessionConfig(SessionConfig{Language: "English"}),
		WithResendDelay(10*time.Millisecond),
		WithEventHandler(recorder.handle),
	)
	defer engine.Close()

	if err := engine.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recorder.waitFor(t, events.KindInstructionsSent, 2)

	updates := channel.sessionUpdates()
	if len(updates) != 2 {
		t.Fatalf("expected two session updates, got %d", len(updates))
	}
	for i, update := range updates {
		instructions := update.Session.Instructions
		if !strings.HasPrefix(instructions, "Stored prompt.\n\nAlways respond in English.") {
			t.Fatalf("update %d: unexpected instructions %q", i, instructions)
		}
		if tag := "<!-- instructions v" + strconv.Itoa(i+1) + " -->"; !strings.HasSuffix(instructions, tag) {
			t.Fatalf("update %d: expected tag %q in %q", i, tag, instructions)
		}
		if len(update.Session.Tools) != 13 {
			t.Fatalf("update %d: expected 13 tools, got %d", i, len(update.Session.Tools))
		}
		for _, tool := range update.Session.Tools {
			if tool.Type != "function" || tool.Name == "" {
				t.Fatalf("update %d: unexpected tool %+v", i, tool)
			}
		}
	}
	if engine.InstructionVersion() != 2 {
		t.Fatalf("expected version 2, got %d", engine.InstructionVersion())
	}
}

func TestOpenKeepsDefaultPromptWhenPullFails(t *testing.T) {
	channel := &recordingChannel{}
	engine := NewEngine(
		WithChannel(channel),
		WithPromptSource(stubPromptSource{err: errors.New("no prompt stored")}),
		WithSessionConfig(SessionConfig{Prompt: "Default prompt."}),
		WithResendDelay(time.Hour),
	)
	defer engine.Close()

	if err := engine.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := channel.sessionUpdates()[0].Session.Instructions; !strings.HasPrefix(got, "Default prompt.") {
		t.Fatalf("expected the default prompt, got %q", got)
	}
}

func TestUpdateSessionBeforeOpenIsDeferred(t *testing.T) {
	channel := &recordingChannel{}
	engine := NewEngine(WithChannel(channel), WithResendDelay(time.Hour))
	defer engine.Close()

	if err := engine.SetPrompt(context.Background(), "Later prompt."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(channel.sessionUpdates()); got != 0 {
		t.Fatalf("expected nothing sent before open, got %d updates", got)
	}

	if err := engine.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := channel.sessionUpdates()[0].Session.Instructions; !strings.HasPrefix(got, "Later prompt.") {
		t.Fatalf("expected the updated prompt, got %q", got)
	}

	if err := engine.UpdateSession(context.Background(), func(config *SessionConfig) { config.Role = "moderator" }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updates := channel.sessionUpdates()
	if len(updates) != 2 || !strings.Contains(updates[1].Session.Instructions, "moderator") {
		t.Fatalf("expected a second update with the new role, got %d updates", len(updates))
	}
}

func TestCloseCancelsPendingResend(t *testing.T) {
	channel := &recordingChannel{}
	engine := NewEngine(WithChannel(channel), WithResendDelay(20*time.Millisecond))

	if err := engine.Open(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	engine.Close()
	time.Sleep(60 * time.Millisecond)

	if got := len(channel.sessionUpdates()); got != 1 {
		t.Fatalf("expected the resend to be cancelled, got %d updates", got)
	}
	if err := engine.Open(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestSendTextAndCancel(t *testing.T) {
	channel := &recordingChannel{}
	engine := NewEngine(WithChannel(channel))

	if err := engine.SendText(context.Background(), "hi there"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.CancelResponse(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages := channel.conversationItems("user")
	if len(messages) != 1 || channel.responseCreates() != 1 {
		t.Fatalf("expected one user message and one response request")
	}
	if got := len(channel.snapshot()); got != 3 {
		t.Fatalf("expected three messages including the cancel, got %d", got)
	}
}
