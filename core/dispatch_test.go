package orchestration

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/tools"
)

func TestDuplicateDeliveriesCollapseWithinWindow(t *testing.T) {
	clock := newFakeClock()
	media := &stubMedia{}
	recorder := &eventRecorder{}
	engine := NewEngine(WithChannel(&recordingChannel{}), WithMediaPlayer(media), WithClock(clock.Now), WithEventHandler(recorder.handle))

	header := `{"type":"response.function_call","name":"media_play"}`
	feed(t, engine, header)
	clock.Advance(999 * time.Millisecond)
	feed(t, engine, header)

	if media.playCount() != 1 {
		t.Fatalf("expected one play within the window, got %d", media.playCount())
	}
	if got := len(recorder.ofKind(events.KindToolCallSuppressed)); got != 1 {
		t.Fatalf("expected one suppressed event, got %d", got)
	}

	clock.Advance(1001 * time.Millisecond)
	feed(t, engine, header)
	if media.playCount() != 2 {
		t.Fatalf("expected a second play after the window, got %d", media.playCount())
	}
}

func TestDispatchTrackerComparesNameAndArguments(t *testing.T) {
	clock := newFakeClock()
	tracker := dispatchTracker{now: clock.Now}

	silence5 := argumentsHash(map[string]any{"seconds": 5})
	silence6 := argumentsHash(map[string]any{"seconds": 6})

	testCases := []struct {
		name     string
		tool     tools.Name
		hash     string
		expected bool
	}{
		{name: "first", tool: tools.StartSilence, hash: silence5, expected: true},
		{name: "repeat", tool: tools.StartSilence, hash: silence5, expected: false},
		{name: "other arguments", tool: tools.StartSilence, hash: silence6, expected: true},
		{name: "other tool", tool: tools.StopSilence, hash: silence6, expected: true},
		{name: "back to first", tool: tools.StartSilence, hash: silence5, expected: true},
	}

	for _, testCase := range testCases {
		if got := tracker.admit(testCase.tool, testCase.hash); got != testCase.expected {
			t.Fatalf("%s: expected admit=%t, got %t", testCase.name, testCase.expected, got)
		}
	}
}

func TestArgumentsHashIsBounded(t *testing.T) {
	hash := argumentsHash(map[string]any{"note": strings.Repeat("x", 1000)})
	if len(hash) != argsHashLimit {
		t.Fatalf("expected hash of length %d, got %d", argsHashLimit, len(hash))
	}
}

func TestBusyCounterNeverGoesNegative(t *testing.T) {
	var transitions []bool
	counter := busyCounter{onChange: func(busy bool) { transitions = append(transitions, busy) }}

	counter.release()
	counter.acquire()
	counter.acquire()
	counter.release()
	counter.release()
	counter.release()

	if counter.value() != 0 {
		t.Fatalf("expected counter to be 0, got %d", counter.value())
	}
	if len(transitions) != 2 || !transitions[0] || transitions[1] {
		t.Fatalf("expected busy then idle, got %v", transitions)
	}
}

func TestBusyTracksAsyncHandlers(t *testing.T) {
	calendar := &stubCalendar{release: make(chan struct{})}
	var busyStates []bool
	engine := NewEngine(
		WithChannel(&recordingChannel{}),
		WithCalendar(calendar),
		WithBusyCallback(func(busy bool) { busyStates = append(busyStates, busy) }),
	)

	feed(t, engine, `{"type":"response.function_call","name":"check_availability","arguments":"{\"startISO\":\"2025-11-23T10:00:00Z\",\"endISO\":\"2025-11-23T11:00:00Z\",\"calendarIds\":[\"primary\"]}"}`)
	if !engine.Busy() {
		t.Fatalf("expected engine to be busy while the calendar is queried")
	}

	close(calendar.release)
	engine.inflight.Wait()

	if engine.Busy() {
		t.Fatalf("expected engine to be idle after the handler settled")
	}
	if len(busyStates) != 2 || !busyStates[0] || busyStates[1] {
		t.Fatalf("expected busy then idle, got %v", busyStates)
	}
}

func TestFailedToolReportsErrorOutput(t *testing.T) {
	channel := &recordingChannel{}
	recorder := &eventRecorder{}
	var statuses []string
	engine := NewEngine(
		WithChannel(channel),
		WithMediaPlayer(&stubMedia{playErr: errors.New("autoplay denied")}),
		WithEventHandler(recorder.handle),
		WithStatusCallback(func(status string) { statuses = append(statuses, status) }),
	)

	feed(t, engine, `{"type":"response.function_call","name":"media_play","call_id":"call_1"}`)

	media := recorder.ofKind(events.KindMediaStatusUpdated)
	if len(media) != 1 || !media[0].(events.MediaStatusUpdated).Blocked {
		t.Fatalf("expected blocked media status, got %v", media)
	}
	if len(statuses) != 1 || statuses[0] != "Playback blocked" {
		t.Fatalf("expected blocked status, got %v", statuses)
	}

	var output map[string]any
	if err := json.Unmarshal([]byte(channel.toolOutputs()[0].Output), &output); err != nil {
		t.Fatalf("failed to decode tool output: %v", err)
	}
	if output["ok"] != false || !strings.Contains(output["error"].(string), "autoplay denied") {
		t.Fatalf("expected failed tool output, got %v", output)
	}
	if channel.responseCreates() != 1 {
		t.Fatalf("expected the conversation to continue after a failure")
	}

	failed := recorder.ofKind(events.KindToolCallFailed)
	if len(failed) != 1 || failed[0].(events.ToolCallFailed).CallID != "call_1" {
		t.Fatalf("expected the failure to reference call_1, got %v", failed)
	}
	for _, output := range channel.toolOutputs() {
		if output.CallID != "call_1" {
			t.Fatalf("expected outputs to reference call_1, got %q", output.CallID)
		}
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	channel := &recordingChannel{}
	recorder := &eventRecorder{}
	engine := NewEngine(WithChannel(channel), WithMediaPlayer(&stubMedia{panicOnPlay: true}), WithEventHandler(recorder.handle))

	feed(t, engine, `{"type":"response.function_call","name":"media_play"}`)

	failed := recorder.ofKind(events.KindToolCallFailed)
	if len(failed) != 1 {
		t.Fatalf("expected the panic to surface as a failure, got %d failures", len(failed))
	}
	record := engine.RecentCalls()[0]
	if record.OK || !strings.Contains(record.Error, "panicked") {
		t.Fatalf("expected a failed call record, got %+v", record)
	}
	if engine.Busy() {
		t.Fatalf("expected busy counter to be released")
	}
}

func TestRecentCallsAreBounded(t *testing.T) {
	clock := newFakeClock()
	engine := NewEngine(WithChannel(&recordingChannel{}), WithMediaPlayer(&stubMedia{}), WithClock(clock.Now))

	for range 15 {
		feed(t, engine, `{"type":"response.function_call","name":"media_play"}`)
		clock.Advance(2 * time.Second)
	}

	if got := len(engine.RecentCalls()); got != recentCallsCapacity {
		t.Fatalf("expected %d recent calls, got %d", recentCallsCapacity, got)
	}
}

func TestHostSignals(t *testing.T) {
	testCases := []struct {
		tool     string
		expected events.HostSignalName
	}{
		{tool: "host_start", expected: events.HostStart},
		{tool: "host_stop", expected: events.HostStop},
		{tool: "host_invite", expected: events.HostInviteNow},
		{tool: "host_closing", expected: events.HostClosing},
		{tool: "host_resume", expected: events.HostResume},
	}

	for _, testCase := range testCases {
		t.Run(testCase.tool, func(t *testing.T) {
			var signals []events.HostSignalName
			engine := NewEngine(
				WithChannel(&recordingChannel{}),
				WithHostSignalCallback(func(signal events.HostSignalName) { signals = append(signals, signal) }),
			)

			feed(t, engine, `{"type":"response_function_call","name":"`+testCase.tool+`"}`)

			if len(signals) != 1 || signals[0] != testCase.expected {
				t.Fatalf("expected %q, got %v", testCase.expected, signals)
			}
		})
	}
}

func TestTriviaGameThroughEngine(t *testing.T) {
	recorder := &eventRecorder{}
	engine := NewEngine(WithChannel(&recordingChannel{}), WithEventHandler(recorder.handle))

	feed(t, engine, `{"type":"response.function_call","name":"trivia_start","arguments":"{\"players\":[\"A\",\"B\"]}"}`)
	for i := range 10 {
		player := []string{"A", "B"}[i%2]
		correct := "false"
		if player == "A" {
			correct = "true"
		}
		feed(t, engine, `{"type":"response.function_call","name":"trivia_answer","arguments":"{\"player\":\"`+player+`\",\"correct\":`+correct+`}"}`)
	}

	finished := recorder.ofKind(events.KindTriviaFinished)
	if len(finished) != 1 || finished[0].(events.TriviaFinished).Winner != "A" {
		t.Fatalf("expected A to win, got %v", finished)
	}

	// answers after the game are ignored
	feed(t, engine, `{"type":"response.function_call","name":"trivia_answer","arguments":"{\"player\":\"B\",\"correct\":true}"}`)
	if got := len(recorder.ofKind(events.KindToolCallFailed)); got != 0 {
		t.Fatalf("expected no failures, got %d", got)
	}
}

func TestTextDeltasAreEmitted(t *testing.T) {
	var segments []string
	ended := false
	recorder := &eventRecorder{}
	engine := NewEngine(
		WithResponseCallback(func(segment string) { segments = append(segments, segment) }),
		WithResponseEndCallback(func() { ended = true }),
		WithEventHandler(recorder.handle),
	)

	feed(t, engine,
		`{"type":"response.output_text.delta","delta":"Hel"}`,
		`{"type":"response.output_audio_transcript.delta","delta":"lo"}`,
		`{"type":"response.done","response":{"output":[]}}`,
	)

	if strings.Join(segments, "") != "Hello" || !ended {
		t.Fatalf("expected Hello and a final event, got %v ended=%t", segments, ended)
	}

	recorded := recorder.ofKind(events.KindAssistantResponseSegment)
	if len(recorded) != 2 || recorded[0].(events.AssistantResponseSegment).Transcript || !recorded[1].(events.AssistantResponseSegment).Transcript {
		t.Fatalf("expected a text segment followed by a transcript segment, got %v", recorded)
	}
}

func TestClosedEngineRejectsMessages(t *testing.T) {
	engine := NewEngine()
	engine.Close()

	if err := engine.HandleMessage(context.Background(), []byte(`{"type":"response.done"}`)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestMalformedMessageIsReported(t *testing.T) {
	engine := NewEngine()
	if err := engine.HandleMessage(context.Background(), []byte(`not json`)); err == nil {
		t.Fatalf("expected malformed message to be reported")
	}
	if err := engine.HandleMessage(context.Background(), []byte(`{"type":"session.updated"}`)); err != nil {
		t.Fatalf("expected the engine to keep working, got %v", err)
	}
}
