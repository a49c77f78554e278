package orchestration

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/scheduling"
	"github.com/koscakluka/ema-realtime/core/tools"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 11, 23, hour, minute, 0, 0, time.UTC)
}

func lastOutput(t *testing.T, channel *recordingChannel) map[string]any {
	t.Helper()
	outputs := channel.toolOutputs()
	if len(outputs) == 0 {
		t.Fatalf("expected a tool output")
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(outputs[len(outputs)-1].Output), &output); err != nil {
		t.Fatalf("failed to decode tool output: %v", err)
	}
	return output
}

func TestCheckAvailabilityDoesNotBookWithoutDetails(t *testing.T) {
	channel := &recordingChannel{}
	recorder := &eventRecorder{}
	calendar := &stubCalendar{availability: scheduling.Availability{
		Busy: []scheduling.Interval{{Start: at(10, 30), End: at(10, 45)}},
		Free: []scheduling.Interval{{Start: at(10, 45), End: at(12, 0)}},
	}}
	engine := NewEngine(WithChannel(channel), WithCalendar(calendar, scheduling.WithLocation(time.UTC)), WithEventHandler(recorder.handle))

	feed(t, engine, `{"type":"response.function_call","name":"check_availability","call_id":"call_1","arguments":"{\"startISO\":\"2025-11-23T10:00:00Z\",\"endISO\":\"2025-11-23T11:00:00Z\"}"}`)
	engine.inflight.Wait()

	if calendar.bookingCount() != 0 {
		t.Fatalf("expected no booking, got %d", calendar.bookingCount())
	}

	output := lastOutput(t, channel)
	if output["ok"] != true || output["slotBooked"] != true {
		t.Fatalf("expected a successful busy result, got %v", output)
	}
	if _, ok := output["autoScheduled"]; ok {
		t.Fatalf("expected no booking attempt, got %v", output)
	}

	checked := recorder.ofKind(events.KindAvailabilityChecked)
	if len(checked) != 1 {
		t.Fatalf("expected one availability event, got %d", len(checked))
	}
	if event := checked[0].(events.AvailabilityChecked); !event.Booked || event.Overlaps != 1 || event.SuggestedStartISO != "2025-11-23T10:45:00Z" {
		t.Fatalf("unexpected availability event %+v", event)
	}

	narrations := channel.conversationItems("developer")
	if len(narrations) != 1 || channel.responseCreates() != 1 {
		t.Fatalf("expected one narration and one response request, got %d/%d", len(narrations), channel.responseCreates())
	}
}

func TestCheckAvailabilityBooksWhenDetailsArePresent(t *testing.T) {
	channel := &recordingChannel{}
	calendar := &stubCalendar{}
	engine := NewEngine(WithChannel(channel), WithCalendar(calendar, scheduling.WithLocation(time.UTC)))

	feed(t, engine, `{"type":"response.function_call","name":"check_availability","arguments":"{\"startISO\":\"2025-11-23T10:00:00Z\",\"endISO\":\"2025-11-23T11:00:00Z\",\"leadId\":\"lead_7\",\"title\":\"Demo\"}"}`)
	engine.inflight.Wait()

	if calendar.bookingCount() != 1 {
		t.Fatalf("expected exactly one booking, got %d", calendar.bookingCount())
	}
	booking := calendar.bookings[0]
	if booking.LeadID != "lead_7" || booking.Title != "Demo" || booking.Start != "2025-11-23T10:00:00Z" || booking.CalendarID != "primary" {
		t.Fatalf("unexpected booking %+v", booking)
	}

	output := lastOutput(t, channel)
	if output["autoScheduled"] != true {
		t.Fatalf("expected the slot to be booked, got %v", output)
	}

	records := engine.RecentCalls()
	if len(records) != 2 {
		t.Fatalf("expected two call records, got %d", len(records))
	}
	if !records[0].Synthesized || records[0].Name != tools.ScheduleMeeting || !records[0].OK {
		t.Fatalf("expected a synthesized booking record, got %+v", records[0])
	}
	if records[1].Name != tools.CheckAvailability || records[1].Synthesized {
		t.Fatalf("expected the availability record last, got %+v", records[1])
	}
}

func TestScheduleMeetingRequiresLead(t *testing.T) {
	channel := &recordingChannel{}
	calendar := &stubCalendar{}
	var statuses []string
	engine := NewEngine(
		WithChannel(channel),
		WithCalendar(calendar),
		WithStatusCallback(func(status string) { statuses = append(statuses, status) }),
	)

	feed(t, engine, `{"type":"response.function_call","name":"schedule_meeting","arguments":"{\"startISO\":\"2025-11-23T10:00:00Z\"}"}`)
	engine.inflight.Wait()

	if calendar.bookingCount() != 0 {
		t.Fatalf("expected no booking call, got %d", calendar.bookingCount())
	}
	if output := lastOutput(t, channel); output["ok"] != false {
		t.Fatalf("expected a failed output, got %v", output)
	}
	if len(statuses) != 1 || statuses[0] != "Can't book without a lead" {
		t.Fatalf("unexpected statuses %v", statuses)
	}
}

func TestScheduleMeetingUsesCheckedWindow(t *testing.T) {
	channel := &recordingChannel{}
	recorder := &eventRecorder{}
	calendar := &stubCalendar{}
	engine := NewEngine(WithChannel(channel), WithCalendar(calendar, scheduling.WithLocation(time.UTC)), WithEventHandler(recorder.handle))

	feed(t, engine, `{"type":"response.function_call","name":"check_availability","arguments":"{\"startISO\":\"2025-11-23T14:00:00Z\",\"endISO\":\"2025-11-23T14:45:00Z\"}"}`)
	engine.inflight.Wait()
	feed(t, engine, `{"type":"response.function_call","name":"schedule_meeting","arguments":"{\"leadId\":\"lead_1\"}"}`)
	engine.inflight.Wait()

	if calendar.bookingCount() != 1 {
		t.Fatalf("expected one booking, got %d", calendar.bookingCount())
	}
	if booking := calendar.bookings[0]; booking.Start != "2025-11-23T14:00:00Z" || booking.End != "2025-11-23T14:45:00Z" || booking.Title != scheduling.DefaultTitle {
		t.Fatalf("unexpected booking %+v", booking)
	}

	scheduled := recorder.ofKind(events.KindMeetingScheduled)
	if len(scheduled) != 1 || scheduled[0].(events.MeetingScheduled).Link != "https://meet/evt_1" {
		t.Fatalf("expected a meeting scheduled event with a link, got %v", scheduled)
	}
}

func TestSchedulingWithoutCalendarFails(t *testing.T) {
	channel := &recordingChannel{}
	engine := NewEngine(WithChannel(channel))

	feed(t, engine, `{"type":"response.function_call","name":"check_availability","arguments":"{\"startISO\":\"2025-11-23T10:00:00Z\"}"}`)
	engine.inflight.Wait()

	if output := lastOutput(t, channel); output["ok"] != false {
		t.Fatalf("expected a failed output, got %v", output)
	}
	if engine.Busy() {
		t.Fatalf("expected busy to be released")
	}
}

func TestResultsAfterCloseAreDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	channel := &recordingChannel{}
	calendar := &stubCalendar{release: make(chan struct{})}
	engine := NewEngine(WithChannel(channel), WithCalendar(calendar))

	feed(t, engine, `{"type":"response.function_call","name":"check_availability","arguments":"{\"startISO\":\"2025-11-23T10:00:00Z\",\"endISO\":\"2025-11-23T11:00:00Z\",\"calendarIds\":[\"primary\"]}"}`)
	engine.Close()
	close(calendar.release)
	engine.inflight.Wait()

	if got := len(channel.toolOutputs()); got != 0 {
		t.Fatalf("expected no outputs after close, got %d", got)
	}
	if len(engine.RecentCalls()) != 0 {
		t.Fatalf("expected no call records after close")
	}
}
