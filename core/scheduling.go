package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/scheduling"
	"github.com/koscakluka/ema-realtime/core/tools"
)

var errNoCalendar = errors.New("no calendar configured")

func (e *Engine) checkAvailability(ctx context.Context, args map[string]any) toolResult {
	if e.scheduler == nil {
		return failure(tools.CheckAvailability, ErrorKindCollaborator, errNoCalendar)
	}

	availability, err := e.scheduler.CheckAvailability(ctx, scheduling.AvailabilityRequestFromArguments(args))
	if err != nil {
		return schedulingFailure(tools.CheckAvailability, err)
	}

	suggestedStart, suggestedEnd := "", ""
	if availability.Suggestion != nil {
		suggestedStart, suggestedEnd = availability.Suggestion.StartISO(), availability.Suggestion.EndISO()
	}
	e.emit(events.NewAvailabilityChecked(
		availability.Window.StartISO(), availability.Window.EndISO(),
		availability.Booked(), len(availability.Overlaps),
		suggestedStart, suggestedEnd,
	))

	status := "Slot is free"
	if availability.Booked() {
		status = "Slot is busy"
	}
	result := toolResult{output: availability.Output(), status: status, narration: availability.Narration()}

	if tools.HasSchedulingFields(args) {
		e.autoSchedule(ctx, args, availability, &result)
	}
	return result
}

// autoSchedule books the checked window, or the suggested one, when the
// availability call already carried booking details.
func (e *Engine) autoSchedule(ctx context.Context, args map[string]any, availability scheduling.AvailabilityResult, result *toolResult) {
	slot, ok := availability.BookableSlot()
	if !ok {
		result.output["autoScheduled"] = false
		return
	}

	request := scheduling.ScheduleRequestFromArguments(args)
	request.StartISO, request.EndISO = slot.StartISO(), slot.EndISO()
	if request.TimeZone == "" {
		request.TimeZone = availability.TimeZone
	}

	dispatchedAt := e.now()
	booking := e.bookMeeting(ctx, request)

	e.recordCall(CallRecord{
		ID:           uuid.NewString(),
		Name:         tools.ScheduleMeeting,
		Arguments:    fmt.Sprintf(`{"startISO":%q,"endISO":%q}`, request.StartISO, request.EndISO),
		OK:           booking.err == nil,
		Error:        errorString(booking.err),
		Status:       booking.status,
		DispatchedAt: dispatchedAt,
		CompletedAt:  e.now(),
		Synthesized:  true,
	})

	result.output["autoScheduled"] = booking.err == nil
	if booking.err != nil {
		result.output["bookingError"] = toolErrorMessage(booking.err)
	} else {
		result.output["booking"] = booking.output
		result.status = booking.status
	}
	result.narration += " " + booking.narration
}

func (e *Engine) scheduleMeeting(ctx context.Context, args map[string]any) toolResult {
	if e.scheduler == nil {
		return failure(tools.ScheduleMeeting, ErrorKindCollaborator, errNoCalendar)
	}
	return e.bookMeeting(ctx, scheduling.ScheduleRequestFromArguments(args))
}

func (e *Engine) bookMeeting(ctx context.Context, request scheduling.ScheduleRequest) toolResult {
	scheduled, err := e.scheduler.ScheduleMeeting(ctx, request)
	if err != nil {
		return schedulingFailure(tools.ScheduleMeeting, err)
	}

	e.emit(events.NewMeetingScheduled(scheduled.Request.Title, scheduled.Request.Start, scheduled.Request.End, scheduled.Booking.Link()))
	return toolResult{output: scheduled.Output(), status: "Meeting booked", narration: scheduled.Narration()}
}

func schedulingFailure(name tools.Name, err error) toolResult {
	switch {
	case errors.Is(err, scheduling.ErrMissingLeadID):
		result := failure(name, ErrorKindMissingField, err)
		result.status = "Can't book without a lead"
		return result
	case errors.Is(err, scheduling.ErrMissingWindow), errors.Is(err, scheduling.ErrInvalidWindow):
		return failure(name, ErrorKindMissingField, err)
	default:
		return failure(name, ErrorKindCollaborator, err)
	}
}
