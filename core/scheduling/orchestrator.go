// Package scheduling checks calendar availability and books meetings on
// behalf of the agent.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultTitle         = "Meeting"
	DefaultMeetingLength = 30 * time.Minute

	widenedHorizon = 8 * time.Hour
)

var (
	ErrMissingLeadID = errors.New("leadId is required to schedule a meeting")
	ErrMissingWindow = errors.New("startISO and endISO are required")
	ErrInvalidWindow = errors.New("window must end after it starts")
)

// Window is the last availability window that was checked.
type Window struct {
	StartISO    string
	EndISO      string
	TimeZone    string
	CalendarIDs []string
}

type Orchestrator struct {
	calendar Calendar
	timeZone string
	location *time.Location

	mu   sync.Mutex
	last *Window
}

type Option func(*Orchestrator)

// WithLocation sets the zone used when a request carries none. Without it
// the host zone from LocalZone is used.
func WithLocation(loc *time.Location) Option {
	return func(o *Orchestrator) {
		switch loc {
		case nil:
		case time.Local:
			o.timeZone, o.location = LocalZone()
		default:
			o.timeZone, o.location = loc.String(), loc
		}
	}
}

func New(calendar Calendar, opts ...Option) *Orchestrator {
	o := &Orchestrator{calendar: calendar}
	o.timeZone, o.location = LocalZone()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LastWindow returns the most recently checked window, if any.
func (o *Orchestrator) LastWindow() (Window, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Window{}, false
	}
	return *o.last, true
}

type AvailabilityResult struct {
	Window      Interval
	TimeZone    string
	CalendarIDs []string
	Overlaps    []Interval
	// Suggestion is the first free slot of the requested length when the
	// window is booked.
	Suggestion *Interval
	// Widened is set when the suggestion search had to look past the window.
	Widened bool

	location *time.Location
}

func (r AvailabilityResult) Booked() bool {
	return len(r.Overlaps) > 0
}

// BookableSlot is the window itself when free, else the suggestion.
func (r AvailabilityResult) BookableSlot() (Interval, bool) {
	if !r.Booked() {
		return r.Window, true
	}
	if r.Suggestion != nil {
		return *r.Suggestion, true
	}
	return Interval{}, false
}

func (r AvailabilityResult) Output() map[string]any {
	overlaps := make([]map[string]string, 0, len(r.Overlaps))
	for _, overlap := range r.Overlaps {
		overlaps = append(overlaps, map[string]string{"start": overlap.StartISO(), "end": overlap.EndISO()})
	}

	output := map[string]any{
		"startISO":    r.Window.StartISO(),
		"endISO":      r.Window.EndISO(),
		"timeZone":    r.TimeZone,
		"calendarIds": r.CalendarIDs,
		"slotBooked":  r.Booked(),
		"overlaps":    overlaps,
	}
	if r.Suggestion != nil {
		output["suggestion"] = map[string]string{"startISO": r.Suggestion.StartISO(), "endISO": r.Suggestion.EndISO()}
	}
	return output
}

func (r AvailabilityResult) Narration() string {
	window := describe(r.Window, r.location)
	if !r.Booked() {
		return fmt.Sprintf("The calendar is free %s.", window)
	}

	conflicts := "one conflict"
	if len(r.Overlaps) > 1 {
		conflicts = fmt.Sprintf("%d conflicts", len(r.Overlaps))
	}
	if r.Suggestion == nil {
		return fmt.Sprintf("The calendar is busy %s (%s) and no free slot was found in the following %d hours.", window, conflicts, int(widenedHorizon.Hours()))
	}
	return fmt.Sprintf("The calendar is busy %s (%s). The next free slot is %s.", window, conflicts, describe(*r.Suggestion, r.location))
}

func (o *Orchestrator) CheckAvailability(ctx context.Context, request AvailabilityRequest) (AvailabilityResult, error) {
	ctx, span := tracer.Start(ctx, "check availability")
	defer span.End()

	timeZone, loc := o.zone(request.TimeZone)
	window, err := parseWindow(request.StartISO, request.EndISO, loc)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AvailabilityResult{}, err
	}

	calendarIDs := request.CalendarIDs
	if len(calendarIDs) == 0 {
		calendarIDs = o.preferences(ctx).AvailabilityIDs()
	}
	span.SetAttributes(
		attribute.String("availability.start", window.StartISO()),
		attribute.String("availability.end", window.EndISO()),
		attribute.StringSlice("availability.calendar_ids", calendarIDs),
	)

	query := AvailabilityQuery{Start: window.Start, End: window.End, TimeZone: timeZone, CalendarIDs: calendarIDs}
	availability, err := o.calendar.Availability(ctx, query)
	if err != nil {
		err = fmt.Errorf("failed to query availability: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AvailabilityResult{}, err
	}

	o.mu.Lock()
	o.last = &Window{StartISO: window.StartISO(), EndISO: window.EndISO(), TimeZone: timeZone, CalendarIDs: calendarIDs}
	o.mu.Unlock()

	result := AvailabilityResult{
		Window:      window,
		TimeZone:    timeZone,
		CalendarIDs: calendarIDs,
		Overlaps:    Overlapping(window, availability.Busy),
		location:    loc,
	}
	span.SetAttributes(attribute.Int("availability.overlaps", len(result.Overlaps)))
	if !result.Booked() {
		return result, nil
	}

	if slot, ok := FirstFit(availability.Free, window.Start, window.Duration()); ok {
		result.Suggestion = &slot
		return result, nil
	}

	span.AddEvent("widening search")
	result.Widened = true
	query.Start, query.End = window.End, window.End.Add(widenedHorizon)
	widened, err := o.calendar.Availability(ctx, query)
	if err != nil {
		span.RecordError(err)
		logger.Warn("failed to query widened availability", "error", err)
		return result, nil
	}
	if slot, ok := FirstFit(widened.Free, window.Start, window.Duration()); ok {
		result.Suggestion = &slot
	}
	return result, nil
}

type ScheduleResult struct {
	Request BookingRequest
	Booking Booking
}

func (r ScheduleResult) Output() map[string]any {
	output := map[string]any{
		"title":    r.Request.Title,
		"startISO": r.Request.Start,
		"endISO":   r.Request.End,
		"timeZone": r.Request.TimeZone,
	}
	if r.Booking.EventID != "" {
		output["eventId"] = r.Booking.EventID
	}
	if link := r.Booking.Link(); link != "" {
		output["link"] = link
	}
	return output
}

func (r ScheduleResult) Narration() string {
	narration := fmt.Sprintf("Booked %q from %s to %s (%s).", r.Request.Title, r.Request.Start, r.Request.End, r.Request.TimeZone)
	if link := r.Booking.Link(); link != "" {
		narration += " Meeting link: " + link
	}
	return narration
}

// ScheduleMeeting fills the request from defaults and the last checked window
// and books it. Nothing is sent when the lead or the window is missing.
func (o *Orchestrator) ScheduleMeeting(ctx context.Context, request ScheduleRequest) (ScheduleResult, error) {
	if strings.TrimSpace(request.LeadID) == "" {
		return ScheduleResult{}, ErrMissingLeadID
	}

	ctx, span := tracer.Start(ctx, "schedule meeting")
	defer span.End()

	last, hasLast := o.LastWindow()
	if request.TimeZone == "" && hasLast {
		request.TimeZone = last.TimeZone
	}
	timeZone, loc := o.zone(request.TimeZone)

	startISO, endISO := request.StartISO, request.EndISO
	if startISO == "" && endISO == "" && hasLast {
		startISO, endISO = last.StartISO, last.EndISO
	}
	if startISO == "" {
		err := ErrMissingWindow
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScheduleResult{}, err
	}

	start, err := ParseTime(startISO, loc)
	if err != nil {
		err = fmt.Errorf("invalid startISO: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScheduleResult{}, err
	}
	end := start.Add(DefaultMeetingLength)
	if endISO != "" {
		if end, err = ParseTime(endISO, loc); err != nil {
			err = fmt.Errorf("invalid endISO: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return ScheduleResult{}, err
		}
	}
	if !end.After(start) {
		span.RecordError(ErrInvalidWindow)
		span.SetStatus(codes.Error, ErrInvalidWindow.Error())
		return ScheduleResult{}, ErrInvalidWindow
	}

	title := request.Title
	if title == "" {
		title = DefaultTitle
	}
	calendarID := request.CalendarID
	if calendarID == "" {
		calendarID = o.preferences(ctx).BookingID()
	}

	booking := BookingRequest{
		Title:          title,
		Description:    request.Description,
		Start:          formatISO(start),
		End:            formatISO(end),
		TimeZone:       timeZone,
		Attendees:      request.Guests,
		Location:       request.Location,
		LeadID:         request.LeadID,
		CalendarID:     calendarID,
		ConferenceType: request.ConferenceType,
		Reminders:      request.Reminders,
		OrganizerEmail: request.OrganizerEmail,
	}
	if booking.Attendees == nil {
		booking.Attendees = []string{}
	}
	span.SetAttributes(
		attribute.String("booking.start", booking.Start),
		attribute.String("booking.end", booking.End),
		attribute.String("booking.calendar_id", booking.CalendarID),
	)

	result, err := o.calendar.Book(ctx, booking)
	if err != nil {
		err = fmt.Errorf("failed to book meeting: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ScheduleResult{}, err
	}

	return ScheduleResult{Request: booking, Booking: result}, nil
}

func (o *Orchestrator) preferences(ctx context.Context) Preferences {
	preferences, err := o.calendar.Preferences(ctx)
	if err != nil {
		logger.Warn("failed to load calendar preferences", "error", err)
		return Preferences{}
	}
	return preferences
}

func (o *Orchestrator) zone(timeZone string) (string, *time.Location) {
	if timeZone != "" {
		if loc, err := time.LoadLocation(timeZone); err == nil {
			return timeZone, loc
		}
		logger.Warn("unknown time zone, using default zone", "time_zone", timeZone, "default", o.timeZone)
	}
	return o.timeZone, o.location
}

func parseWindow(startISO, endISO string, loc *time.Location) (Interval, error) {
	if startISO == "" || endISO == "" {
		return Interval{}, ErrMissingWindow
	}
	start, err := ParseTime(startISO, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid startISO: %w", err)
	}
	end, err := ParseTime(endISO, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid endISO: %w", err)
	}
	if !end.After(start) {
		return Interval{}, ErrInvalidWindow
	}
	return Interval{Start: start, End: end}, nil
}

func describe(interval Interval, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start, end := interval.Start.In(loc), interval.End.In(loc)
	if start.YearDay() == end.YearDay() && start.Year() == end.Year() {
		return fmt.Sprintf("on %s from %s to %s", start.Format("Mon Jan 2"), start.Format("3:04 PM"), end.Format("3:04 PM MST"))
	}
	return fmt.Sprintf("from %s to %s", start.Format("Mon Jan 2 3:04 PM"), end.Format("Mon Jan 2 3:04 PM MST"))
}
