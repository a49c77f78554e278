package scheduling

import (
	"math"

	"github.com/koscakluka/ema-realtime/core/tools"
)

type AvailabilityRequest struct {
	StartISO    string
	EndISO      string
	TimeZone    string
	CalendarIDs []string
}

func AvailabilityRequestFromArguments(args map[string]any) AvailabilityRequest {
	return AvailabilityRequest{
		StartISO:    tools.String(args, "startISO", "start"),
		EndISO:      tools.String(args, "endISO", "end"),
		TimeZone:    tools.String(args, "timeZone", "timezone"),
		CalendarIDs: tools.Strings(args, "calendarIds", "calendarId"),
	}
}

type ScheduleRequest struct {
	LeadID         string
	Title          string
	Description    string
	StartISO       string
	EndISO         string
	TimeZone       string
	Location       string
	CalendarID     string
	ConferenceType string
	OrganizerEmail string
	Guests         []string
	Reminders      []int
}

// ScheduleRequestFromArguments reads a booking from tool arguments, accepting
// the aliases runtimes tend to produce.
func ScheduleRequestFromArguments(args map[string]any) ScheduleRequest {
	return ScheduleRequest{
		LeadID:         tools.String(args, "leadId"),
		Title:          tools.String(args, "title"),
		Description:    tools.String(args, "description"),
		StartISO:       tools.String(args, "startISO", "start", "datetime"),
		EndISO:         tools.String(args, "endISO", "end"),
		TimeZone:       tools.String(args, "timeZone", "timezone"),
		Location:       tools.String(args, "location"),
		CalendarID:     tools.String(args, "calendarId"),
		ConferenceType: tools.String(args, "conferenceType"),
		OrganizerEmail: tools.String(args, "organizerEmail"),
		Guests:         tools.Strings(args, "guests", "attendees"),
		Reminders:      minutes(args["reminders"]),
	}
}

func minutes(value any) []int {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	reminders := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := tools.Number(map[string]any{"n": item}, "n"); ok && n >= 0 {
			reminders = append(reminders, int(math.Round(n)))
		}
	}
	return reminders
}
