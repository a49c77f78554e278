package tools

import (
	"regexp"
	"strings"
)

var separators = regexp.MustCompile(`[.\s-]+`)

var synonyms = map[string]Name{
	"mute":                  StartSilence,
	"silence":               StartSilence,
	"be_quiet":              StartSilence,
	"silence_start":         StartSilence,
	"pause_agent":           StartSilence,
	"unmute":                StopSilence,
	"silence_stop":          StopSilence,
	"end_silence":           StopSilence,
	"resume_agent":          StopSilence,
	"start_host":            HostStart,
	"host_mode_start":       HostStart,
	"stop_host":             HostStop,
	"host_mode_stop":        HostStop,
	"host_invite_now":       HostInvite,
	"invite_guest":          HostInvite,
	"host_close":            HostClosing,
	"closing":               HostClosing,
	"resume_host":           HostResume,
	"play":                  MediaPlay,
	"play_media":            MediaPlay,
	"play_music":            MediaPlay,
	"media_pause":           MediaStop,
	"pause_media":           MediaStop,
	"stop_media":            MediaStop,
	"stop_music":            MediaStop,
	"start_trivia":          TriviaStart,
	"trivia_begin":          TriviaStart,
	"answer_trivia":         TriviaAnswer,
	"trivia_response":       TriviaAnswer,
	"availability_check":    CheckAvailability,
	"check_calendar":        CheckAvailability,
	"calendar_availability": CheckAvailability,
	"book_meeting":          ScheduleMeeting,
	"schedule":              ScheduleMeeting,
	"create_meeting":        ScheduleMeeting,
	"book_appointment":      ScheduleMeeting,
}

// schedulingFields only make sense when a meeting is being booked, so their
// presence turns a window check into a booking.
var schedulingFields = []string{
	"title",
	"guests",
	"conferenceType",
	"organizerEmail",
	"reminders",
	"location",
	"description",
	"leadId",
}

// Resolution is the outcome of resolving a runtime-supplied tool name.
type Resolution struct {
	Name Name
	// Normalized is the normalized raw name, kept for names that did not map
	// onto a known tool.
	Normalized string
	// Inferred is set when the name was derived from the argument shape.
	Inferred bool
}

// Normalize lowercases a raw name and collapses dots, whitespace and dashes
// into underscores.
func Normalize(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = separators.ReplaceAllString(normalized, "_")
	return strings.Trim(normalized, "_")
}

// Resolve maps a raw tool name and the arguments known so far onto a
// canonical tool. The argument shape is only consulted when the name is
// absent or literally "unknown".
func Resolve(raw string, args map[string]any) Resolution {
	normalized := Normalize(raw)
	if normalized != "" && normalized != Unknown.String() {
		if name, ok := Parse(normalized); ok {
			return Resolution{Name: name, Normalized: normalized}
		}
		if name, ok := synonyms[normalized]; ok {
			return Resolution{Name: name, Normalized: normalized}
		}
		return Resolution{Name: Unknown, Normalized: normalized}
	}

	name := InferFromArguments(args)
	return Resolution{Name: name, Normalized: normalized, Inferred: name != Unknown}
}

// InferFromArguments guesses the tool from the argument shape alone.
func InferFromArguments(args map[string]any) Name {
	if len(args) == 0 {
		return Unknown
	}

	if present(args, "seconds") || present(args, "duration") {
		return StartSilence
	}
	if _, ok := args["players"].([]any); ok {
		return TriviaStart
	}
	if _, ok := args["players"].([]string); ok {
		return TriviaStart
	}
	if _, ok := args["player"].(string); ok {
		if _, ok := args["correct"].(bool); ok {
			return TriviaAnswer
		}
	}
	if present(args, "startISO") && present(args, "endISO") {
		if HasSchedulingFields(args) {
			return ScheduleMeeting
		}
		return CheckAvailability
	}

	return Unknown
}

// HasSchedulingFields reports whether args carry any booking-only field.
func HasSchedulingFields(args map[string]any) bool {
	for _, field := range schedulingFields {
		if present(args, field) {
			return true
		}
	}
	return false
}

func present(args map[string]any, key string) bool {
	value, ok := args[key]
	return ok && value != nil
}
