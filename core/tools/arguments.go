package tools

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const DefaultSilenceSeconds = 60

// NoArguments describes tools that take no parameters.
type NoArguments struct{}

type SilenceArguments struct {
	Seconds  *float64 `json:"seconds,omitempty" jsonschema:"description=How many seconds the agent should stay silent,minimum=1"`
	Duration *float64 `json:"duration,omitempty" jsonschema:"description=Alias of seconds,minimum=1"`
}

type TriviaStartArguments struct {
	Players []string `json:"players" jsonschema:"description=Names of the players in turn order,minItems=1"`
}

type TriviaAnswerArguments struct {
	Player  string `json:"player" jsonschema:"description=Name of the player that answered"`
	Correct bool   `json:"correct" jsonschema:"description=Whether the answer was correct"`
}

type CheckAvailabilityArguments struct {
	StartISO    string   `json:"startISO" jsonschema:"description=Proposed start as an ISO-8601 timestamp,format=date-time"`
	EndISO      string   `json:"endISO" jsonschema:"description=Proposed end as an ISO-8601 timestamp,format=date-time"`
	TimeZone    string   `json:"timeZone,omitempty" jsonschema:"description=IANA time zone of the caller"`
	CalendarIDs []string `json:"calendarIds,omitempty" jsonschema:"description=Calendars to check, defaults to the stored selection"`
}

type ScheduleMeetingArguments struct {
	LeadID         string   `json:"leadId" jsonschema:"description=CRM lead the meeting is booked for"`
	Title          string   `json:"title" jsonschema:"description=Meeting title"`
	StartISO       string   `json:"startISO" jsonschema:"description=Start as an ISO-8601 timestamp,format=date-time"`
	EndISO         string   `json:"endISO" jsonschema:"description=End as an ISO-8601 timestamp,format=date-time"`
	TimeZone       string   `json:"timeZone,omitempty" jsonschema:"description=IANA time zone"`
	Description    string   `json:"description,omitempty"`
	Guests         []string `json:"guests,omitempty" jsonschema:"description=Guest email addresses"`
	Location       string   `json:"location,omitempty"`
	CalendarID     string   `json:"calendarId,omitempty"`
	ConferenceType string   `json:"conferenceType,omitempty" jsonschema:"enum=google_meet,enum=zoom,enum=phone,enum=none"`
	OrganizerEmail string   `json:"organizerEmail,omitempty"`
	Reminders      []int    `json:"reminders,omitempty" jsonschema:"description=Reminder offsets in minutes"`
}

// ParseArguments decodes an argument payload. Anything that is not a JSON
// object decodes to an empty object together with the decoding error.
func ParseArguments(text string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(text) == "" {
		return args, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return args, err
	}
	if decoded == nil {
		return args, nil
	}
	return decoded, nil
}

// SilenceSeconds reads seconds, falling back to duration and then to the
// default. Valid values are clamped to at least one second.
func SilenceSeconds(args map[string]any) int {
	for _, key := range []string{"seconds", "duration"} {
		if value, ok := Number(args, key); ok {
			return max(1, int(math.Round(value)))
		}
	}
	return DefaultSilenceSeconds
}

// Number reads a numeric argument that may also arrive as a numeric string.
func Number(args map[string]any, key string) (float64, bool) {
	switch value := args[key].(type) {
	case float64:
		return value, !math.IsNaN(value) && !math.IsInf(value, 0)
	case int:
		return float64(value), true
	case json.Number:
		f, err := value.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

// String reads the first non-empty string argument among keys.
func String(args map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := args[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Strings reads the first list-of-strings argument among keys. Non-string
// items are skipped.
func Strings(args map[string]any, keys ...string) []string {
	for _, key := range keys {
		switch value := args[key].(type) {
		case []string:
			return append([]string(nil), value...)
		case []any:
			items := make([]string, 0, len(value))
			for _, item := range value {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					items = append(items, strings.TrimSpace(s))
				}
			}
			return items
		case string:
			if strings.TrimSpace(value) == "" {
				continue
			}
			var items []string
			for _, part := range strings.Split(value, ",") {
				if part = strings.TrimSpace(part); part != "" {
					items = append(items, part)
				}
			}
			return items
		}
	}
	return nil
}

// Bool reads a boolean argument, accepting "true"/"false" strings.
func Bool(args map[string]any, key string) (bool, bool) {
	switch value := args[key].(type) {
	case bool:
		return value, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		return b, err == nil
	default:
		return false, false
	}
}
