// Package tools defines the closed set of tools the realtime runtime can
// invoke, how runtime-supplied names map onto them and the catalogue that is
// advertised to the runtime on every session update.
package tools

// Name is a canonical tool identifier.
type Name uint8

const (
	Unknown Name = iota
	StartSilence
	StopSilence
	HostStart
	HostStop
	HostInvite
	HostClosing
	HostResume
	MediaPlay
	MediaStop
	TriviaStart
	TriviaAnswer
	CheckAvailability
	ScheduleMeeting
)

var canonicalNames = [...]string{
	Unknown:           "unknown",
	StartSilence:      "start_silence",
	StopSilence:       "stop_silence",
	HostStart:         "host_start",
	HostStop:          "host_stop",
	HostInvite:        "host_invite",
	HostClosing:       "host_closing",
	HostResume:        "host_resume",
	MediaPlay:         "media_play",
	MediaStop:         "media_stop",
	TriviaStart:       "trivia_start",
	TriviaAnswer:      "trivia_answer",
	CheckAvailability: "check_availability",
	ScheduleMeeting:   "schedule_meeting",
}

func (n Name) String() string {
	if int(n) >= len(canonicalNames) {
		return canonicalNames[Unknown]
	}
	return canonicalNames[n]
}

// All returns every known tool, Unknown excluded, in catalogue order.
func All() []Name {
	names := make([]Name, 0, len(canonicalNames)-1)
	for n := StartSilence; int(n) < len(canonicalNames); n++ {
		names = append(names, n)
	}
	return names
}

// Parse returns the tool whose canonical name is exactly s.
func Parse(s string) (Name, bool) {
	for i, name := range canonicalNames {
		if i != int(Unknown) && name == s {
			return Name(i), true
		}
	}
	return Unknown, false
}

// TakesNoArguments reports whether the tool is defined without parameters.
// Such tools are dispatched as soon as their header arrives because some
// runtimes never emit an arguments-done event for them.
func (n Name) TakesNoArguments() bool {
	switch n {
	case MediaPlay, MediaStop,
		HostStart, HostStop, HostInvite, HostClosing, HostResume,
		StopSilence:
		return true
	default:
		return false
	}
}

// IsAsync reports whether the tool's effect completes after network calls.
func (n Name) IsAsync() bool {
	return n == CheckAvailability || n == ScheduleMeeting
}
