package tools

import (
	"sync"

	"github.com/invopop/jsonschema"
)

// Definition describes one tool advertised to the runtime.
type Definition struct {
	Name        string
	Description string
	// Parameters holds the *jsonschema.Schema of the tool arguments.
	Parameters any
}

var descriptions = map[Name]string{
	StartSilence:      "Stop talking and listening for a number of seconds. Use when asked to be quiet, mute or give the room a moment.",
	StopSilence:       "End an active silence early and resume the conversation.",
	HostStart:         "Start host mode for a live public space.",
	HostStop:          "Stop host mode.",
	HostInvite:        "Invite the next guest to speak right now while hosting.",
	HostClosing:       "Begin the closing segment of the hosted space.",
	HostResume:        "Resume hosting after a pause.",
	MediaPlay:         "Start or resume the media player.",
	MediaStop:         "Pause the media player.",
	TriviaStart:       "Start a five round trivia game for the named players.",
	TriviaAnswer:      "Record whether the current player answered the trivia question correctly.",
	CheckAvailability: "Check whether a proposed meeting window is free on the calendar and suggest an alternative when it is not.",
	ScheduleMeeting:   "Book a meeting with a CRM lead on the calendar.",
}

var argumentTypes = map[Name]any{
	StartSilence:      &SilenceArguments{},
	TriviaStart:       &TriviaStartArguments{},
	TriviaAnswer:      &TriviaAnswerArguments{},
	CheckAvailability: &CheckAvailabilityArguments{},
	ScheduleMeeting:   &ScheduleMeetingArguments{},
}

var (
	catalogueOnce sync.Once
	catalogue     []Definition
)

// Catalogue returns the definitions of every tool in catalogue order. The
// schemas are reflected once from the argument structs.
func Catalogue() []Definition {
	catalogueOnce.Do(func() {
		reflector := jsonschema.Reflector{DoNotReference: true, ExpandedStruct: true}
		for _, name := range All() {
			argumentType, ok := argumentTypes[name]
			if !ok {
				argumentType = &NoArguments{}
			}

			schema := reflector.Reflect(argumentType)
			schema.Version = ""
			schema.ID = ""

			catalogue = append(catalogue, Definition{
				Name:        name.String(),
				Description: descriptions[name],
				Parameters:  schema,
			})
		}
	})

	definitions := make([]Definition, len(catalogue))
	copy(definitions, catalogue)
	return definitions
}
