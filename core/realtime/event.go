// Package realtime classifies the JSON events streamed by a realtime speech
// runtime and defines the control messages sent back to it.
package realtime

import "encoding/json"

// Kind is the semantic kind of an inbound realtime event.
type Kind uint8

const (
	KindOther Kind = iota
	KindTextDelta
	KindToolCallHeader
	KindArgumentsDelta
	KindArgumentsDone
	KindResponseDone
)

func (k Kind) String() string {
	switch k {
	case KindTextDelta:
		return "text_delta"
	case KindToolCallHeader:
		return "tool_call_header"
	case KindArgumentsDelta:
		return "arguments_delta"
	case KindArgumentsDone:
		return "arguments_done"
	case KindResponseDone:
		return "response_done"
	default:
		return "other"
	}
}

// Event is one classified inbound message. Which fields are set depends on
// Kind; Raw always holds the original payload.
type Event struct {
	Kind Kind
	Type string
	Raw  json.RawMessage

	// Name is the runtime-supplied tool name, empty when absent.
	Name   string
	CallID string
	ItemID string

	// Delta carries text for KindTextDelta and argument text for
	// KindArgumentsDelta.
	Delta string

	// ArgumentsText is set when the runtime sent the arguments inline as a
	// string, ArgumentsObject when it sent them as a JSON object.
	ArgumentsText   *string
	ArgumentsObject map[string]any

	// FunctionCalls lists the function call items of a completed response.
	FunctionCalls []FunctionCall
}

// HasInlineArguments reports whether arguments arrived with the event itself.
func (e Event) HasInlineArguments() bool {
	return e.ArgumentsText != nil || e.ArgumentsObject != nil
}

// IsTranscript reports whether a text delta transcribes spoken output.
func (e Event) IsTranscript() bool {
	switch eventType(e.Type) {
	case eventResponseAudioTranscriptDelta, eventResponseOutputAudioTranscriptDelta:
		return true
	}
	return false
}

// FunctionCall is a complete call reported inside a response.done payload.
type FunctionCall struct {
	Name      string
	CallID    string
	Arguments string
}
