package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type eventType string

const (
	eventResponseOutputTextDelta            eventType = "response.output_text.delta"
	eventResponseTextDelta                  eventType = "response.text.delta"
	eventResponseAudioTranscriptDelta       eventType = "response.audio_transcript.delta"
	eventResponseOutputAudioTranscriptDelta eventType = "response.output_audio_transcript.delta"

	eventResponseFunctionCall            eventType = "response.function_call"
	eventResponseToolCall                eventType = "response.tool_call"
	eventResponseFunctionCallUnderscored eventType = "response_function_call"
	eventResponseToolCallUnderscored     eventType = "response_tool_call"
	eventResponseOutputItemAdded         eventType = "response.output_item.added"

	eventResponseFunctionCallArgumentsDeltaDotted eventType = "response.function_call.arguments.delta"
	eventResponseToolCallArgumentsDeltaDotted     eventType = "response.tool_call.arguments.delta"
	eventResponseFunctionCallArgumentsDelta       eventType = "response.function_call_arguments.delta"
	eventResponseToolCallArgumentsDelta           eventType = "response.tool_call_arguments.delta"

	eventResponseFunctionCallArgumentsDoneDotted eventType = "response.function_call.arguments.done"
	eventResponseToolCallArgumentsDoneDotted     eventType = "response.tool_call.arguments.done"
	eventResponseFunctionCallArgumentsDone       eventType = "response.function_call_arguments.done"
	eventResponseToolCallArgumentsDone           eventType = "response.tool_call_arguments.done"
	eventResponseOutputItemDone                  eventType = "response.output_item.done"

	eventResponseDone      eventType = "response.done"
	eventResponseCompleted eventType = "response.completed"
)

const itemTypeFunctionCall = "function_call"

type envelope struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	CallID    string          `json:"call_id"`
	ItemID    string          `json:"item_id"`
	Delta     json.RawMessage `json:"delta"`
	Arguments json.RawMessage `json:"arguments"`
	Item      *envelopeItem   `json:"item"`
	Response  *struct {
		Output []envelopeItem `json:"output"`
	} `json:"response"`
}

type envelopeItem struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	CallID    string          `json:"call_id"`
	Arguments json.RawMessage `json:"arguments"`
}

// Classifier classifies inbound events and records each of them in an
// optional debug log.
type Classifier struct {
	debug *DebugLog
}

func NewClassifier(debug *DebugLog) *Classifier {
	return &Classifier{debug: debug}
}

func (c *Classifier) Classify(data []byte) (Event, error) {
	event, err := Classify(data)
	if err != nil {
		return event, err
	}
	if c != nil && c.debug != nil {
		c.debug.Append(event)
	}
	return event, nil
}

// Classify decodes one channel message and determines its kind. Messages
// that are not JSON objects are rejected; unrecognised types classify as
// KindOther.
func Classify(data []byte) (Event, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Event{}, fmt.Errorf("realtime message is not a JSON object")
	}

	var body envelope
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return Event{}, fmt.Errorf("error unmarshalling realtime message: %w", err)
	}

	event := Event{
		Kind:   KindOther,
		Type:   body.Type,
		Raw:    json.RawMessage(trimmed),
		Name:   strings.TrimSpace(body.Name),
		CallID: body.CallID,
		ItemID: body.ItemID,
	}

	switch eventType(body.Type) {
	case eventResponseOutputTextDelta,
		eventResponseTextDelta,
		eventResponseAudioTranscriptDelta,
		eventResponseOutputAudioTranscriptDelta:
		if delta, ok := rawString(body.Delta); ok {
			event.Kind = KindTextDelta
			event.Delta = delta
		}

	case eventResponseFunctionCall,
		eventResponseToolCall,
		eventResponseFunctionCallUnderscored,
		eventResponseToolCallUnderscored:
		event.Kind = KindToolCallHeader
		setInlineArguments(&event, body.Arguments)

	case eventResponseOutputItemAdded:
		if body.Item != nil && body.Item.Type == itemTypeFunctionCall {
			event.Kind = KindToolCallHeader
			fromItem(&event, *body.Item)
		}

	case eventResponseFunctionCallArgumentsDeltaDotted,
		eventResponseToolCallArgumentsDeltaDotted,
		eventResponseFunctionCallArgumentsDelta,
		eventResponseToolCallArgumentsDelta:
		if delta, ok := rawString(body.Delta); ok {
			event.Kind = KindArgumentsDelta
			event.Delta = delta
		}

	case eventResponseFunctionCallArgumentsDoneDotted,
		eventResponseToolCallArgumentsDoneDotted,
		eventResponseFunctionCallArgumentsDone,
		eventResponseToolCallArgumentsDone:
		event.Kind = KindArgumentsDone
		setInlineArguments(&event, body.Arguments)

	case eventResponseOutputItemDone:
		if body.Item != nil && body.Item.Type == itemTypeFunctionCall {
			event.Kind = KindArgumentsDone
			fromItem(&event, *body.Item)
		}

	case eventResponseDone, eventResponseCompleted:
		event.Kind = KindResponseDone
		if body.Response != nil {
			for _, item := range body.Response.Output {
				if item.Type != itemTypeFunctionCall {
					continue
				}
				arguments, _ := rawString(item.Arguments)
				if arguments == "" && isObject(item.Arguments) {
					arguments = string(item.Arguments)
				}
				event.FunctionCalls = append(event.FunctionCalls, FunctionCall{
					Name:      strings.TrimSpace(item.Name),
					CallID:    item.CallID,
					Arguments: arguments,
				})
			}
		}
	}

	return event, nil
}

func fromItem(event *Event, item envelopeItem) {
	if item.Name != "" {
		event.Name = strings.TrimSpace(item.Name)
	}
	if item.CallID != "" {
		event.CallID = item.CallID
	}
	if item.ID != "" {
		event.ItemID = item.ID
	}
	setInlineArguments(event, item.Arguments)
}

// setInlineArguments keeps non-empty string arguments and object arguments.
// An empty string is what runtimes send before streaming deltas, so it is
// treated as absent.
func setInlineArguments(event *Event, raw json.RawMessage) {
	if text, ok := rawString(raw); ok {
		if strings.TrimSpace(text) != "" {
			event.ArgumentsText = &text
		}
		return
	}

	if isObject(raw) {
		var object map[string]any
		if err := json.Unmarshal(raw, &object); err == nil && object != nil {
			event.ArgumentsObject = object
		}
	}
}

func rawString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
