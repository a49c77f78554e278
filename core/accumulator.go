package orchestration

import (
	"strings"
	"time"

	"github.com/koscakluka/ema-realtime/core/realtime"
	"github.com/koscakluka/ema-realtime/core/tools"
)

// pendingCall is a tool call whose arguments are still streaming in.
type pendingCall struct {
	rawName   string
	callID    string
	itemID    string
	buffer    strings.Builder
	startedAt time.Time
}

// accumulate advances the argument state machine and returns the calls that
// became complete.
func (e *Engine) accumulate(event realtime.Event) []toolCall {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch event.Kind {
	case realtime.KindToolCallHeader:
		if event.HasInlineArguments() {
			return []toolCall{newToolCall(event.Name, event.CallID, inlineArguments(event))}
		}
		if tools.Resolve(event.Name, nil).Name.TakesNoArguments() {
			return []toolCall{newToolCall(event.Name, event.CallID, map[string]any{})}
		}
		if pending := e.state.pending; pending != nil {
			logger.Warn("tool call header replaced an open call",
				"open_name", pending.rawName, "open_call_id", pending.callID,
				"name", event.Name, "call_id", event.CallID)
		}
		e.state.pending = e.openCall(event)
		return nil

	case realtime.KindArgumentsDelta:
		if e.state.pending == nil {
			e.state.pending = e.openCall(event)
		}
		pending := e.state.pending
		if pending.rawName == "" {
			pending.rawName = event.Name
		}
		if pending.callID == "" {
			pending.callID = event.CallID
		}
		pending.buffer.WriteString(event.Delta)
		return nil

	case realtime.KindArgumentsDone:
		pending := e.state.pending
		e.state.pending = nil
		if pending == nil {
			if event.Name == "" && !event.HasInlineArguments() {
				logger.Debug("ignoring arguments done without an open call", "type", event.Type)
				return nil
			}
			pending = &pendingCall{}
		}
		return []toolCall{finishCall(pending, event)}
	}

	return nil
}

// completeResponse finalizes an open call that received arguments and
// returns the function calls listed in the completed response.
func (e *Engine) completeResponse(event realtime.Event) []toolCall {
	var calls []toolCall

	e.mu.Lock()
	if pending := e.state.pending; pending != nil {
		e.state.pending = nil
		if strings.TrimSpace(pending.buffer.String()) != "" {
			calls = append(calls, finishCall(pending, realtime.Event{}))
		} else {
			logger.Debug("dropping open call without arguments at response end", "name", pending.rawName)
		}
	}
	e.mu.Unlock()

	for _, functionCall := range event.FunctionCalls {
		calls = append(calls, newToolCall(functionCall.Name, functionCall.CallID, parseArguments(functionCall.Name, functionCall.Arguments)))
	}
	return calls
}

func (e *Engine) openCall(event realtime.Event) *pendingCall {
	return &pendingCall{rawName: event.Name, callID: event.CallID, itemID: event.ItemID, startedAt: e.now()}
}

// finishCall resolves the call against its complete arguments. Inline
// arguments on the done event are used when nothing was streamed.
func finishCall(pending *pendingCall, event realtime.Event) toolCall {
	name := pending.rawName
	if name == "" {
		name = event.Name
	}
	callID := pending.callID
	if callID == "" {
		callID = event.CallID
	}

	text := pending.buffer.String()
	if strings.TrimSpace(text) == "" && event.HasInlineArguments() {
		return newToolCall(name, callID, inlineArguments(event))
	}
	return newToolCall(name, callID, parseArguments(name, text))
}

func inlineArguments(event realtime.Event) map[string]any {
	if event.ArgumentsObject != nil {
		return event.ArgumentsObject
	}
	if event.ArgumentsText != nil {
		return parseArguments(event.Name, *event.ArgumentsText)
	}
	return map[string]any{}
}

func parseArguments(name, text string) map[string]any {
	args, err := tools.ParseArguments(text)
	if err != nil {
		logger.Warn("using empty arguments for unparsable payload",
			"error", &ToolError{Kind: ErrorKindMalformed, Tool: tools.Resolve(name, nil).Name, Err: err})
	}
	return args
}
