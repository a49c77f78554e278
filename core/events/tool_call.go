package events

const (
	KindToolCallStarted    Kind = "tool_call.started"
	KindToolCallCompleted  Kind = "tool_call.completed"
	KindToolCallFailed     Kind = "tool_call.failed"
	KindToolCallSuppressed Kind = "tool_call.suppressed"

	KindBusyChanged Kind = "tool_state.busy_changed"
)

// ToolCall identifies one dispatch. ID is assigned locally; CallID is the
// runtime's call_id and may be empty for runtimes that do not send one.
type ToolCall struct {
	ID     string
	CallID string
	Name   string
}

type ToolCallStarted struct {
	Base
	ToolCall
	Arguments string
}

func NewToolCallStarted(call ToolCall, arguments string) ToolCallStarted {
	return ToolCallStarted{Base: NewBase(KindToolCallStarted), ToolCall: call, Arguments: arguments}
}

// ToolCallCompleted carries the output payload sent back to the runtime.
type ToolCallCompleted struct {
	Base
	ToolCall
	Response string
}

func NewToolCallCompleted(call ToolCall, response string) ToolCallCompleted {
	return ToolCallCompleted{Base: NewBase(KindToolCallCompleted), ToolCall: call, Response: response}
}

type ToolCallFailed struct {
	Base
	ToolCall
	Error string
}

func NewToolCallFailed(call ToolCall, err string) ToolCallFailed {
	return ToolCallFailed{Base: NewBase(KindToolCallFailed), ToolCall: call, Error: err}
}

// ToolCallSuppressed marks a repeat delivery that was not dispatched, either
// because its call_id was already seen or because it matched the previous
// dispatch within the duplicate window.
type ToolCallSuppressed struct {
	Base
	ToolCall
	Arguments string
}

func NewToolCallSuppressed(call ToolCall, arguments string) ToolCallSuppressed {
	return ToolCallSuppressed{Base: NewBase(KindToolCallSuppressed), ToolCall: call, Arguments: arguments}
}

// BusyChanged reports whether any tool is running.
type BusyChanged struct {
	Base
	Busy bool
}

func NewBusyChanged(busy bool) BusyChanged {
	return BusyChanged{Base: NewBase(KindBusyChanged), Busy: busy}
}
