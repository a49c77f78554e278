package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/realtime"
	"github.com/koscakluka/ema-realtime/core/tools"
)

// toolCall is a complete invocation ready for dispatch.
type toolCall struct {
	id      string
	name    tools.Name
	rawName string
	callID  string
	args    map[string]any
}

func newToolCall(rawName, callID string, args map[string]any) toolCall {
	if args == nil {
		args = map[string]any{}
	}
	return toolCall{
		id:      uuid.NewString(),
		name:    tools.Resolve(rawName, args).Name,
		rawName: rawName,
		callID:  callID,
		args:    args,
	}
}

func (c toolCall) argumentsText() string {
	encoded, err := json.Marshal(c.args)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func (c toolCall) event() events.ToolCall {
	return events.ToolCall{ID: c.id, CallID: c.callID, Name: c.name.String()}
}

// toolResult is what a handler reports back. The engine decides how it is
// surfaced.
type toolResult struct {
	output    map[string]any
	status    string
	narration string
	err       error
}

func failure(name tools.Name, kind ErrorKind, err error) toolResult {
	return toolResult{
		err:       &ToolError{Kind: kind, Tool: name, Err: err},
		status:    fmt.Sprintf("%s failed: %v", name, err),
		narration: fmt.Sprintf("The %s tool failed: %v. Let the user know briefly.", name, err),
	}
}

// payload is the tool output sent to the runtime.
func (r toolResult) payload() string {
	body := map[string]any{}
	for key, value := range r.output {
		body[key] = value
	}

	if r.err != nil {
		body["ok"] = false
		body["error"] = toolErrorMessage(r.err)
	} else {
		body["ok"] = true
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return `{"ok":false,"error":"unencodable tool output"}`
	}
	return string(encoded)
}

func toolErrorMessage(err error) string {
	if toolErr, ok := err.(*ToolError); ok {
		return toolErr.Err.Error()
	}
	return err.Error()
}

func (e *Engine) dispatch(ctx context.Context, call toolCall) {
	if e.closed.Load() {
		return
	}

	if call.name == tools.Unknown {
		logger.Debug("ignoring unresolved tool call",
			"error", &ToolError{Kind: ErrorKindUnknownTool, Tool: call.name, Err: fmt.Errorf("unresolved tool name %q", call.rawName)})
		return
	}

	arguments := call.argumentsText()
	nameAttribute := metric.WithAttributes(attribute.String("tool.name", call.name.String()))

	if call.callID != "" {
		if seen, _ := e.seenCalls.ContainsOrAdd(call.callID, struct{}{}); seen {
			duplicateCounter.Add(ctx, 1, nameAttribute)
			e.emit(events.NewToolCallSuppressed(call.event(), arguments))
			logger.Debug("suppressed already dispatched call", "name", call.name.String(), "call_id", call.callID)
			return
		}
	}
	if !e.tracker.admit(call.name, argumentsHash(call.args)) {
		duplicateCounter.Add(ctx, 1, nameAttribute)
		e.emit(events.NewToolCallSuppressed(call.event(), arguments))
		logger.Debug("suppressed duplicate tool call", "name", call.name.String(), "arguments", arguments)
		return
	}

	dispatchCounter.Add(ctx, 1, nameAttribute)
	e.busy.acquire()
	e.emit(events.NewToolCallStarted(call.event(), arguments))
	dispatchedAt := e.now()

	if call.name.IsAsync() {
		ctx = context.WithoutCancel(ctx)
		e.inflight.Add(1)
		go func() {
			defer e.inflight.Done()
			defer e.busy.release()
			e.finish(ctx, call, dispatchedAt, e.runHandler(ctx, call))
		}()
		return
	}

	defer e.busy.release()
	e.finish(ctx, call, dispatchedAt, e.runHandler(ctx, call))
}

func (e *Engine) runHandler(ctx context.Context, call toolCall) toolResult {
	ctx, span := tracer.Start(ctx, "dispatch tool", trace.WithAttributes(
		attribute.String("tool.name", call.name.String()),
		attribute.String("tool.call_id", call.callID),
	))
	defer span.End()

	result := panicSafeHandler(call.name, e.handlerFor(call.name))(ctx, call)
	if result.err != nil {
		failureCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("tool.name", call.name.String())))
		span.RecordError(result.err)
		span.SetStatus(codes.Error, result.err.Error())
	}
	return result
}

func (e *Engine) handlerFor(name tools.Name) toolHandler {
	switch name {
	case tools.StartSilence:
		return func(_ context.Context, call toolCall) toolResult { return e.startSilence(call.args) }
	case tools.StopSilence:
		return func(context.Context, toolCall) toolResult { return e.stopSilence() }
	case tools.HostStart, tools.HostStop, tools.HostInvite, tools.HostClosing, tools.HostResume:
		return func(_ context.Context, call toolCall) toolResult { return e.signalHost(call.name) }
	case tools.MediaPlay:
		return func(ctx context.Context, _ toolCall) toolResult { return e.playMedia(ctx) }
	case tools.MediaStop:
		return func(context.Context, toolCall) toolResult { return e.stopMedia() }
	case tools.TriviaStart:
		return func(_ context.Context, call toolCall) toolResult { return e.startTrivia(call.args) }
	case tools.TriviaAnswer:
		return func(_ context.Context, call toolCall) toolResult { return e.answerTrivia(call.args) }
	case tools.CheckAvailability:
		return func(ctx context.Context, call toolCall) toolResult { return e.checkAvailability(ctx, call.args) }
	case tools.ScheduleMeeting:
		return func(ctx context.Context, call toolCall) toolResult { return e.scheduleMeeting(ctx, call.args) }
	}

	return func(_ context.Context, call toolCall) toolResult {
		return failure(call.name, ErrorKindUnknownTool, fmt.Errorf("no handler for %q", call.rawName))
	}
}

// finish surfaces a result: status, lifecycle event, tool output and, unless
// the session is silent, a narration and a request to continue.
func (e *Engine) finish(ctx context.Context, call toolCall, dispatchedAt time.Time, result toolResult) {
	if e.closed.Load() {
		logger.Debug("discarding tool result after close", "name", call.name.String())
		return
	}

	payload := result.payload()
	e.recordCall(CallRecord{
		ID:           call.id,
		Name:         call.name,
		CallID:       call.callID,
		Arguments:    call.argumentsText(),
		OK:           result.err == nil,
		Error:        errorString(result.err),
		Status:       result.status,
		DispatchedAt: dispatchedAt,
		CompletedAt:  e.now(),
	})

	if result.status != "" {
		e.emit(events.NewStatusUpdated(result.status))
	}
	if result.err != nil {
		logger.Warn("tool call failed", "name", call.name.String(), "error", result.err)
		e.emit(events.NewToolCallFailed(call.event(), result.err.Error()))
	} else {
		e.emit(events.NewToolCallCompleted(call.event(), payload))
	}

	for _, output := range realtime.NewToolOutputs(call.callID, call.name.String(), payload) {
		_ = e.send(ctx, output)
	}

	if active, _ := e.Silence(); active {
		return
	}
	if result.narration != "" {
		_ = e.send(ctx, realtime.NewConversationMessage(realtime.RoleDeveloper, result.narration))
	}
	_ = e.send(ctx, realtime.NewResponseCreate())
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
