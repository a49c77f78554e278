package events

const (
	KindAssistantResponseSegment Kind = "assistant_response.segment"
	KindAssistantResponseFinal   Kind = "assistant_response.final"
)

// AssistantResponseSegment is one streamed piece of the response. Transcript
// is set when the text is the transcript of spoken audio rather than a text
// output.
type AssistantResponseSegment struct {
	Base
	Segment    string
	Transcript bool
}

func NewAssistantResponseSegment(segment string, transcript bool) AssistantResponseSegment {
	return AssistantResponseSegment{Base: NewBase(KindAssistantResponseSegment), Segment: segment, Transcript: transcript}
}

// AssistantResponseFinal marks the end of a runtime response. ToolCalls is
// the number of function calls the response listed.
type AssistantResponseFinal struct {
	Base
	ToolCalls int
}

func NewAssistantResponseFinal(toolCalls int) AssistantResponseFinal {
	return AssistantResponseFinal{Base: NewBase(KindAssistantResponseFinal), ToolCalls: toolCalls}
}
