package realtime

import "github.com/google/uuid"

const (
	typeSessionUpdate          = "session.update"
	typeResponseCreate         = "response.create"
	typeResponseCancel         = "response.cancel"
	typeConversationItemCreate = "conversation.item.create"
	typeFunctionCallOutput     = "response.function_call.output"
	typeToolOutput             = "response.tool_output"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleDeveloper Role = "developer"
)

// Tool is a tool definition as advertised in session.update.
type Tool struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

type TurnDetection struct {
	Type              string   `json:"type"`
	Threshold         *float64 `json:"threshold,omitempty"`
	PrefixPaddingMS   *int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMS *int     `json:"silence_duration_ms,omitempty"`
	CreateResponse    *bool    `json:"create_response,omitempty"`
}

type Session struct {
	Instructions            string         `json:"instructions"`
	Tools                   []Tool         `json:"tools"`
	ToolChoice              string         `json:"tool_choice,omitempty"`
	Voice                   string         `json:"voice,omitempty"`
	TurnDetection           *TurnDetection `json:"turn_detection,omitempty"`
	MaxResponseOutputTokens any            `json:"max_response_output_tokens,omitempty"`
}

type SessionUpdate struct {
	EventID string  `json:"event_id,omitempty"`
	Type    string  `json:"type"`
	Session Session `json:"session"`
}

func NewSessionUpdate(session Session) SessionUpdate {
	return SessionUpdate{EventID: newEventID(), Type: typeSessionUpdate, Session: session}
}

type ResponseCreate struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

func NewResponseCreate() ResponseCreate {
	return ResponseCreate{EventID: newEventID(), Type: typeResponseCreate}
}

type ResponseCancel struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
}

func NewResponseCancel() ResponseCancel {
	return ResponseCancel{EventID: newEventID(), Type: typeResponseCancel}
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type ConversationItem struct {
	Type    string        `json:"type"`
	Role    Role          `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
}

type ConversationItemCreate struct {
	EventID string           `json:"event_id,omitempty"`
	Type    string           `json:"type"`
	Item    ConversationItem `json:"item"`
}

// NewConversationMessage creates a text message item from the given role.
func NewConversationMessage(role Role, text string) ConversationItemCreate {
	return ConversationItemCreate{
		EventID: newEventID(),
		Type:    typeConversationItemCreate,
		Item: ConversationItem{
			Type:    "message",
			Role:    role,
			Content: []ContentPart{{Type: "input_text", Text: text}},
		},
	}
}

type ToolOutput struct {
	EventID string `json:"event_id,omitempty"`
	Type    string `json:"type"`
	CallID  string `json:"call_id,omitempty"`
	Name    string `json:"name"`
	Output  string `json:"output"`
}

// NewToolOutputs acknowledges a tool call. Both spellings are produced since
// runtimes differ in which one they accept.
func NewToolOutputs(callID, name, output string) []ToolOutput {
	return []ToolOutput{
		{EventID: newEventID(), Type: typeFunctionCallOutput, CallID: callID, Name: name, Output: output},
		{EventID: newEventID(), Type: typeToolOutput, CallID: callID, Name: name, Output: output},
	}
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}
