package orchestration

import (
	"errors"
	"fmt"

	"github.com/koscakluka/ema-realtime/core/tools"
)

var (
	ErrClosed   = errors.New("engine closed")
	ErrSilenced = errors.New("silence window is active")
)

type ErrorKind uint8

const (
	// ErrorKindMalformed marks arguments that could not be parsed.
	ErrorKindMalformed ErrorKind = iota + 1
	ErrorKindUnknownTool
	// ErrorKindMissingField marks a call rejected locally before any
	// collaborator was contacted.
	ErrorKindMissingField
	ErrorKindCollaborator
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindMalformed:
		return "malformed"
	case ErrorKindUnknownTool:
		return "unknown tool"
	case ErrorKindMissingField:
		return "missing field"
	case ErrorKindCollaborator:
		return "collaborator"
	default:
		return "unknown"
	}
}

type ToolError struct {
	Kind ErrorKind
	Tool tools.Name
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tool, e.Kind, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
