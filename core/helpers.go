package orchestration

import (
	"context"
	"fmt"

	"github.com/koscakluka/ema-realtime/core/tools"
)

type toolHandler func(context.Context, toolCall) toolResult

// panicSafeHandler turns a handler panic into a collaborator failure so one
// bad call cannot end the session.
func panicSafeHandler(name tools.Name, handler toolHandler) toolHandler {
	return func(ctx context.Context, call toolCall) (result toolResult) {
		defer func() {
			if recovered := recover(); recovered != nil {
				result = failure(name, ErrorKindCollaborator, fmt.Errorf("%s handler panicked: %v", name, recovered))
			}
		}()

		return handler(ctx, call)
	}
}
