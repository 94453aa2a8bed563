package pipeline

import (
	"context"

	"ai-research-be/internal/constant"
)

// StreamEvent is one element of the answer stream. Events are serialized as
// newline-delimited JSON by the transport layer.
type StreamEvent struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

func planEvent(token string) StreamEvent {
	return StreamEvent{Role: constant.StreamRolePlan, Token: token}
}

func botEvent(token string) StreamEvent {
	return StreamEvent{Role: constant.StreamRoleBot, Token: token}
}

func weblinkEvent(token string) StreamEvent {
	return StreamEvent{Role: constant.StreamRoleWeblink, Token: token}
}

// emit pushes an event unless the request was cancelled. It reports whether
// the event was delivered.
func emit(ctx context.Context, out chan<- StreamEvent, event StreamEvent) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
