package pipeline

import (
	"context"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/pkg/llm"
)

// runShallow answers directly from model knowledge. It never touches the
// vector store.
func (d *Dispatcher) runShallow(ctx context.Context, query string, out chan<- StreamEvent) error {
	stream, err := d.deps.LLM.ChatStream(ctx, []llm.Message{
		{Role: constant.OllamaRoleUser, Content: query},
	}, llm.WithModel(d.cfg.ChatModel))
	if err != nil {
		return fmt.Errorf("shallow answer: %w", err)
	}
	return d.relay(ctx, stream, out)
}
