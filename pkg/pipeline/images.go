package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/pkg/llm"
)

// runImages captions the attached image with the vision model, indexes the
// caption into the conversation collection, then answers from the nearest
// captions.
func (d *Dispatcher) runImages(ctx context.Context, query string, image []byte, collection string, out chan<- StreamEvent) error {
	if len(image) > 0 {
		caption, err := d.deps.LLM.Chat(ctx, []llm.Message{
			{
				Role:    constant.OllamaRoleUser,
				Content: constant.ImageCaptionPrompt,
				Images:  []string{base64.StdEncoding.EncodeToString(image)},
			},
		}, llm.WithModel(d.cfg.VisionModel))
		if err != nil {
			return fmt.Errorf("caption image: %w", err)
		}

		if caption != "" {
			if err := d.indexTexts(ctx, collection, []string{caption}); err != nil {
				return err
			}
		}
	}

	contextTexts, err := d.retrieve(ctx, collection, query)
	if err != nil {
		return err
	}
	return d.streamGrounded(ctx, query, contextTexts, "", out)
}
