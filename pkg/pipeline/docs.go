package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/pkg/extractor"
)

// runDocs indexes the attached document into the conversation collection,
// then answers grounded on the nearest chunks. Without an attachment it
// retrieves from whatever the conversation already indexed.
func (d *Dispatcher) runDocs(ctx context.Context, query string, doc []byte, collection string, out chan<- StreamEvent) error {
	if len(doc) > 0 {
		chunks, err := extractor.ReadPDF(ctx, bytes.NewReader(doc), int64(len(doc)))
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}
		if len(chunks) > 0 {
			if err := d.indexTexts(ctx, collection, chunks); err != nil {
				return err
			}
		}
	}

	contextTexts, err := d.retrieve(ctx, collection, query)
	if err != nil {
		return err
	}
	return d.streamGrounded(ctx, query, contextTexts, constant.GroundedAnswerSystemPrompt, out)
}
