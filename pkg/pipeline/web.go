package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"ai-research-be/internal/constant"
)

// runWeb expands the query into search queries, gathers and deduplicates
// page content for each of them concurrently, indexes the chunks into the
// shared web collection and answers grounded on the nearest ones.
//
// A failed search query is skipped with a warning; embedding or store
// failures abort the request. Results merge in expanded-query order no
// matter which fetch finishes first.
func (d *Dispatcher) runWeb(ctx context.Context, query string, out chan<- StreamEvent) error {
	queries, err := d.deps.Expander.Expand(ctx, query)
	if err != nil {
		return fmt.Errorf("expand query: %w", err)
	}

	if !emit(ctx, out, weblinkEvent(strings.Join(queries, "\n"))) {
		return nil
	}

	cleaned := make([][]string, len(queries))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, webQuery := range queries {
		i, webQuery := i, webQuery
		group.Go(func() error {
			articles, err := d.deps.Web.SearchAndExtract(groupCtx, webQuery, d.cfg.LinksPerQuery)
			if err != nil {
				if d.deps.Log != nil {
					d.deps.Log.Warn("pipeline", "web query skipped", map[string]interface{}{
						"query": webQuery,
						"error": err.Error(),
					})
				}
				return nil
			}

			raw := make([]string, 0, len(articles))
			for _, article := range articles {
				raw = append(raw, article.Text)
			}
			cleaned[i] = d.deps.Dedup.Clean(raw)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var texts []string
	for _, part := range cleaned {
		texts = append(texts, part...)
	}

	chunks := d.deps.Chunker.SplitAll(texts, d.cfg.MinChunkLen)
	if len(chunks) > 0 {
		if err := d.indexTexts(ctx, d.webCollection(), chunks); err != nil {
			return err
		}
	}

	contextTexts, err := d.retrieve(ctx, d.webCollection(), query)
	if err != nil {
		return err
	}
	return d.streamGrounded(ctx, query, contextTexts, constant.GroundedWebAnswerSystemPrompt, out)
}

func (d *Dispatcher) webCollection() string {
	if d.cfg.WebCollection != "" {
		return d.cfg.WebCollection
	}
	return constant.WebSearchCollectionName
}
