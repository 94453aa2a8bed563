package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-research-be/internal/constant"
	"ai-research-be/pkg/llm"
)

// QueryExpander turns one user question into several web search queries.
type QueryExpander struct {
	llm        llm.LLMProvider
	model      string
	maxQueries int
}

func NewQueryExpander(provider llm.LLMProvider, model string, maxQueries int) *QueryExpander {
	if maxQueries <= 0 {
		maxQueries = 3
	}
	return &QueryExpander{
		llm:        provider,
		model:      model,
		maxQueries: maxQueries,
	}
}

// Expand generates search queries for the question. The list is capped at
// maxQueries; an empty expansion falls back to the original question so the
// web pipeline always has something to search for.
func (e *QueryExpander) Expand(ctx context.Context, query string) ([]string, error) {
	raw, err := e.llm.GenerateJSON(ctx, query, querySchema,
		llm.WithModel(e.model),
		llm.WithSystem(constant.QueryExpansionSystemPrompt),
		llm.WithTemperature(0),
	)
	if err != nil {
		return nil, fmt.Errorf("query expansion: %w", err)
	}

	var expanded ExpandedQueries
	if err := json.Unmarshal([]byte(raw), &expanded); err != nil {
		return nil, fmt.Errorf("malformed expansion output: %w", err)
	}

	queries := make([]string, 0, e.maxQueries)
	for _, q := range expanded.ListOfQuery {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		queries = append(queries, q)
		if len(queries) == e.maxQueries {
			break
		}
	}

	if len(queries) == 0 {
		queries = []string{query}
	}
	return queries, nil
}
