package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/llm"
)

// Router picks the processing route for text-only requests. Requests with an
// attachment never reach it: the dispatcher forces the docs or images route
// directly.
type Router struct {
	llm   llm.LLMProvider
	model string
	log   logger.ILogger
}

func NewRouter(provider llm.LLMProvider, model string, log logger.ILogger) *Router {
	return &Router{
		llm:   provider,
		model: model,
		log:   log,
	}
}

// Route classifies the query into one of the four route codes. The model's
// pick is checked against deterministic phrase matching: when the text
// matches several route categories at once, the fixed priority order
// docs > images > web > shallow wins regardless of what the model chose.
func (r *Router) Route(ctx context.Context, query string) (int, error) {
	raw, err := r.llm.GenerateJSON(ctx, query, routeSchema,
		llm.WithModel(r.model),
		llm.WithSystem(constant.RouterSystemPrompt),
		llm.WithTemperature(0),
	)
	if err != nil {
		return 0, fmt.Errorf("router: %w", err)
	}

	var decision RouteDecision
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return 0, fmt.Errorf("malformed router output: %w", err)
	}
	if decision.Route < constant.RouteShallow || decision.Route > constant.RouteImages {
		return 0, fmt.Errorf("router returned invalid route %d", decision.Route)
	}

	route := resolveTie(query, decision.Route)
	if r.log != nil && route != decision.Route {
		r.log.Info("agent", "route tie-break applied", map[string]interface{}{
			"model_route": decision.Route,
			"final_route": route,
		})
	}
	return route, nil
}

// Phrase cues per route, used only to break ties deterministically.
var (
	docsCues   = []string{"docs", "document", "pdf", "my file", "this file", "the file", "attached file"}
	imagesCues = []string{"image", "photo", "picture", "screenshot"}
	webCues    = []string{"web", "internet", "online sources", "latest", "recent news", "current", "today", "up-to-date"}
)

// resolveTie enforces the routing priority docs > images > web > shallow when
// the text plausibly matches more than one category. With fewer than two
// matches the model decision stands.
func resolveTie(query string, modelRoute int) int {
	q := strings.ToLower(query)

	matched := make([]int, 0, 3)
	if matchesAny(q, docsCues) {
		matched = append(matched, constant.RouteDocs)
	}
	if matchesAny(q, imagesCues) {
		matched = append(matched, constant.RouteImages)
	}
	if matchesAny(q, webCues) {
		matched = append(matched, constant.RouteWeb)
	}

	if len(matched) < 2 {
		return modelRoute
	}
	// matched is already in priority order.
	return matched[0]
}

func matchesAny(query string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(query, cue) {
			return true
		}
	}
	return false
}
