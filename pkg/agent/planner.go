package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/llm"
)

// Planner produces the user-facing Markdown plan for an already decided
// route. It never changes the route, and a bad model answer degrades to a
// templated plan instead of failing the request.
type Planner struct {
	llm   llm.LLMProvider
	model string
	log   logger.ILogger
}

func NewPlanner(provider llm.LLMProvider, model string, log logger.ILogger) *Planner {
	return &Planner{
		llm:   provider,
		model: model,
		log:   log,
	}
}

func (p *Planner) Plan(ctx context.Context, query string, route int) (string, error) {
	if route < constant.RouteShallow || route > constant.RouteImages {
		return "", fmt.Errorf("invalid route %d", route)
	}

	input := fmt.Sprintf("[ROUTE]\n%d\n\n[USER_INPUT]\n%s", route, query)

	raw, err := p.llm.GenerateJSON(ctx, input, planSchema,
		llm.WithModel(p.model),
		llm.WithSystem(constant.PlannerSystemPrompt),
		llm.WithTemperature(0),
	)
	if err != nil {
		return p.fallback(route, "planner call failed", err), nil
	}

	var plan MarkdownPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return p.fallback(route, "malformed planner output", err), nil
	}
	if plan.PlanMarkdown == "" {
		return p.fallback(route, "planner returned empty plan", nil), nil
	}
	if plan.Route != route {
		// The input route stays authoritative.
		return p.fallback(route, "planner tried to change route", nil), nil
	}

	return plan.PlanMarkdown, nil
}

// fallback returns the minimal per-route plan used when the model cannot
// produce a usable one.
func (p *Planner) fallback(route int, reason string, err error) string {
	if p.log != nil {
		details := map[string]interface{}{"route": route}
		if err != nil {
			details["error"] = err.Error()
		}
		p.log.Warn("agent", "planner fallback: "+reason, details)
	}
	return fallbackPlans[route]
}

var fallbackPlans = map[int]string{
	constant.RouteShallow: "# Plan\n1. Answer the question directly from model knowledge.",
	constant.RouteWeb:     "# Plan\n1. Search the web for relevant sources.\n2. Extract and clean the page content.\n3. Answer grounded on the retrieved material.",
	constant.RouteDocs:    "# Plan\n1. Read the attached document.\n2. Index its content.\n3. Answer grounded on the most relevant passages.",
	constant.RouteImages:  "# Plan\n1. Describe the attached image.\n2. Index the description.\n3. Answer grounded on it.",
}
