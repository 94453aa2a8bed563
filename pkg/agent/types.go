package agent

import "encoding/json"

// Validation is the shared validator verdict. State true means the check
// passed and Text is empty; state false carries a user-facing message with
// clarifying questions.
type Validation struct {
	State bool   `json:"state"`
	Text  string `json:"text"`
}

// ValidationResult is the outcome of the full validation stage.
type ValidationResult struct {
	NormalizedPrompt string
	AutoPrompt       bool
	Meaningful       Validation
	Routing          *Validation // nil when the meaningful check already failed
}

// RouteDecision is the router agent output.
type RouteDecision struct {
	Route int `json:"route"`
}

// MarkdownPlan is the planner agent output.
type MarkdownPlan struct {
	Route        int    `json:"route"`
	PlanMarkdown string `json:"plan_markdown"`
}

// ExpandedQueries is the query expansion agent output.
type ExpandedQueries struct {
	ListOfQuery []string `json:"list_of_query"`
}

// JSON schemas passed to the model as output constraints.
var (
	validationSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"state": {"type": "boolean"},
			"text": {"type": "string"}
		},
		"required": ["state", "text"]
	}`)

	routeSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"route": {"type": "integer"}
		},
		"required": ["route"]
	}`)

	planSchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"route": {"type": "integer"},
			"plan_markdown": {"type": "string"}
		},
		"required": ["route", "plan_markdown"]
	}`)

	querySchema = json.RawMessage(`{
		"type": "object",
		"properties": {
			"list_of_query": {
				"type": "array",
				"items": {"type": "string"}
			}
		},
		"required": ["list_of_query"]
	}`)
)
