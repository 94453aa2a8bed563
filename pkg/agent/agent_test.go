package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"ai-research-be/internal/constant"
	"ai-research-be/pkg/llm"
)

// fakeLLM returns scripted JSON responses and counts calls.
type fakeLLM struct {
	responses []string
	calls     int
	err       error
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, opts ...llm.Option) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.calls > len(f.responses) {
		return "", errors.New("no scripted response left")
	}
	return f.responses[f.calls-1], nil
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	return "", nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.calls++
	return "", nil
}

func (f *fakeLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	f.calls++
	ch := make(chan llm.StreamChunk)
	close(ch)
	return ch, nil
}

func TestValidateAutoPromptSkipsModel(t *testing.T) {
	tests := []struct {
		name     string
		hasImage bool
		hasDoc   bool
		want     string
	}{
		{"image attachment", true, false, constant.AutoPromptImage},
		{"document attachment", false, true, constant.AutoPromptDocument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{}
			v := NewValidator(fake, "test-model", nil)

			result, err := v.Validate(context.Background(), "   ", tt.hasImage, tt.hasDoc)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}

			if fake.calls != 0 {
				t.Errorf("auto-prompt path must not call the model, got %d calls", fake.calls)
			}
			if !result.AutoPrompt {
				t.Error("expected AutoPrompt to be set")
			}
			if result.NormalizedPrompt != tt.want {
				t.Errorf("normalized prompt = %q, want %q", result.NormalizedPrompt, tt.want)
			}
			if !result.Meaningful.State || result.Routing == nil || !result.Routing.State {
				t.Error("both validations must pass on the auto-prompt path")
			}
		})
	}
}

func TestValidateEmptyInputRejectedWithoutModel(t *testing.T) {
	fake := &fakeLLM{}
	v := NewValidator(fake, "test-model", nil)

	result, err := v.Validate(context.Background(), "", false, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if fake.calls != 0 {
		t.Errorf("empty input path must not call the model, got %d calls", fake.calls)
	}
	if result.Meaningful.State {
		t.Error("empty input must fail the meaningful check")
	}
	if result.Meaningful.Text != constant.EmptyInputMessage {
		t.Errorf("message = %q, want %q", result.Meaningful.Text, constant.EmptyInputMessage)
	}
	if result.Routing != nil {
		t.Error("routing check must not run after a meaningful failure")
	}
}

func TestValidateMeaningfulFailureStopsPipeline(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		`{"state": false, "text": "Your input does not look like a question.\nWhat did you mean?"}`,
	}}
	v := NewValidator(fake, "test-model", nil)

	result, err := v.Validate(context.Background(), "asdasd qweqwe", false, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if fake.calls != 1 {
		t.Errorf("expected exactly 1 model call, got %d", fake.calls)
	}
	if result.Meaningful.State {
		t.Error("expected meaningful failure")
	}
	if result.Routing != nil {
		t.Error("routing must not run after meaningful failure")
	}
}

func TestValidateBothChecksPass(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		`{"state": true, "text": ""}`,
		`{"state": true, "text": ""}`,
	}}
	v := NewValidator(fake, "test-model", nil)

	result, err := v.Validate(context.Background(), "What does Docker mean?", false, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if fake.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", fake.calls)
	}
	if !result.Meaningful.State || result.Routing == nil || !result.Routing.State {
		t.Errorf("expected both checks to pass: %+v", result)
	}
}

func TestValidateMalformedOutputIsError(t *testing.T) {
	fake := &fakeLLM{responses: []string{`not json at all`}}
	v := NewValidator(fake, "test-model", nil)

	if _, err := v.Validate(context.Background(), "What does Docker mean?", false, false); err == nil {
		t.Fatal("expected error on malformed validator output")
	}
}

func TestValidateInconsistentVerdictIsProtocolError(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"pass with message", `{"state": true, "text": "but here is a question anyway"}`},
		{"fail without message", `{"state": false, "text": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{responses: []string{tt.raw}}
			v := NewValidator(fake, "test-model", nil)

			_, err := v.Validate(context.Background(), "What does Docker mean?", false, false)
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("expected ErrProtocol, got %v", err)
			}
		})
	}
}

func TestRouterAcceptsValidRoutes(t *testing.T) {
	for want := 0; want <= 3; want++ {
		fake := &fakeLLM{responses: []string{fmt.Sprintf(`{"route": %d}`, want)}}
		r := NewRouter(fake, "test-model", nil)

		got, err := r.Route(context.Background(), "how do compilers work internally")
		if err != nil {
			t.Fatalf("Route: %v", err)
		}
		if got != want {
			t.Errorf("route = %d, want %d", got, want)
		}
	}
}

func TestRouterRejectsInvalidRoute(t *testing.T) {
	for _, raw := range []string{`{"route": 7}`, `{"route": -1}`, `garbage`} {
		fake := &fakeLLM{responses: []string{raw}}
		r := NewRouter(fake, "test-model", nil)
		if _, err := r.Route(context.Background(), "anything"); err == nil {
			t.Errorf("raw %q should be rejected", raw)
		}
	}
}

func TestRouterTieBreakPriority(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		modelRoute int
		want       int
	}{
		{
			name:       "docs beats web",
			query:      "Based on my docs, what are the latest Docker features?",
			modelRoute: constant.RouteWeb,
			want:       constant.RouteDocs,
		},
		{
			name:       "plain document reference beats web",
			query:      "Compare this document with the latest official docs on the web",
			modelRoute: constant.RouteWeb,
			want:       constant.RouteDocs,
		},
		{
			name:       "docs beats images",
			query:      "Compare my documentation with my screenshot please",
			modelRoute: constant.RouteImages,
			want:       constant.RouteDocs,
		},
		{
			name:       "images beats web",
			query:      "Is the chart in my screenshot still current today?",
			modelRoute: constant.RouteWeb,
			want:       constant.RouteImages,
		},
		{
			name:       "single cue leaves model decision alone",
			query:      "Find the latest Docker release notes",
			modelRoute: constant.RouteWeb,
			want:       constant.RouteWeb,
		},
		{
			name:       "no cues leaves model decision alone",
			query:      "Explain container namespaces simply",
			modelRoute: constant.RouteShallow,
			want:       constant.RouteShallow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveTie(tt.query, tt.modelRoute); got != tt.want {
				t.Errorf("resolveTie(%q, %d) = %d, want %d", tt.query, tt.modelRoute, got, tt.want)
			}
		})
	}
}

func TestRouterOverridesModelOnTie(t *testing.T) {
	fake := &fakeLLM{responses: []string{`{"route": 1}`}}
	r := NewRouter(fake, "test-model", nil)

	got, err := r.Route(context.Background(), "Compare this document with the latest official docs on the web")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if got != constant.RouteDocs {
		t.Errorf("route = %d, want %d", got, constant.RouteDocs)
	}
}

func TestPlannerAcceptsMatchingPlan(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		`{"route": 0, "plan_markdown": "# Plan\n1. Answer from model knowledge about Docker."}`,
	}}
	p := NewPlanner(fake, "test-model", nil)

	plan, err := p.Plan(context.Background(), "What is Docker?", constant.RouteShallow)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !strings.Contains(plan, "Docker") {
		t.Errorf("model plan not used: %q", plan)
	}
}

func TestPlannerFallsBackWithoutFailing(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"route override", `{"route": 1, "plan_markdown": "# Plan\n1. Search the web."}`},
		{"empty plan", `{"route": 0, "plan_markdown": ""}`},
		{"malformed output", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeLLM{responses: []string{tt.raw}}
			p := NewPlanner(fake, "test-model", nil)

			plan, err := p.Plan(context.Background(), "What is Docker?", constant.RouteShallow)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if plan != fallbackPlans[constant.RouteShallow] {
				t.Errorf("expected fallback plan, got %q", plan)
			}
		})
	}
}

func TestPlannerRejectsInvalidInputRoute(t *testing.T) {
	p := NewPlanner(&fakeLLM{}, "test-model", nil)
	if _, err := p.Plan(context.Background(), "q", 9); err == nil {
		t.Fatal("expected error for out of range route")
	}
}

func TestExpanderCapsAndTrims(t *testing.T) {
	fake := &fakeLLM{responses: []string{
		`{"list_of_query": ["docker basics", "  ", "docker tutorial", "docker news", "docker history"]}`,
	}}
	e := NewQueryExpander(fake, "test-model", 3)

	queries, err := e.Expand(context.Background(), "what is docker")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}

	want := []string{"docker basics", "docker tutorial", "docker news"}
	if len(queries) != len(want) {
		t.Fatalf("got %d queries, want %d: %v", len(queries), len(want), queries)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestExpanderFallsBackToOriginalQuery(t *testing.T) {
	fake := &fakeLLM{responses: []string{`{"list_of_query": []}`}}
	e := NewQueryExpander(fake, "test-model", 3)

	queries, err := e.Expand(context.Background(), "what is docker")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(queries) != 1 || queries[0] != "what is docker" {
		t.Errorf("expected fallback to original query, got %v", queries)
	}
}

func TestBuildInputFormat(t *testing.T) {
	got := BuildInput("What is shown here?", true, false)
	want := "[METADATA]\nimage_attached: true\ndocument_attached: false\n\n[USER_INPUT]\nWhat is shown here?"
	if got != want {
		t.Errorf("BuildInput() = %q, want %q", got, want)
	}
}
