package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-research-be/internal/constant"
	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/dedup"
	"ai-research-be/pkg/extractor"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/vectorstore"
	"ai-research-be/pkg/websearch"
)

// scriptedLLM returns queued JSON responses, a fixed chat reply and a fixed
// token stream, counting each call type.
type scriptedLLM struct {
	jsonResponses []string
	jsonCalls     int
	chatReply     string
	chatCalls     int
	chatHistories [][]llm.Message
	streamTokens  []string
	streamCalls   int
}

func (s *scriptedLLM) GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, opts ...llm.Option) (string, error) {
	s.jsonCalls++
	if s.jsonCalls > len(s.jsonResponses) {
		return "", errors.New("no scripted json response left")
	}
	return s.jsonResponses[s.jsonCalls-1], nil
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	s.chatCalls++
	s.chatHistories = append(s.chatHistories, history)
	return s.chatReply, nil
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.chatReply, nil
}

func (s *scriptedLLM) ChatStream(ctx context.Context, history []llm.Message, opts ...llm.Option) (<-chan llm.StreamChunk, error) {
	s.streamCalls++
	ch := make(chan llm.StreamChunk, len(s.streamTokens)+1)
	for _, token := range s.streamTokens {
		ch <- llm.StreamChunk{Content: token}
	}
	ch <- llm.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	upserts     map[string][]string
	searchTexts []string
	searchCalls int
}

func newFakeStore(searchTexts ...string) *fakeStore {
	return &fakeStore{
		upserts:     make(map[string][]string),
		searchTexts: searchTexts,
	}
}

func (f *fakeStore) ListCollections(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(f.upserts))
	for name := range f.upserts {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeStore) Upsert(ctx context.Context, collection string, vectors [][]float32, texts []string) error {
	f.upserts[collection] = append(f.upserts[collection], texts...)
	return nil
}

func (f *fakeStore) Search(ctx context.Context, collection string, query []float32, topK int) ([]vectorstore.SearchResult, error) {
	f.searchCalls++
	results := make([]vectorstore.SearchResult, 0, len(f.searchTexts))
	for i, text := range f.searchTexts {
		results = append(results, vectorstore.SearchResult{Text: text, Score: 1 - float64(i)*0.1})
	}
	return results, nil
}

func newTestDispatcher(model *scriptedLLM, store *fakeStore, web *websearch.Client) (*Dispatcher, *fakeEmbedder) {
	embedder := &fakeEmbedder{}
	deps := Deps{
		Validator: agent.NewValidator(model, "test-model", nil),
		Router:    agent.NewRouter(model, "test-model", nil),
		Planner:   agent.NewPlanner(model, "test-model", nil),
		Expander:  agent.NewQueryExpander(model, "test-model", 3),
		LLM:       model,
		Embedder:  embedder,
		Store:     store,
		Dedup:     dedup.NewEngine(0.7, 0.9, 4, nil),
		Web:       web,
		Chunker:   extractor.NewChunker(512),
	}
	cfg := Config{
		ChatModel:     "test-model",
		VisionModel:   "test-vision",
		TopK:          5,
		LinksPerQuery: 5,
		MinChunkLen:   70,
		WebCollection: "web-parsing",
	}
	return NewDispatcher(deps, cfg), embedder
}

func collect(ch <-chan StreamEvent) []StreamEvent {
	var events []StreamEvent
	for event := range ch {
		events = append(events, event)
	}
	return events
}

const (
	passVerdict = `{"state": true, "text": ""}`
)

func TestAskShallowFlow(t *testing.T) {
	model := &scriptedLLM{
		jsonResponses: []string{
			passVerdict,
			passVerdict,
			`{"route": 0}`,
			`{"route": 0, "plan_markdown": "# Plan\n1. Answer directly."}`,
		},
		streamTokens: []string{"Docker ", "is ", "a ", "container ", "platform."},
	}
	store := newFakeStore()
	d, _ := newTestDispatcher(model, store, nil)

	events := collect(d.Ask(context.Background(), Request{Query: "What is Docker?", ConversationID: "conv-1"}))

	if len(events) < 2 {
		t.Fatalf("too few events: %v", events)
	}
	if events[0].Role != constant.StreamRolePlan {
		t.Errorf("first event role = %q, want plan", events[0].Role)
	}
	for _, event := range events[1:] {
		if event.Role != constant.StreamRoleBot {
			t.Errorf("unexpected role %q after plan", event.Role)
		}
	}

	var answer strings.Builder
	for _, event := range events[1:] {
		answer.WriteString(event.Token)
	}
	if answer.String() != "Docker is a container platform." {
		t.Errorf("answer = %q", answer.String())
	}

	if len(store.upserts) != 0 || store.searchCalls != 0 {
		t.Error("shallow path must not touch the vector store")
	}
}

func TestAskRejectionRidesTheStream(t *testing.T) {
	model := &scriptedLLM{
		jsonResponses: []string{
			`{"state": false, "text": "What topic do you mean? Could you rephrase?"}`,
		},
	}
	d, _ := newTestDispatcher(model, newFakeStore(), nil)

	events := collect(d.Ask(context.Background(), Request{Query: "asdf qwer", ConversationID: "conv-1"}))

	if len(events) != 1 {
		t.Fatalf("expected a single rejection event, got %v", events)
	}
	if events[0].Role != constant.StreamRoleBot {
		t.Errorf("rejection role = %q, want bot", events[0].Role)
	}
	if !strings.Contains(events[0].Token, "rephrase") {
		t.Errorf("rejection text = %q", events[0].Token)
	}
	if model.jsonCalls != 1 {
		t.Errorf("expected 1 model call, got %d", model.jsonCalls)
	}
}

func TestAskImageAttachmentSkipsRouter(t *testing.T) {
	// Two validation passes and the planner: exactly three structured calls.
	// A router call would drain the script and fail the request.
	model := &scriptedLLM{
		jsonResponses: []string{
			passVerdict,
			passVerdict,
			`{"route": 3, "plan_markdown": "# Plan\n1. Describe the attached image.\n2. Answer."}`,
		},
		chatReply:    "A whiteboard covered in sequence diagrams.",
		streamTokens: []string{"It shows ", "sequence diagrams."},
	}
	store := newFakeStore("A whiteboard covered in sequence diagrams.")
	d, _ := newTestDispatcher(model, store, nil)

	events := collect(d.Ask(context.Background(), Request{
		Query:          "What is on the board?",
		ConversationID: "conv-42",
		Attachments:    Attachments{Image: []byte{0xff, 0xd8, 0xff}},
	}))

	if model.jsonCalls != 3 {
		t.Fatalf("expected 3 structured calls (no router), got %d", model.jsonCalls)
	}
	if model.chatCalls != 1 {
		t.Errorf("expected 1 vision call, got %d", model.chatCalls)
	}
	if h := model.chatHistories[0]; len(h) != 1 || h[0].Content != constant.ImageCaptionPrompt || len(h[0].Images) == 0 {
		t.Errorf("vision call did not carry the caption prompt with the image: %+v", h)
	}
	if got := store.upserts["conv-42"]; len(got) != 1 || !strings.Contains(got[0], "whiteboard") {
		t.Errorf("caption not indexed under the conversation collection: %v", store.upserts)
	}
	if events[0].Role != constant.StreamRolePlan {
		t.Errorf("first event role = %q, want plan", events[0].Role)
	}
	if events[len(events)-1].Role != constant.StreamRoleBot {
		t.Errorf("last event role = %q, want bot", events[len(events)-1].Role)
	}
}

func TestAskEmptyQueryWithDocAutoPrompts(t *testing.T) {
	// The auto-prompt path skips both validators and the router: only the
	// planner consumes a structured call. The attachment is not a valid PDF,
	// so the request fails over to the generic message after the plan.
	model := &scriptedLLM{
		jsonResponses: []string{
			`{"route": 2, "plan_markdown": "# Plan\n1. Read the attached document."}`,
		},
	}
	d, _ := newTestDispatcher(model, newFakeStore(), nil)

	events := collect(d.Ask(context.Background(), Request{
		Query:          "",
		ConversationID: "conv-7",
		Attachments:    Attachments{Document: []byte("not a pdf")},
	}))

	if model.jsonCalls != 1 {
		t.Fatalf("expected only the planner call, got %d", model.jsonCalls)
	}
	if events[0].Role != constant.StreamRolePlan {
		t.Errorf("first event role = %q, want plan", events[0].Role)
	}
	last := events[len(events)-1]
	if last.Token != constant.InternalErrorMessage {
		t.Errorf("expected the generic failure message, got %q", last.Token)
	}
}

func TestExecuteRejectsUnknownRoute(t *testing.T) {
	d, _ := newTestDispatcher(&scriptedLLM{}, newFakeStore(), nil)

	events := collect(d.Execute(context.Background(), 9, "anything", Attachments{}, "conv-1"))

	if len(events) != 1 || events[0].Token != constant.InternalErrorMessage {
		t.Fatalf("expected the generic failure message, got %v", events)
	}
}

func TestDocsPathWithoutAttachmentOnlyRetrieves(t *testing.T) {
	model := &scriptedLLM{streamTokens: []string{"Grounded ", "answer."}}
	store := newFakeStore("stored chunk about Docker volumes")
	d, embedder := newTestDispatcher(model, store, nil)

	events := collect(d.Execute(context.Background(), constant.RouteDocs, "What about volumes?", Attachments{}, "conv-9"))

	if len(store.upserts) != 0 {
		t.Error("no attachment means no upsert")
	}
	if store.searchCalls != 1 {
		t.Errorf("expected 1 search, got %d", store.searchCalls)
	}
	if embedder.calls != 1 {
		t.Errorf("expected only the query embedding, got %d", embedder.calls)
	}
	if len(events) == 0 || events[len(events)-1].Token != "answer." {
		t.Errorf("unexpected events: %v", events)
	}
}

func TestWebPathSkipsFailedSearches(t *testing.T) {
	// Every search request fails, so no content is gathered or indexed; the
	// pipeline still emits the expanded queries and a grounded answer from
	// whatever the web collection already holds.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	model := &scriptedLLM{
		jsonResponses: []string{
			`{"list_of_query": ["nintendo consoles europe", "nintendo current lineup"]}`,
		},
		streamTokens: []string{"Cannot ", "verify."},
	}
	store := newFakeStore("older indexed page text")
	web := websearch.NewClient(nil, websearch.WithSearchURL(server.URL), websearch.WithRateLimit(1000))
	d, _ := newTestDispatcher(model, store, web)

	events := collect(d.Execute(context.Background(), constant.RouteWeb, "What consoles does Nintendo sell?", Attachments{}, "conv-3"))

	if len(events) == 0 || events[0].Role != constant.StreamRoleWeblink {
		t.Fatalf("expected a weblink event first, got %v", events)
	}
	if !strings.Contains(events[0].Token, "nintendo consoles europe") {
		t.Errorf("weblink token = %q", events[0].Token)
	}
	if len(store.upserts) != 0 {
		t.Error("failed searches must not index anything")
	}
	if store.searchCalls != 1 {
		t.Errorf("expected 1 retrieval, got %d", store.searchCalls)
	}
	if events[len(events)-1].Token != "verify." {
		t.Errorf("unexpected final event: %v", events[len(events)-1])
	}
}

func TestCancelledRequestStopsQuietly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := &scriptedLLM{jsonResponses: []string{passVerdict, passVerdict, `{"route": 0}`}}
	d, _ := newTestDispatcher(model, newFakeStore(), nil)

	events := collect(d.Ask(ctx, Request{Query: "What is Docker?", ConversationID: "conv-1"}))

	for _, event := range events {
		if event.Token == constant.InternalErrorMessage {
			t.Errorf("cancellation must not surface as a failure: %v", events)
		}
	}
}
