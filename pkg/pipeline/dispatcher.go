package pipeline

import (
	"context"
	"fmt"
	"strings"

	"ai-research-be/internal/constant"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/pkg/agent"
	"ai-research-be/pkg/dedup"
	"ai-research-be/pkg/embedding"
	"ai-research-be/pkg/extractor"
	"ai-research-be/pkg/llm"
	"ai-research-be/pkg/vectorstore"
	"ai-research-be/pkg/websearch"
)

// Attachments carries the optional request payloads. The original protocol
// allows at most one of each per request.
type Attachments struct {
	Document []byte
	Image    []byte
}

func (a Attachments) HasDocument() bool { return len(a.Document) > 0 }
func (a Attachments) HasImage() bool    { return len(a.Image) > 0 }

// Request is one question for the pipeline.
type Request struct {
	Query          string
	ConversationID string
	Attachments    Attachments
}

// Config holds the tunables the dispatcher and its paths read.
type Config struct {
	ChatModel     string
	VisionModel   string
	TopK          int
	LinksPerQuery int
	MinChunkLen   int
	WebCollection string
}

// Deps bundles the dispatcher collaborators.
type Deps struct {
	Validator *agent.Validator
	Router    *agent.Router
	Planner   *agent.Planner
	Expander  *agent.QueryExpander
	LLM       llm.LLMProvider
	Embedder  embedding.EmbeddingProvider
	Store     vectorstore.VectorStore
	Dedup     *dedup.Engine
	Web       *websearch.Client
	Chunker   *extractor.Chunker
	Log       logger.ILogger
}

// Dispatcher runs the full question pipeline: validation, routing, planning
// and one of the four execution paths. Every outcome, including rejections
// and internal failures, is delivered on the event stream.
type Dispatcher struct {
	deps Deps
	cfg  Config
}

func NewDispatcher(deps Deps, cfg Config) *Dispatcher {
	return &Dispatcher{
		deps: deps,
		cfg:  cfg,
	}
}

// Outcome summarizes how a request was handled, for persistence and system
// events. It is delivered as soon as the request is rejected or routed.
type Outcome struct {
	Route    int
	Rejected bool
	Reason   string
	Query    string
}

// Ask processes one request end to end. The returned channel closes when the
// stream is finished or ctx is cancelled.
func (d *Dispatcher) Ask(ctx context.Context, req Request) <-chan StreamEvent {
	events, _ := d.Process(ctx, req)
	return events
}

// Process is Ask plus an outcome channel. The outcome channel is buffered
// and receives at most one value.
func (d *Dispatcher) Process(ctx context.Context, req Request) (<-chan StreamEvent, <-chan Outcome) {
	out := make(chan StreamEvent)
	outcome := make(chan Outcome, 1)
	go func() {
		defer close(out)
		defer close(outcome)
		d.run(ctx, req, out, outcome)
	}()
	return out, outcome
}

func (d *Dispatcher) run(ctx context.Context, req Request, out chan<- StreamEvent, outcome chan<- Outcome) {
	hasImage := req.Attachments.HasImage()
	hasDoc := req.Attachments.HasDocument()

	validation, err := d.deps.Validator.Validate(ctx, req.Query, hasImage, hasDoc)
	if err != nil {
		outcome <- Outcome{Rejected: true, Reason: "validation failed"}
		d.fail(ctx, out, "validation", err)
		return
	}

	if !validation.Meaningful.State {
		outcome <- Outcome{Rejected: true, Reason: validation.Meaningful.Text}
		emit(ctx, out, botEvent(validation.Meaningful.Text))
		return
	}
	if validation.Routing != nil && !validation.Routing.State {
		outcome <- Outcome{Rejected: true, Reason: validation.Routing.Text}
		emit(ctx, out, botEvent(validation.Routing.Text))
		return
	}

	query := validation.NormalizedPrompt

	route, err := d.resolveRoute(ctx, query, hasImage, hasDoc)
	if err != nil {
		outcome <- Outcome{Rejected: true, Reason: "routing failed"}
		d.fail(ctx, out, "routing", err)
		return
	}
	outcome <- Outcome{Route: route, Query: query}

	plan, err := d.deps.Planner.Plan(ctx, query, route)
	if err != nil {
		d.fail(ctx, out, "planning", err)
		return
	}
	if !emit(ctx, out, planEvent(plan)) {
		return
	}

	d.dispatch(ctx, route, query, req.Attachments, req.ConversationID, out)
}

// resolveRoute applies the attachment hard rule before asking the router: an
// attached image forces the images path and an attached document forces the
// docs path, no model call involved.
func (d *Dispatcher) resolveRoute(ctx context.Context, query string, hasImage, hasDoc bool) (int, error) {
	if hasImage {
		return constant.RouteImages, nil
	}
	if hasDoc {
		return constant.RouteDocs, nil
	}
	return d.deps.Router.Route(ctx, query)
}

// Execute runs one already-routed request. The channel closes when the path
// finishes or ctx is cancelled.
func (d *Dispatcher) Execute(ctx context.Context, route int, query string, att Attachments, conversationID string) <-chan StreamEvent {
	out := make(chan StreamEvent)
	go func() {
		defer close(out)
		d.dispatch(ctx, route, query, att, conversationID, out)
	}()
	return out
}

func (d *Dispatcher) dispatch(ctx context.Context, route int, query string, att Attachments, conversationID string, out chan<- StreamEvent) {
	var err error
	switch route {
	case constant.RouteShallow:
		err = d.runShallow(ctx, query, out)
	case constant.RouteWeb:
		err = d.runWeb(ctx, query, out)
	case constant.RouteDocs:
		err = d.runDocs(ctx, query, att.Document, conversationID, out)
	case constant.RouteImages:
		err = d.runImages(ctx, query, att.Image, conversationID, out)
	default:
		err = fmt.Errorf("route %d does not match any pipeline", route)
	}
	if err != nil {
		d.fail(ctx, out, "execution", err)
	}
}

// fail logs the failure and delivers the generic message on the stream.
// Cancellations are not user-visible failures.
func (d *Dispatcher) fail(ctx context.Context, out chan<- StreamEvent, stage string, err error) {
	if ctx.Err() != nil {
		return
	}
	if d.deps.Log != nil {
		d.deps.Log.Error("pipeline", "request failed", map[string]interface{}{
			"stage": stage,
			"error": err.Error(),
		})
	}
	emit(ctx, out, botEvent(constant.InternalErrorMessage))
}

// relay copies a model stream onto the event stream as bot tokens.
func (d *Dispatcher) relay(ctx context.Context, stream <-chan llm.StreamChunk, out chan<- StreamEvent) error {
	for chunk := range stream {
		if chunk.Err != nil {
			return chunk.Err
		}
		if chunk.Done {
			return nil
		}
		if chunk.Content == "" {
			continue
		}
		if !emit(ctx, out, botEvent(chunk.Content)) {
			return nil
		}
	}
	return nil
}

// indexTexts embeds the texts one by one and upserts them as a single batch.
// Cancellation before the upsert leaves the collection untouched.
func (d *Dispatcher) indexTexts(ctx context.Context, collection string, texts []string) error {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		vector, err := d.deps.Embedder.Generate(ctx, text)
		if err != nil {
			return fmt.Errorf("embed chunk: %w", err)
		}
		vectors = append(vectors, vector)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.deps.Store.Upsert(ctx, collection, vectors, texts); err != nil {
		return fmt.Errorf("upsert %q: %w", collection, err)
	}
	return nil
}

// retrieve embeds the query and returns the texts of its nearest neighbors.
func (d *Dispatcher) retrieve(ctx context.Context, collection, query string) ([]string, error) {
	vector, err := d.deps.Embedder.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := d.deps.Store.Search(ctx, collection, vector, d.cfg.TopK)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", collection, err)
	}

	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Text)
	}
	return texts, nil
}

// streamGrounded streams an answer conditioned on the retrieved context. An
// empty system prompt means no grounding instruction is injected.
func (d *Dispatcher) streamGrounded(ctx context.Context, query string, contextTexts []string, system string, out chan<- StreamEvent) error {
	input := fmt.Sprintf("[CONTEXT]\n%s\n\n[USER_INPUT]\n%s",
		strings.Join(contextTexts, "\n\n"), query)

	opts := []llm.Option{llm.WithModel(d.cfg.ChatModel)}
	if system != "" {
		opts = append(opts, llm.WithSystem(system))
	}

	stream, err := d.deps.LLM.ChatStream(ctx, []llm.Message{
		{Role: constant.OllamaRoleUser, Content: input},
	}, opts...)
	if err != nil {
		return fmt.Errorf("grounded answer: %w", err)
	}
	return d.relay(ctx, stream, out)
}
