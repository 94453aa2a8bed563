package llm

import (
	"context"
	"encoding/json"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
	Images  []string // base64-encoded images for vision models
}

// StreamChunk is one unit of a streamed model response.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
	System      string // System instruction prepended to the conversation
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithSystem(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// GenerateJSON sends a single prompt and constrains the output to the
	// given JSON schema. Returns the raw JSON text produced by the model.
	GenerateJSON(ctx context.Context, prompt string, schema json.RawMessage, options ...Option) (string, error)

	// ChatStream streams the response token by token. The channel is closed
	// after the final chunk; a chunk with Err set terminates the stream.
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan StreamChunk, error)
}
