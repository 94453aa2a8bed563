package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-research-be/pkg/llm"
)

func TestChatStreamDeliversTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Hello"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":" world"},"done":false}`)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":""},"done":true}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")
	out, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var text string
	var done bool
	for chunk := range out {
		if chunk.Err != nil {
			t.Fatalf("unexpected stream error: %v", chunk.Err)
		}
		text += chunk.Content
		done = chunk.Done
	}
	if text != "Hello world" {
		t.Errorf("streamed text = %q, want %q", text, "Hello world")
	}
	if !done {
		t.Error("stream ended without a done chunk")
	}
}

// A consumer that cancels mid-stream stops receiving. The reader goroutine
// must still terminate and close the channel instead of blocking on a send.
func TestChatStreamTerminatesWhenConsumerCancels(t *testing.T) {
	stop := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-r.Context().Done():
				return
			default:
			}
			fmt.Fprintf(w, `{"message":{"role":"assistant","content":"tok%d"},"done":false}`+"\n", i)
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
	}))
	defer srv.Close()
	defer close(stop)

	p := NewOllamaProvider(srv.URL, "test-model")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := p.ChatStream(ctx, []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	// Take one chunk, then walk away without draining the channel.
	if chunk := <-out; chunk.Err != nil {
		t.Fatalf("first chunk errored: %v", chunk.Err)
	}
	cancel()
	time.Sleep(100 * time.Millisecond)

	select {
	case chunk, ok := <-out:
		if ok {
			t.Fatalf("expected closed stream after cancel, got chunk %+v", chunk)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream channel still open after cancel")
	}
}
