package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFaissTestServer(t *testing.T, existing []string) (*httptest.Server, *[]string) {
	t.Helper()

	var calls []string
	mux := http.NewServeMux()

	mux.HandleFunc("/faiss/collections/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		json.NewEncoder(w).Encode(existing)
	})
	mux.HandleFunc("/faiss/collection/", func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)

		var payload faissUpsertPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode upsert payload: %v", err)
		}
		if len(payload.Vectors) != len(payload.Metadata.Text) {
			t.Errorf("payload length mismatch: %d vectors, %d texts", len(payload.Vectors), len(payload.Metadata.Text))
		}
		w.WriteHeader(http.StatusOK)
	})

	return httptest.NewServer(mux), &calls
}

func TestFaissStoreUpsertCreatesNewCollection(t *testing.T) {
	server, calls := newFaissTestServer(t, []string{"other"})
	defer server.Close()

	store := NewFaissStore(server.URL)
	err := store.Upsert(context.Background(), "docs-abc", [][]float32{{0.1, 0.2}}, []string{"chunk one"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	want := "POST /faiss/collection/docs-abc"
	if got := (*calls)[len(*calls)-1]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFaissStoreUpsertMergesExistingCollection(t *testing.T) {
	server, calls := newFaissTestServer(t, []string{"docs-abc"})
	defer server.Close()

	store := NewFaissStore(server.URL)
	err := store.Upsert(context.Background(), "docs-abc", [][]float32{{0.1, 0.2}}, []string{"chunk one"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	want := "PUT /faiss/collection/docs-abc"
	if got := (*calls)[len(*calls)-1]; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFaissStoreUpsertLengthMismatch(t *testing.T) {
	store := NewFaissStore("http://unused")
	err := store.Upsert(context.Background(), "c", [][]float32{{0.1}}, []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for mismatched vectors/texts")
	}
}

func TestFaissStoreSearchRanksAndTruncates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/faiss/collections/docs-abc/similar", func(w http.ResponseWriter, r *http.Request) {
		var vec []float32
		if err := json.NewDecoder(r.Body).Decode(&vec); err != nil {
			t.Errorf("query body must be a raw vector: %v", err)
		}
		// One batch per query vector; last batch belongs to our query.
		batches := [][]SearchResult{
			{{Text: "stale", Score: 0.99}},
			{
				{Text: "low", Score: 0.2},
				{Text: "high", Score: 0.9},
				{Text: "mid", Score: 0.5},
			},
		}
		json.NewEncoder(w).Encode(batches)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewFaissStore(server.URL)
	results, err := store.Search(context.Background(), "docs-abc", []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Text != "high" || results[1].Text != "mid" {
		t.Errorf("wrong ranking: %+v", results)
	}
}

func TestFaissStoreSearchFlatResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/faiss/collections/web-parsing/similar", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]SearchResult{
			{Text: "only", Score: 0.7},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := NewFaissStore(server.URL)
	results, err := store.Search(context.Background(), "web-parsing", []float32{0.3}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Text != "only" {
		t.Errorf("unexpected results: %+v", results)
	}
}
