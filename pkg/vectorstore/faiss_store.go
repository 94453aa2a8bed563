package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// FaissStore talks to the external FAISS index service over HTTP.
//
// API surface:
//
//	GET  /faiss/collections/                -> ["name", ...]
//	POST /faiss/collection/{name}           -> create collection with payload
//	PUT  /faiss/collection/{name}           -> merge payload into collection
//	POST /faiss/collections/{name}/similar  -> query vector as JSON array body
type FaissStore struct {
	BaseURL string
	Client  *http.Client
}

var _ VectorStore = &FaissStore{}

func NewFaissStore(baseURL string) *FaissStore {
	return &FaissStore{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type faissUpsertPayload struct {
	Vectors  [][]float32   `json:"vectors"`
	Metadata faissMetadata `json:"metadata"`
}

type faissMetadata struct {
	Text []string `json:"text"`
}

func (s *FaissStore) ListCollections(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.BaseURL+"/faiss/collections/", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var collections []string
	if err := json.Unmarshal(body, &collections); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	return collections, nil
}

func (s *FaissStore) Upsert(ctx context.Context, collection string, vectors [][]float32, texts []string) error {
	if len(vectors) != len(texts) {
		return fmt.Errorf("vectors/texts length mismatch: %d vs %d", len(vectors), len(texts))
	}
	if len(vectors) == 0 {
		return nil
	}

	existing, err := s.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}

	method := "POST" // create
	for _, name := range existing {
		if name == collection {
			method = "PUT" // merge
			break
		}
	}

	payload, err := json.Marshal(faissUpsertPayload{
		Vectors:  vectors,
		Metadata: faissMetadata{Text: texts},
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/faiss/collection/%s", s.BaseURL, collection)
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := s.do(req); err != nil {
		return err
	}
	return nil
}

func (s *FaissStore) Search(ctx context.Context, collection string, query []float32, topK int) ([]SearchResult, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal query vector: %w", err)
	}

	url := fmt.Sprintf("%s/faiss/collections/%s/similar", s.BaseURL, collection)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	// The service answers with one result batch per query vector. We send a
	// single vector, so the last batch is ours.
	var batches [][]SearchResult
	if err := json.Unmarshal(body, &batches); err != nil {
		// Some deployments answer with a flat batch.
		var flat []SearchResult
		if err2 := json.Unmarshal(body, &flat); err2 != nil {
			return nil, fmt.Errorf("decode similar response: %w", err)
		}
		batches = [][]SearchResult{flat}
	}
	if len(batches) == 0 {
		return nil, nil
	}

	results := batches[len(batches)-1]
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (s *FaissStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("faiss request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("faiss error: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
