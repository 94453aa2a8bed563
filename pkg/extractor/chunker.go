package extractor

import (
	"github.com/tmc/langchaingo/textsplitter"
)

// Chunker re-splits already extracted text into token-bounded chunks. The
// tokenizer is loaded once at construction, not per request.
type Chunker struct {
	splitter textsplitter.TokenSplitter
}

func NewChunker(chunkTokens int) *Chunker {
	if chunkTokens <= 0 {
		chunkTokens = 512
	}
	return &Chunker{
		splitter: textsplitter.NewTokenSplitter(
			textsplitter.WithChunkSize(chunkTokens),
			textsplitter.WithChunkOverlap(0),
		),
	}
}

// Split chunks a single text. Errors from the tokenizer fall back to the
// original text so content is never silently lost.
func (c *Chunker) Split(text string) []string {
	chunks, err := c.splitter.SplitText(text)
	if err != nil || len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// SplitAll chunks every text and flattens the result, dropping chunks shorter
// than minLen characters.
func (c *Chunker) SplitAll(texts []string, minLen int) []string {
	var out []string
	for _, text := range texts {
		for _, chunk := range c.Split(text) {
			if len(chunk) > minLen {
				out = append(out, chunk)
			}
		}
	}
	return out
}
