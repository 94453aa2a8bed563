package extractor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// DocSentencesPerChunk is how many sentences go into one document chunk.
const DocSentencesPerChunk = 30

// ReadPDF extracts the text of a PDF and returns it as sentence-window
// chunks ready for embedding.
func ReadPDF(ctx context.Context, r io.ReaderAt, size int64) ([]string, error) {
	loader := documentloaders.NewPDF(r, size)
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pdf: %w", err)
	}

	var all strings.Builder
	for _, doc := range docs {
		all.WriteString(JoinPageLines(doc.PageContent))
	}

	return SentenceWindows(all.String(), DocSentencesPerChunk), nil
}

// JoinPageLines flattens extracted page text into one line: rows shorter than
// three characters are noise and dropped, hyphenated line breaks are joined
// without a space so split words heal, all other rows are joined with one.
func JoinPageLines(pageText string) string {
	var b strings.Builder
	for _, row := range strings.Split(pageText, "\n") {
		if len(row) < 3 {
			continue
		}
		b.WriteString(row)
		if !strings.HasSuffix(row, "-") {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// SentenceWindows splits the text on periods and regroups the sentences into
// windows of the given size, joined back with ". ".
func SentenceWindows(text string, size int) []string {
	if size <= 0 {
		size = DocSentencesPerChunk
	}

	var sentences []string
	for _, sent := range strings.Split(text, ".") {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		sentences = append(sentences, sent)
	}

	var chunks []string
	for i := 0; i < len(sentences); i += size {
		end := i + size
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[i:end], ". "))
	}
	return chunks
}
