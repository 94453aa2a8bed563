package dedup

import (
	"strings"

	"ai-research-be/internal/pkg/logger"
)

// Engine removes boilerplate and near-duplicate sentences from a batch of
// documents:
//
//  1. split documents into sentences,
//  2. keep the most informative sentences by TF-IDF score (skipped when the
//     batch holds no near-duplicates),
//  3. merge near-duplicates by clustering,
//  4. rebuild each document from its surviving sentences.
//
// The i-th output document is always the cleaned form of the i-th input.
type Engine struct {
	KeepRatio           float64
	SimilarityThreshold float64
	MinSentenceWords    int
	log                 logger.ILogger
}

func NewEngine(keepRatio, similarityThreshold float64, minSentenceWords int, log logger.ILogger) *Engine {
	if keepRatio <= 0 || keepRatio > 1 {
		keepRatio = 0.7
	}
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = 0.9
	}
	if minSentenceWords <= 0 {
		minSentenceWords = 4
	}
	return &Engine{
		KeepRatio:           keepRatio,
		SimilarityThreshold: similarityThreshold,
		MinSentenceWords:    minSentenceWords,
		log:                 log,
	}
}

// Clean deduplicates the documents and returns them in input order. Documents
// whose every sentence was filtered out come back as empty strings.
func (e *Engine) Clean(texts []string) []string {
	if len(texts) == 0 {
		return []string{}
	}

	sentences := SplitSentences(texts, e.MinSentenceWords)
	if len(sentences) == 0 {
		return make([]string, len(texts))
	}

	plain := make([]string, len(sentences))
	for i, s := range sentences {
		plain[i] = s.Text
	}

	matrix := computeTfidf(plain)

	// The percentile filter only runs when near-duplicate sentences are
	// present. Duplicate-free input passes through scoring untouched, which
	// makes cleaning a fixed point: re-running the engine on its own output
	// removes nothing further.
	informative := keepAll(sentences)
	if hasNearDuplicates(matrix, e.SimilarityThreshold) {
		informative = selectInformative(sentences, matrix.scores, e.KeepRatio)
	}
	unique := clusterSimilar(informative, matrix, e.SimilarityThreshold)

	if e.log != nil {
		e.log.Debug("dedup", "semantic clean finished", map[string]interface{}{
			"documents":   len(texts),
			"sentences":   len(sentences),
			"informative": len(informative),
			"unique":      len(unique),
		})
	}

	return rebuildDocs(unique, sentences, len(texts))
}

func keepAll(sentences []Sentence) []informativeSentence {
	kept := make([]informativeSentence, len(sentences))
	for i, s := range sentences {
		kept[i] = informativeSentence{Text: s.Text, Index: i}
	}
	return kept
}

// hasNearDuplicates reports whether any sentence pair would merge under the
// clustering threshold.
func hasNearDuplicates(matrix tfidfResult, similarityThreshold float64) bool {
	for i := 0; i < len(matrix.rows); i++ {
		for j := i + 1; j < len(matrix.rows); j++ {
			if cosineSimilarity(matrix.rows[i], matrix.rows[j]) > similarityThreshold {
				return true
			}
		}
	}
	return false
}

// rebuildDocs reassembles cleaned documents: each surviving sentence is
// appended to the document it came from, joined by single spaces.
func rebuildDocs(unique []informativeSentence, sentences []Sentence, numDocs int) []string {
	parts := make([][]string, numDocs)
	for _, u := range unique {
		doc := sentences[u.Index].Doc
		parts[doc] = append(parts[doc], strings.TrimSpace(u.Text))
	}

	docs := make([]string, numDocs)
	for i, p := range parts {
		docs[i] = strings.Join(p, " ")
	}
	return docs
}
