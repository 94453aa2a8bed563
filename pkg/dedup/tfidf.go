package dedup

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// wordPattern matches tokens of two or more word characters, the same token
// rule the scoring was tuned against.
var wordPattern = regexp.MustCompile(`\b\w\w+\b`)

// tfidfResult holds the sentence-term matrix and the per-sentence scores.
// Rows are l2-normalized, so a dot product of two rows is their cosine
// similarity.
type tfidfResult struct {
	rows     []map[int]float64 // sparse row -> featureIndex -> weight
	features int
	scores   []float64
}

// informativeSentence pairs a kept sentence with its global index.
type informativeSentence struct {
	Text  string
	Index int
}

// tokenize lowercases, extracts word tokens, drops stop words and emits
// unigrams plus bigrams built from the remaining tokens.
func tokenize(sentence string) []string {
	raw := wordPattern.FindAllString(strings.ToLower(sentence), -1)

	kept := raw[:0:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			kept = append(kept, tok)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// computeTfidf builds the TF-IDF matrix over the sentences: sublinear term
// frequency, smoothed idf, document-frequency cap at 95%, l2-normalized rows.
// The per-sentence score is the mean of its row over all features.
func computeTfidf(sentences []string) tfidfResult {
	n := len(sentences)
	termCounts := make([]map[string]int, n)
	df := map[string]int{}

	for i, s := range sentences {
		counts := map[string]int{}
		for _, term := range tokenize(s) {
			counts[term]++
		}
		termCounts[i] = counts
		for term := range counts {
			df[term]++
		}
	}

	// Vocabulary: drop terms present in more than 95% of sentences.
	maxDf := 0.95 * float64(n)
	vocab := make([]string, 0, len(df))
	for term, d := range df {
		if float64(d) <= maxDf {
			vocab = append(vocab, term)
		}
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, term := range vocab {
		index[term] = i
	}

	result := tfidfResult{
		rows:     make([]map[int]float64, n),
		features: len(vocab),
		scores:   make([]float64, n),
	}

	for i, counts := range termCounts {
		row := map[int]float64{}
		var sumSquares float64
		for term, count := range counts {
			col, ok := index[term]
			if !ok {
				continue
			}
			tf := 1 + math.Log(float64(count)) // sublinear tf
			idf := math.Log(float64(1+n)/float64(1+df[term])) + 1
			w := tf * idf
			row[col] = w
			sumSquares += w * w
		}

		// l2 normalization
		if norm := math.Sqrt(sumSquares); norm > 0 {
			var sum float64
			for col, w := range row {
				row[col] = w / norm
				sum += row[col]
			}
			if result.features > 0 {
				result.scores[i] = sum / float64(result.features)
			}
		}
		result.rows[i] = row
	}

	return result
}

// selectInformative keeps sentences whose score reaches the percentile
// threshold implied by keepRatio (0.7 keeps roughly the top 70%).
func selectInformative(sentences []Sentence, scores []float64, keepRatio float64) []informativeSentence {
	threshold := percentile(scores, 100*(1-keepRatio))

	var kept []informativeSentence
	for i, s := range sentences {
		if scores[i] >= threshold {
			kept = append(kept, informativeSentence{Text: s.Text, Index: i})
		}
	}
	return kept
}

// percentile computes the p-th percentile with linear interpolation between
// closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// cosineSimilarity of two l2-normalized sparse rows is their dot product.
func cosineSimilarity(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for col, w := range a {
		if w2, ok := b[col]; ok {
			dot += w * w2
		}
	}
	return dot
}
