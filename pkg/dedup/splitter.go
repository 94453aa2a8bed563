package dedup

import (
	"strings"
	"unicode"
)

// Sentence is one extracted sentence with its source document id. The global
// sentence index is the position in the returned slice.
type Sentence struct {
	Text string
	Doc  int
}

// abbreviations that must not end a sentence even though they carry a period.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "sr": {}, "jr": {},
	"st": {}, "vs": {}, "etc": {}, "e.g": {}, "i.e": {}, "fig": {}, "no": {},
	"inc": {}, "ltd": {}, "co": {}, "approx": {},
}

// SplitSentences splits each document into sentences and keeps those with at
// least minWords whitespace-separated words. Document ids are recorded per
// sentence so cleaned documents can be rebuilt in their original order.
func SplitSentences(texts []string, minWords int) []Sentence {
	var out []Sentence
	for docId, text := range texts {
		for _, raw := range tokenizeSentences(text) {
			s := strings.TrimSpace(raw)
			if len(strings.Fields(s)) >= minWords {
				out = append(out, Sentence{Text: s, Doc: docId})
			}
		}
	}
	return out
}

// tokenizeSentences is a rule-based sentence tokenizer: a sentence ends at a
// run of '.', '!' or '?' followed by whitespace and an upper-case letter,
// digit or opening quote, unless the terminator belongs to a known
// abbreviation or a decimal number.
func tokenizeSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		// Consume terminator run ("...", "?!", etc.)
		end := i
		for end+1 < len(runes) && (runes[end+1] == '.' || runes[end+1] == '!' || runes[end+1] == '?') {
			end++
		}

		if runes[i] == '.' {
			if isAbbreviation(runes, start, i) || isDecimalPoint(runes, i) {
				i = end
				continue
			}
		}

		// Must be followed by whitespace and a sentence opener.
		j := end + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == end+1 && j < len(runes) {
			// No whitespace after terminator (e.g. "3.14" already handled,
			// "U.S.A" style initials) -> not a boundary.
			i = end
			continue
		}
		if j < len(runes) && !isSentenceOpener(runes[j]) {
			i = end
			continue
		}

		sentences = append(sentences, string(runes[start:end+1]))
		start = j
		i = j - 1
	}

	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}
	return sentences
}

func isSentenceOpener(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' ||
		r == '(' || r == '[' || r == '“' || r == '‘'
}

func isAbbreviation(runes []rune, start, dot int) bool {
	wordStart := dot
	for wordStart > start && !unicode.IsSpace(runes[wordStart-1]) {
		wordStart--
	}
	word := strings.ToLower(strings.TrimRight(string(runes[wordStart:dot]), "."))
	word = strings.TrimLeft(word, "\"'([")
	_, ok := abbreviations[word]
	if ok {
		return true
	}
	// Single-letter initials like "J." in "J. Smith".
	return len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0])
}

func isDecimalPoint(runes []rune, dot int) bool {
	return dot > 0 && dot+1 < len(runes) &&
		unicode.IsDigit(runes[dot-1]) && unicode.IsDigit(runes[dot+1])
}
