package dedup

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		texts    []string
		minWords int
		want     []Sentence
	}{
		{
			name:     "two sentences one document",
			texts:    []string{"Docker is a container platform. It packages applications with their dependencies."},
			minWords: 4,
			want: []Sentence{
				{Text: "Docker is a container platform.", Doc: 0},
				{Text: "It packages applications with their dependencies.", Doc: 0},
			},
		},
		{
			name:     "short sentences are dropped",
			texts:    []string{"Too short. This sentence has enough words to survive."},
			minWords: 4,
			want: []Sentence{
				{Text: "This sentence has enough words to survive.", Doc: 0},
			},
		},
		{
			name:     "document ids follow the source document",
			texts:    []string{"First document has one long sentence here.", "Second document also has one long sentence."},
			minWords: 4,
			want: []Sentence{
				{Text: "First document has one long sentence here.", Doc: 0},
				{Text: "Second document also has one long sentence.", Doc: 1},
			},
		},
		{
			name:     "abbreviations do not end sentences",
			texts:    []string{"Containers are used by many tools, e.g. Docker and Podman among others."},
			minWords: 4,
			want: []Sentence{
				{Text: "Containers are used by many tools, e.g. Docker and Podman among others.", Doc: 0},
			},
		},
		{
			name:     "decimal numbers do not end sentences",
			texts:    []string{"The image size dropped to 3.5 megabytes after the rebuild was finished."},
			minWords: 4,
			want: []Sentence{
				{Text: "The image size dropped to 3.5 megabytes after the rebuild was finished.", Doc: 0},
			},
		},
		{
			name:     "question and exclamation terminators",
			texts:    []string{"What does Docker actually do? It runs containers on a shared kernel!"},
			minWords: 4,
			want: []Sentence{
				{Text: "What does Docker actually do?", Doc: 0},
				{Text: "It runs containers on a shared kernel!", Doc: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.texts, tt.minWords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestPercentileLinearInterpolation(t *testing.T) {
	tests := []struct {
		values []float64
		p      float64
		want   float64
	}{
		{[]float64{1, 2, 3, 4}, 30, 1.9},
		{[]float64{1, 2, 3, 4}, 0, 1},
		{[]float64{1, 2, 3, 4}, 100, 4},
		{[]float64{5}, 50, 5},
	}
	for _, tt := range tests {
		got := percentile(tt.values, tt.p)
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
		}
	}
}
