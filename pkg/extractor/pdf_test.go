package extractor

import (
	"reflect"
	"strings"
	"testing"
)

func TestJoinPageLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rows joined with spaces",
			in:   "Docker is a platform\nfor running containers",
			want: "Docker is a platform for running containers ",
		},
		{
			name: "short noise rows dropped",
			in:   "Docker overview\n1\n..\nSecond meaningful row",
			want: "Docker overview Second meaningful row ",
		},
		{
			name: "hyphenated break joined without space",
			in:   "This word is hyphen-\nated across lines",
			want: "This word is hyphen-ated across lines ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinPageLines(tt.in); got != tt.want {
				t.Errorf("JoinPageLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSentenceWindows(t *testing.T) {
	text := "One. Two. Three. Four. Five."

	got := SentenceWindows(text, 2)
	want := []string{"One. Two", "Three. Four", "Five"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SentenceWindows() = %v, want %v", got, want)
	}
}

func TestSentenceWindowsSkipsEmptySegments(t *testing.T) {
	text := "First sentence... Second sentence."

	got := SentenceWindows(text, 30)
	if len(got) != 1 {
		t.Fatalf("expected one window, got %v", got)
	}
	if strings.Contains(got[0], "..") {
		t.Errorf("empty segments should be dropped: %q", got[0])
	}
}

func TestSentenceWindowsEmptyText(t *testing.T) {
	if got := SentenceWindows("", 30); len(got) != 0 {
		t.Errorf("expected no windows, got %v", got)
	}
}
