package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestCleanResultLink(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "uddg redirect is unwrapped",
			raw:  "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fdocker&rut=abc",
			want: "https://example.com/docker",
		},
		{
			name: "plain link passes through",
			raw:  "https://example.com/article",
			want: "https://example.com/article",
		},
		{
			name: "protocol-relative link without uddg",
			raw:  "//example.com/page",
			want: "https://example.com/page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanResultLink(tt.raw); got != tt.want {
				t.Errorf("CleanResultLink(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSearchLinksParsesResultsAndPaginates(t *testing.T) {
	var offsets []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("s"))
		if r.URL.Query().Get("s") != "0" {
			fmt.Fprint(w, `<html><body></body></html>`)
			return
		}
		io.WriteString(w, `<html><body>
			<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.example%2F1">one</a>
			<a class="result__a" href="https://b.example/2">two</a>
			<a class="other" href="https://ignored.example">nope</a>
		</body></html>`)
	}))
	defer server.Close()

	client := NewClient(nil, WithSearchURL(server.URL), WithRateLimit(1000))
	links, err := client.SearchLinks(context.Background(), "docker", 5)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}

	want := []string{"https://a.example/1", "https://b.example/2"}
	if len(links) != len(want) {
		t.Fatalf("got %d links, want %d: %v", len(links), len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d = %q, want %q", i, links[i], want[i])
		}
	}

	// First page was not enough, so pagination moved to offset 50 and stopped
	// on the empty page.
	if len(offsets) != 2 || offsets[1] != "50" {
		t.Errorf("unexpected pagination offsets: %v", offsets)
	}
}

func TestSearchLinksTruncatesToCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a class="result__a" href="https://a.example/1">1</a>
			<a class="result__a" href="https://a.example/2">2</a>
			<a class="result__a" href="https://a.example/3">3</a>
		</body></html>`)
	}))
	defer server.Close()

	client := NewClient(nil, WithSearchURL(server.URL), WithRateLimit(1000))
	links, err := client.SearchLinks(context.Background(), "docker", 2)
	if err != nil {
		t.Fatalf("SearchLinks: %v", err)
	}
	if len(links) != 2 {
		t.Errorf("expected 2 links, got %d", len(links))
	}
}

func TestSearchLinksRejectsBadCount(t *testing.T) {
	client := NewClient(nil)
	for _, count := range []int{0, 51, -1} {
		if _, err := client.SearchLinks(context.Background(), "q", count); err == nil {
			t.Errorf("count %d should be rejected", count)
		}
	}
}

func TestExtractMainContentPrefersContentRegions(t *testing.T) {
	html := `<html><body>
		<nav>Site navigation links</nav>
		<script>var tracking = true;</script>
		<main>Docker containers share the host kernel.   Extra   spacing here.</main>
		<footer>Privacy Policy and friends</footer>
	</body></html>`

	doc := mustParse(t, html)
	got := ExtractMainContent(doc)
	want := "Docker containers share the host kernel. Extra spacing here."
	if got != want {
		t.Errorf("ExtractMainContent() = %q, want %q", got, want)
	}
}

func TestExtractMainContentFallsBackToBody(t *testing.T) {
	html := `<html><body><p>Plain page text without landmarks.</p></body></html>`
	doc := mustParse(t, html)
	if got := ExtractMainContent(doc); got != "Plain page text without landmarks." {
		t.Errorf("unexpected content: %q", got)
	}
}

func TestExtractFromLinksSkipsFailedPages(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><main>Useful article text lives here.</main></body></html>`)
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	client := NewClient(nil, WithRateLimit(1000))
	articles := client.ExtractFromLinks(context.Background(), []string{bad.URL, good.URL})

	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	if articles[0].Link != good.URL {
		t.Errorf("wrong link kept: %s", articles[0].Link)
	}
	if articles[0].Text != "Useful article text lives here." {
		t.Errorf("wrong text: %q", articles[0].Text)
	}
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}
