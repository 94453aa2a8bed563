package websearch

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseTags never carry article text and are dropped before extraction.
var noiseTags = []string{"script", "style", "nav", "header", "footer", "aside", "noscript", "form", "iframe"}

// contentSelectors are tried in order; the first match wins, body is the
// fallback.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	"#content",
	".documentation",
	"#documentation",
}

// SearchAndExtract searches for the query and fetches readable text from each
// result page. Pages that fail to fetch or yield no text are skipped; a
// request-level failure of the search itself is an error.
func (c *Client) SearchAndExtract(ctx context.Context, query string, count int) ([]Article, error) {
	links, err := c.SearchLinks(ctx, query, count)
	if err != nil {
		return nil, err
	}
	return c.ExtractFromLinks(ctx, links), nil
}

// ExtractFromLinks fetches every link and extracts its main text. Failures
// are logged and skipped so one dead page never kills the batch.
func (c *Client) ExtractFromLinks(ctx context.Context, links []string) []Article {
	var articles []Article
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}

		text, err := c.extractPage(ctx, link)
		if err != nil {
			if c.log != nil {
				c.log.Warn("websearch", "page extraction failed", map[string]interface{}{
					"link":  link,
					"error": err.Error(),
				})
			}
			continue
		}
		if text == "" {
			continue
		}
		articles = append(articles, Article{Link: link, Text: text})
	}
	return articles
}

func (c *Client) extractPage(ctx context.Context, link string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	return ExtractMainContent(doc), nil
}

// ExtractMainContent pulls the readable text out of a parsed page: noise tags
// are removed, then the first matching content region is used.
func ExtractMainContent(doc *goquery.Document) string {
	for _, tag := range noiseTags {
		doc.Find(tag).Remove()
	}

	var content string
	for _, selector := range contentSelectors {
		if selected := doc.Find(selector); selected.Length() > 0 {
			content = selected.Text()
			break
		}
	}
	if content == "" {
		content = doc.Find("body").Text()
	}

	return cleanContent(content)
}

func cleanContent(content string) string {
	// Collapse all whitespace runs
	content = strings.Join(strings.Fields(content), " ")

	// Remove common boilerplate noise
	noisePatterns := []string{
		"Cookie Policy",
		"Accept Cookies",
		"Privacy Policy",
		"Terms of Service",
	}
	for _, pattern := range noisePatterns {
		content = strings.ReplaceAll(content, pattern, "")
	}

	return strings.TrimSpace(content)
}
