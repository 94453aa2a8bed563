package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"ai-research-be/internal/pkg/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Article is one fetched search result.
type Article struct {
	Link string
	Text string
}

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.ILogger
	searchURL  string
}

type Option func(*Client)

// WithSearchURL overrides the search endpoint (used by tests).
func WithSearchURL(u string) Option {
	return func(c *Client) {
		c.searchURL = u
	}
}

func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func NewClient(log logger.ILogger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(2), 1), // 2 requests per second by default
		log:       log,
		searchURL: "https://duckduckgo.com/html/",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchLinks queries the DuckDuckGo HTML endpoint and returns up to count
// result links, paginating in steps of 50 until enough links are collected
// or a page comes back empty.
func (c *Client) SearchLinks(ctx context.Context, query string, count int) ([]string, error) {
	if count < 1 || count > 50 {
		return nil, fmt.Errorf("count must be between 1 and 50, got %d", count)
	}

	var links []string
	offset := 0

	for len(links) < count {
		pageLinks, err := c.searchPage(ctx, query, offset)
		if err != nil {
			return nil, err
		}
		if len(pageLinks) == 0 {
			break
		}

		for _, link := range pageLinks {
			links = append(links, link)
			if len(links) >= count {
				break
			}
		}
		offset += 50
	}

	if len(links) > count {
		links = links[:count]
	}
	return links, nil
}

func (c *Client) searchPage(ctx context.Context, query string, offset int) ([]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s?q=%s&s=%d", c.searchURL, url.QueryEscape(query), offset)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search error: status %d, body: %s", resp.StatusCode, string(body))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var links []string
	doc.Find(".result__a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			links = append(links, CleanResultLink(href))
		}
	})
	return links, nil
}

// CleanResultLink unwraps DuckDuckGo redirect links: the real target hides in
// the "uddg" query parameter. Non-redirect links pass through unchanged.
func CleanResultLink(raw string) string {
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}
