// Package web is the optional search/fetch collaborator: a query-in/
// results-out search call and a URL-in/plain-text-out fetch call.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

const (
	defaultSearchURL = "https://html.duckduckgo.com/html/"
	probeTimeout     = 3 * time.Second
	maxResultChars   = 2000
	maxResults       = 5
)

// Config wires a Gateway.
type Config struct {
	Enabled      bool
	SearchURL    string
	FetchTimeout time.Duration
}

// Gateway performs web search and page fetch. Availability is decided
// once at construction; callers branch on Available instead of
// probing per call.
type Gateway struct {
	cfg       Config
	http      *http.Client
	available bool
}

// New builds a Gateway and negotiates availability with a single
// reachability probe. Unavailability is a normal outcome.
func New(ctx context.Context, cfg Config, httpClient *http.Client) *Gateway {
	if cfg.SearchURL == "" {
		cfg.SearchURL = defaultSearchURL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	g := &Gateway{cfg: cfg, http: httpClient}
	if cfg.Enabled {
		g.available = g.probe(ctx)
	}
	log.Debug().Str("component", "web").Bool("available", g.available).Msg("gateway negotiated")
	return g
}

// Available reports the fixed per-session capability flag.
func (g *Gateway) Available() bool {
	return g.available
}

func (g *Gateway) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, g.cfg.SearchURL, nil)
	if err != nil {
		return false
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < http.StatusInternalServerError
}

// Search runs a query and returns a compact titled-result listing.
func (g *Gateway) Search(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()

	u := g.cfg.SearchURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", "ollaterm/1.0")
	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search: HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("parse search results: %w", err)
	}
	results := collectResults(doc)
	if len(results) == 0 {
		return "no results", nil
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return strings.Join(results, "\n"), nil
}

// Fetch downloads a page and strips it to plain text.
func (g *Gateway) Fetch(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", "ollaterm/1.0")
	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: HTTP %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, 1<<20)
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "html") {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("read page: %w", err)
		}
		return clip(strings.TrimSpace(string(data))), nil
	}

	doc, err := html.Parse(body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	return clip(extractText(doc)), nil
}

// collectResults pulls anchor titles out of a search result page.
func collectResults(doc *html.Node) []string {
	var results []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			title := strings.TrimSpace(nodeText(n))
			href := attr(n, "href")
			if title != "" {
				results = append(results, fmt.Sprintf("- %s\n  %s", title, href))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

// extractText flattens a document to readable text, skipping script
// and style subtrees.
func extractText(doc *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func clip(s string) string {
	if len(s) <= maxResultChars {
		return s
	}
	return s[:maxResultChars] + "\n[truncated]"
}
