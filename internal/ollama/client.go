// Package ollama is a client for the native HTTP API of a local Ollama server.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/ollaterm/internal/agent"
)

// Client wraps the Ollama HTTP API. The endpoint-capability cache is
// owned by the client instance; it is populated once per model and
// only read afterwards.
type Client struct {
	cfg   Config
	http  *http.Client
	modes map[string]Mode
}

// NewClient constructs an Ollama API client.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		cfg:   cfg,
		http:  httpClient,
		modes: make(map[string]Mode),
	}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Ping reports whether the server answers /api/tags.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// Models lists the installed model names.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build tags request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: HTTP %d", resp.StatusCode)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode tags response: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// DetectMode probes which endpoint the model supports. The answer is
// cached for the lifetime of the client.
func (c *Client) DetectMode(ctx context.Context, model string) Mode {
	if mode, ok := c.modes[model]; ok {
		return mode
	}
	mode := ModeGenerate
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	body, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: "hi"}},
		Stream:   false,
		Options:  options{NumPredict: 1},
	})
	if err == nil {
		resp, err := c.post(probeCtx, "/api/chat", body)
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				mode = ModeChat
			}
		}
	}
	c.modes[model] = mode
	log.Debug().Str("component", "ollama").Str("model", model).Str("mode", string(mode)).Msg("endpoint detected")
	return mode
}

// Complete runs one inference call with the trimmed message window,
// routed through the endpoint the model supports.
func (c *Client) Complete(ctx context.Context, model string, messages []agent.Message) (string, error) {
	mode := c.DetectMode(ctx, model)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	opts := options{Temperature: c.cfg.Temperature, NumPredict: c.cfg.NumPredict}

	if mode == ModeChat {
		msgs := make([]chatMessage, 0, len(messages))
		for _, m := range messages {
			msgs = append(msgs, chatMessage{Role: string(m.Role), Content: m.Content})
		}
		body, err := json.Marshal(chatRequest{Model: model, Messages: msgs, Stream: false, Options: opts})
		if err != nil {
			return "", fmt.Errorf("marshal chat request: %w", err)
		}
		var out chatResponse
		if err := c.postJSON(ctx, "/api/chat", body, &out); err != nil {
			return "", err
		}
		content := strings.TrimSpace(out.Message.Content)
		if content == "" {
			return "", fmt.Errorf("chat response did not contain message content")
		}
		return content, nil
	}

	body, err := json.Marshal(generateRequest{Model: model, Prompt: flatten(messages), Stream: false, Options: opts})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}
	var out generateResponse
	if err := c.postJSON(ctx, "/api/generate", body, &out); err != nil {
		return "", err
	}
	content := strings.TrimSpace(out.Response)
	if content == "" {
		return "", fmt.Errorf("generate response did not contain response text")
	}
	return content, nil
}

// flatten renders a message sequence as a single role-tagged prompt
// for models that only support the completion endpoint.
func flatten(messages []agent.Message) string {
	parts := make([]string, 0, len(messages)+1)
	for _, m := range messages {
		parts = append(parts, strings.ToUpper(string(m.Role))+":\n"+m.Content)
	}
	parts = append(parts, "ASSISTANT:")
	return strings.Join(parts, "\n\n")
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	resp, err := c.post(ctx, path, body)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("call %s: HTTP %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// Pull streams a model download, reporting progress lines to onStatus.
func (c *Client) Pull(ctx context.Context, model string, onStatus func(string)) error {
	body, err := json.Marshal(pullRequest{Name: model, Stream: true})
	if err != nil {
		return fmt.Errorf("marshal pull request: %w", err)
	}
	resp, err := c.post(ctx, "/api/pull", body)
	if err != nil {
		return fmt.Errorf("call /api/pull: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("call /api/pull: HTTP %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	last := ""
	for sc.Scan() {
		var p pullProgress
		if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
			continue
		}
		status := p.Status
		if p.Total > 0 {
			status = fmt.Sprintf("%s (%d%%)", p.Status, p.Completed*100/p.Total)
		}
		if status != last && onStatus != nil {
			onStatus(status)
			last = status
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read pull stream: %w", err)
	}
	return nil
}
