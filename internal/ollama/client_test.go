package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/metalagman/ollaterm/internal/agent"
)

func testMessages() []agent.Message {
	return []agent.Message{
		{Role: agent.RoleSystem, Content: "be terse"},
		{Role: agent.RoleUser, Content: "list files"},
	}
}

func TestClientComplete_ChatMode(t *testing.T) {
	var probed, chatted int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode chat request: %v", err)
		}
		if req.Options.NumPredict == 1 {
			probed++
			_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "ok"}})
			return
		}
		chatted++
		if req.Stream {
			t.Error("streaming must be off")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"content": "  {\"action\":\"done\"}  "},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	got, err := c.Complete(context.Background(), "llama3", testMessages())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != `{"action":"done"}` {
		t.Errorf("got %q, want trimmed content", got)
	}
	if probed != 1 || chatted != 1 {
		t.Errorf("probed=%d chatted=%d, want 1 and 1", probed, chatted)
	}

	// Second call must reuse the cached mode without re-probing.
	if _, err := c.Complete(context.Background(), "llama3", testMessages()); err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if probed != 1 {
		t.Errorf("probed=%d after second call, mode cache not used", probed)
	}
}

func TestClientComplete_GenerateFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			http.Error(w, "model does not support chat", http.StatusNotFound)
		case "/api/generate":
			var req generateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode generate request: %v", err)
			}
			for _, want := range []string{"SYSTEM:\nbe terse", "USER:\nlist files"} {
				if !strings.Contains(req.Prompt, want) {
					t.Errorf("prompt missing %q:\n%s", want, req.Prompt)
				}
			}
			if !strings.HasSuffix(req.Prompt, "ASSISTANT:") {
				t.Errorf("prompt must end with the assistant cue:\n%s", req.Prompt)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"response": "fallback reply"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	got, err := c.Complete(context.Background(), "old-model", testMessages())
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "fallback reply" {
		t.Errorf("got %q", got)
	}
	if mode := c.DetectMode(context.Background(), "old-model"); mode != ModeGenerate {
		t.Errorf("cached mode = %q, want generate", mode)
	}
}

func TestClientComplete_ServerErrorIncludesSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	c.modes["m"] = ModeChat
	_, err := c.Complete(context.Background(), "m", testMessages())
	if err == nil {
		t.Fatal("want error on HTTP 500")
	}
	if !strings.Contains(err.Error(), "HTTP 500") || !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("error lacks status and body snippet: %v", err)
	}
}

func TestClientComplete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"message": map[string]string{"content": "   "}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	c.modes["m"] = ModeChat
	if _, err := c.Complete(context.Background(), "m", testMessages()); err == nil {
		t.Fatal("want error for blank message content")
	}
}

func TestClientModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": "llama3:8b"}, {"name": "phi3:mini"}},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	if !c.Ping(context.Background()) {
		t.Error("Ping must succeed against a live /api/tags")
	}
	names, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if len(names) != 2 || names[0] != "llama3:8b" || names[1] != "phi3:mini" {
		t.Errorf("names = %v", names)
	}
}

func TestClientPing_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	if c.Ping(context.Background()) {
		t.Error("Ping must fail against a closed server")
	}
}

func TestClientPull_ProgressDeduped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`{"status":"pulling manifest"}`,
			`{"status":"downloading","total":100,"completed":50}`,
			`{"status":"downloading","total":100,"completed":50}`,
			`{"status":"downloading","total":100,"completed":100}`,
			`{"status":"success"}`,
		}
		for _, l := range lines {
			_, _ = w.Write([]byte(l + "\n"))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	var seen []string
	if err := c.Pull(context.Background(), "llama3", func(s string) { seen = append(seen, s) }); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	want := []string{"pulling manifest", "downloading (50%)", "downloading (100%)", "success"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestClientAutoModel(t *testing.T) {
	for _, tc := range []struct {
		installed []string
		want      string
	}{
		{[]string{"mistral:7b", "llama3:8b"}, "llama3:8b"},
		{[]string{"codegemma", "mistral:7b"}, "mistral:7b"},
		{[]string{"some-exotic-model"}, "some-exotic-model"},
		{nil, ""},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			models := make([]map[string]string, 0, len(tc.installed))
			for _, name := range tc.installed {
				models = append(models, map[string]string{"name": name})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"models": models})
		}))

		c := NewClient(Config{BaseURL: srv.URL}, nil)
		got, err := c.AutoModel(context.Background())
		srv.Close()
		if err != nil {
			t.Fatalf("AutoModel(%v): %v", tc.installed, err)
		}
		if got != tc.want {
			t.Errorf("AutoModel(%v) = %q, want %q", tc.installed, got, tc.want)
		}
	}
}
