package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Errorf("BaseURL = %q", cfg.Ollama.BaseURL)
	}
	if cfg.Budgets.MaxIterations != 60 {
		t.Errorf("MaxIterations = %d", cfg.Budgets.MaxIterations)
	}
	if cfg.Budgets.HistoryWindow != 16 {
		t.Errorf("HistoryWindow = %d", cfg.Budgets.HistoryWindow)
	}
	if cfg.Web.Enabled {
		t.Error("web must be opt-in")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "ollama": {"model": "llama3:8b", "temperature": 0.2},
  "budgets": {"max_iterations": 10},
  "web": {"enabled": true},
  "custom_instructions": "prefer ripgrep over grep"
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ollama.Model != "llama3:8b" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.Ollama.Temperature)
	}
	if cfg.Budgets.MaxIterations != 10 {
		t.Errorf("MaxIterations = %d", cfg.Budgets.MaxIterations)
	}
	// Unset fields still get defaults.
	if cfg.Budgets.MaxParseRetries != 5 {
		t.Errorf("MaxParseRetries = %d", cfg.Budgets.MaxParseRetries)
	}
	if !cfg.Web.Enabled {
		t.Error("Web.Enabled lost")
	}
	if cfg.CustomInstructions != "prefer ripgrep over grep" {
		t.Errorf("CustomInstructions = %q", cfg.CustomInstructions)
	}
}

func TestLoad_SchemaRejectsBadFile(t *testing.T) {
	for name, content := range map[string]string{
		"unknown key":    `{"olama": {"model": "x"}}`,
		"wrong type":     `{"budgets": {"max_iterations": "many"}}`,
		"out of range":   `{"ollama": {"temperature": 9}}`,
		"nested unknown": `{"web": {"enabled": true, "proxy": "socks5://"}}`,
	} {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: Load accepted %s", name, content)
		}
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Ollama.Model = "phi3:mini"
	cfg.CustomInstructions = "always use absolute paths"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Ollama.Model != "phi3:mini" {
		t.Errorf("Model = %q", got.Ollama.Model)
	}
	if got.CustomInstructions != cfg.CustomInstructions {
		t.Errorf("CustomInstructions = %q", got.CustomInstructions)
	}
}

func TestValidateSettings_ErrorListsAllProblems(t *testing.T) {
	err := ValidateSettings(map[string]any{
		"bogus": true,
		"ollama": map[string]any{
			"temperature": 9,
		},
	})
	if err == nil {
		t.Fatal("want validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "bogus") || !strings.Contains(msg, "temperature") {
		t.Errorf("error should mention every violation: %v", err)
	}
}

func TestTimeoutDurations(t *testing.T) {
	cfg := Default()
	if got := cfg.Ollama.RequestTimeoutDuration(); got != 180*time.Second {
		t.Errorf("request timeout = %v", got)
	}
	if got := cfg.Budgets.CommandTimeoutDuration(); got != 120*time.Second {
		t.Errorf("command timeout = %v", got)
	}
	if got := cfg.Web.FetchTimeoutDuration(); got != 15*time.Second {
		t.Errorf("fetch timeout = %v", got)
	}
}
