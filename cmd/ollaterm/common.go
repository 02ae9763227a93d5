package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/metalagman/ollaterm/internal/config"
	"github.com/metalagman/ollaterm/internal/ollama"
	"github.com/metalagman/ollaterm/internal/store"
)

func loadConfig() (config.Config, string, error) {
	path, err := configPath()
	if err != nil {
		return config.Config{}, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}

func openStore() (*sql.DB, *store.Store, func(), error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, nil, func() {}, err
	}
	dbPath := filepath.Join(dir, "ollaterm.db")
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, func() {}, err
	}
	return db, store.NewStore(db), func() { _ = db.Close() }, nil
}

func newClient(cfg config.Config) *ollama.Client {
	base := cfg.Ollama.BaseURL
	if env := strings.TrimSpace(os.Getenv("OLLAMA_HOST")); env != "" {
		base = env
	}
	return ollama.NewClient(ollama.Config{
		BaseURL:     base,
		Temperature: cfg.Ollama.Temperature,
		NumPredict:  cfg.Ollama.NumPredict,
		Timeout:     cfg.Ollama.RequestTimeoutDuration(),
	}, &http.Client{})
}

// stdinPrompter reads free-text answers from the terminal. The loop
// guarantees the spinner is stopped before Ask is called.
type stdinPrompter struct {
	in *bufio.Reader
}

func newStdinPrompter() *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(os.Stdin)}
}

func (p *stdinPrompter) Ask(_ context.Context, _ string) (string, error) {
	fmt.Print("  Your answer: ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (p *stdinPrompter) confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

func (p *stdinPrompter) readLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
