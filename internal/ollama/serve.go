package ollama

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var modelPreferences = []string{"llama3", "mistral", "gemma", "phi", "qwen"}

// AutoModel picks a model for agent runs: the first installed model
// from the preference list, else the first installed model.
func (c *Client) AutoModel(ctx context.Context) (string, error) {
	models, err := c.Models(ctx)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return "", nil
	}
	for _, pref := range modelPreferences {
		for _, m := range models {
			if strings.Contains(strings.ToLower(m), pref) {
				return m, nil
			}
		}
	}
	return models[0], nil
}

// EnsureRunning starts `ollama serve` when the server is down and an
// ollama binary is installed, then waits for it to answer. Returns
// whether the server is reachable.
func (c *Client) EnsureRunning(ctx context.Context) bool {
	if c.Ping(ctx) {
		return true
	}
	path, err := exec.LookPath("ollama")
	if err != nil {
		return false
	}

	cmd := exec.Command(path, "serve")
	if err := cmd.Start(); err != nil {
		log.Warn().Str("component", "ollama").Err(err).Msg("failed to start ollama serve")
		return false
	}
	// Detach: the server outlives this process.
	if err := cmd.Process.Release(); err != nil {
		log.Debug().Str("component", "ollama").Err(err).Msg("release server process")
	}

	for i := 0; i < 24; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(500 * time.Millisecond):
		}
		if c.Ping(ctx) {
			return true
		}
	}
	return false
}
