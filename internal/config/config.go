// Package config provides configuration loading and management for ollaterm.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Ollama             OllamaConfig `json:"ollama"                        mapstructure:"ollama"`
	Budgets            Budgets      `json:"budgets"                       mapstructure:"budgets"`
	Web                WebConfig    `json:"web"                           mapstructure:"web"`
	CustomInstructions string       `json:"custom_instructions,omitempty" mapstructure:"custom_instructions"`
}

// OllamaConfig describes how to reach the local Ollama server.
type OllamaConfig struct {
	BaseURL        string  `json:"base_url,omitempty"        mapstructure:"base_url"`
	Model          string  `json:"model,omitempty"           mapstructure:"model"`
	Temperature    float64 `json:"temperature,omitempty"     mapstructure:"temperature"`
	NumPredict     int     `json:"num_predict,omitempty"     mapstructure:"num_predict"`
	RequestTimeout int     `json:"request_timeout,omitempty" mapstructure:"request_timeout"`
}

// Budgets defines run limits.
type Budgets struct {
	MaxIterations    int `json:"max_iterations"               mapstructure:"max_iterations"`
	MaxParseRetries  int `json:"max_parse_retries,omitempty"  mapstructure:"max_parse_retries"`
	MaxConsecFails   int `json:"max_consec_fails,omitempty"   mapstructure:"max_consec_fails"`
	HistoryWindow    int `json:"history_window,omitempty"     mapstructure:"history_window"`
	CommandTimeout   int `json:"command_timeout,omitempty"    mapstructure:"command_timeout"`
	StdoutTailChars  int `json:"stdout_tail_chars,omitempty"  mapstructure:"stdout_tail_chars"`
	StderrTailChars  int `json:"stderr_tail_chars,omitempty"  mapstructure:"stderr_tail_chars"`
}

// WebConfig controls the optional search/fetch gateway.
type WebConfig struct {
	Enabled      bool   `json:"enabled"                 mapstructure:"enabled"`
	SearchURL    string `json:"search_url,omitempty"    mapstructure:"search_url"`
	FetchTimeout int    `json:"fetch_timeout,omitempty" mapstructure:"fetch_timeout"`
}

const (
	defaultBaseURL        = "http://localhost:11434"
	defaultTemperature    = 0.05
	defaultNumPredict     = 400
	defaultRequestTimeout = 180

	defaultMaxIterations   = 60
	defaultMaxParseRetries = 5
	defaultMaxConsecFails  = 3
	defaultHistoryWindow   = 16
	defaultCommandTimeout  = 120
	defaultStdoutTail      = 2000
	defaultStderrTail      = 800

	defaultFetchTimeout = 15
)

// Default returns the configuration used when no config file exists.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = defaultBaseURL
	}
	if c.Ollama.Temperature <= 0 {
		c.Ollama.Temperature = defaultTemperature
	}
	if c.Ollama.NumPredict <= 0 {
		c.Ollama.NumPredict = defaultNumPredict
	}
	if c.Ollama.RequestTimeout <= 0 {
		c.Ollama.RequestTimeout = defaultRequestTimeout
	}
	if c.Budgets.MaxIterations <= 0 {
		c.Budgets.MaxIterations = defaultMaxIterations
	}
	if c.Budgets.MaxParseRetries <= 0 {
		c.Budgets.MaxParseRetries = defaultMaxParseRetries
	}
	if c.Budgets.MaxConsecFails <= 0 {
		c.Budgets.MaxConsecFails = defaultMaxConsecFails
	}
	if c.Budgets.HistoryWindow <= 0 {
		c.Budgets.HistoryWindow = defaultHistoryWindow
	}
	if c.Budgets.CommandTimeout <= 0 {
		c.Budgets.CommandTimeout = defaultCommandTimeout
	}
	if c.Budgets.StdoutTailChars <= 0 {
		c.Budgets.StdoutTailChars = defaultStdoutTail
	}
	if c.Budgets.StderrTailChars <= 0 {
		c.Budgets.StderrTailChars = defaultStderrTail
	}
	if c.Web.FetchTimeout <= 0 {
		c.Web.FetchTimeout = defaultFetchTimeout
	}
}

// RequestTimeoutDuration returns the inference request timeout.
func (c OllamaConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// CommandTimeoutDuration returns the shell command timeout.
func (b Budgets) CommandTimeoutDuration() time.Duration {
	return time.Duration(b.CommandTimeout) * time.Second
}

// FetchTimeoutDuration returns the web gateway call timeout.
func (w WebConfig) FetchTimeoutDuration() time.Duration {
	return time.Duration(w.FetchTimeout) * time.Second
}

// Dir returns the ollaterm state directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir := filepath.Join(home, ".ollaterm")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	return dir, nil
}

// Load reads the config file at path. A missing file yields defaults;
// a present but invalid file is an error.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
	}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config file at path with secure-enough permissions.
func Save(path string, cfg Config) error {
	data, err := marshalIndent(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
