// Package config resolves agent settings from defaults, an optional YAML file
// and the environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/petasbytes/mcp-agent/internal/errkind"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel     = "claude-3-5-sonnet-20241022"
	DefaultMaxTokens = 1000
	DefaultEventsDir = ".agent"

	DefaultSystemPrompt = "You are an assistant that can use tools. " +
		"Choose the appropriate tool and explain why you chose it."
)

// Environment variables consulted by FromEnv.
const (
	EnvAPIKey       = "ANTHROPIC_API_KEY"
	EnvModel        = "AGENT_MODEL"
	EnvMaxTokens    = "AGENT_MAX_TOKENS"
	EnvSystemPrompt = "AGENT_SYSTEM_PROMPT"
	EnvHistory      = "AGENT_HISTORY"
	EnvObserveJSON  = "AGENT_OBSERVE_JSON"
	EnvEventsDir    = "AGENT_EVENTS_DIR"
)

// Config holds everything needed to construct a Session.
type Config struct {
	APIKey       string `yaml:"-"`
	Model        string `yaml:"model"`
	MaxTokens    int64  `yaml:"max_tokens"`
	SystemPrompt string `yaml:"system_prompt"`
	ServerPath   string `yaml:"server"`
	Verbose      bool   `yaml:"verbose"`
	HistoryPath  string `yaml:"history"`
	ObserveJSON  bool   `yaml:"observe_json"`
	EventsDir    string `yaml:"events_dir"`
}

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Model:        DefaultModel,
		MaxTokens:    DefaultMaxTokens,
		SystemPrompt: DefaultSystemPrompt,
		EventsDir:    DefaultEventsDir,
	}
}

// Load returns defaults overlaid with the YAML file at path (if any) and then
// the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, errkind.Configuration(errors.Wrapf(err, "read config %s", path))
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, errkind.Configuration(errors.Wrapf(err, "parse config %s", path))
		}
	}
	if err := cfg.FromEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv overlays set environment variables onto c.
func (c *Config) FromEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Model = v
	}
	if v := os.Getenv(EnvMaxTokens); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errkind.Configuration(errors.Wrapf(err, "invalid %s %q", EnvMaxTokens, v))
		}
		c.MaxTokens = n
	}
	if v := os.Getenv(EnvSystemPrompt); v != "" {
		c.SystemPrompt = v
	}
	if v := os.Getenv(EnvHistory); v != "" {
		c.HistoryPath = v
	}
	if v, ok := os.LookupEnv(EnvObserveJSON); ok {
		c.ObserveJSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv(EnvEventsDir); v != "" {
		c.EventsDir = v
	}
	return nil
}

// Validate reports a configuration error for settings that would make a
// Session impossible to construct.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errkind.Configuration(errors.Errorf("%s is not set", EnvAPIKey))
	}
	if strings.TrimSpace(c.ServerPath) == "" {
		return errkind.Configuration(errors.New("server path is required"))
	}
	if c.MaxTokens <= 0 {
		return errkind.Configuration(errors.Errorf("max tokens must be positive, got %d", c.MaxTokens))
	}
	if c.Model == "" {
		return errkind.Configuration(errors.New("model is required"))
	}
	return nil
}
