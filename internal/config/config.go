package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Label alphabet is A-Z, so a council can never exceed 26 members.
const MaxCouncilSize = 26

type CouncilConfig struct {
	Models         []string `toml:"models"`
	Chairman       string   `toml:"chairman"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

type ProviderConfig struct {
	Name    string   `toml:"name"` // openai | openrouter | claude | gemini
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Models  []string `toml:"models"`
	Default bool     `toml:"default"`
}

type StoreConfig struct {
	DataDir string `toml:"data_dir"`
}

type Config struct {
	Council   CouncilConfig    `toml:"council"`
	Providers []ProviderConfig `toml:"providers"`
	Store     StoreConfig      `toml:"store"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides file values with env vars if present.
func (c *Config) applyEnv() {
	if v := os.Getenv("COUNCIL_MODELS"); v != "" {
		var models []string
		for _, m := range strings.Split(v, ",") {
			if m = strings.TrimSpace(m); m != "" {
				models = append(models, m)
			}
		}
		c.Council.Models = models
	}
	if v := os.Getenv("COUNCIL_CHAIRMAN"); v != "" {
		c.Council.Chairman = v
	}
	if v := os.Getenv("COUNCIL_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Council.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("COUNCIL_DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.APIKey == "" {
			p.APIKey = os.Getenv(apiKeyEnv(p.Name))
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Council.TimeoutSeconds == 0 {
		c.Council.TimeoutSeconds = 120
	}
	if c.Store.DataDir == "" {
		c.Store.DataDir = "data/conversations"
	}
}

// apiKeyEnv maps a provider name to its conventional API key variable.
func apiKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "claude":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Council.TimeoutSeconds) * time.Second
}

// ProviderFor routes a model to its provider: an explicit listing wins,
// otherwise the provider marked default serves any unlisted model.
func (c *Config) ProviderFor(model string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		for _, m := range p.Models {
			if m == model {
				return p, true
			}
		}
	}
	for _, p := range c.Providers {
		if p.Default {
			return p, true
		}
	}
	return ProviderConfig{}, false
}

func (c *Config) Validate() error {
	if len(c.Council.Models) == 0 {
		return fmt.Errorf("config: council.models must not be empty")
	}
	if len(c.Council.Models) > MaxCouncilSize {
		return fmt.Errorf("config: council.models has %d entries, maximum is %d", len(c.Council.Models), MaxCouncilSize)
	}
	if c.Council.Chairman == "" {
		return fmt.Errorf("config: council.chairman must be set")
	}
	if c.Council.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: council.timeout_seconds must be positive")
	}
	seen := make(map[string]bool)
	for _, m := range c.Council.Models {
		if seen[m] {
			return fmt.Errorf("config: duplicate council model %q", m)
		}
		seen[m] = true
	}
	for _, m := range append([]string{c.Council.Chairman}, c.Council.Models...) {
		if _, ok := c.ProviderFor(m); !ok {
			return fmt.Errorf("config: no provider configured for model %q", m)
		}
	}
	return nil
}
