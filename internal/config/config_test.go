package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
[council]
models = ["openai/gpt-5.1", "anthropic/claude-sonnet-4-5", "google/gemini-3-pro"]
chairman = "google/gemini-3-pro"
timeout_seconds = 90

[[providers]]
name = "openrouter"
api_key = "sk-test"
default = true

[store]
data_dir = "testdata/conversations"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)

	assert.Len(t, cfg.Council.Models, 3)
	assert.Equal(t, "google/gemini-3-pro", cfg.Council.Chairman)
	assert.Equal(t, 90*time.Second, cfg.Timeout())
	assert.Equal(t, "testdata/conversations", cfg.Store.DataDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
[council]
models = ["m"]
chairman = "m"

[[providers]]
name = "openai"
api_key = "k"
default = true
`))
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, cfg.Timeout())
	assert.Equal(t, "data/conversations", cfg.Store.DataDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("COUNCIL_MODELS", "x/one, x/two")
	t.Setenv("COUNCIL_CHAIRMAN", "x/chair")
	t.Setenv("COUNCIL_TIMEOUT_SECONDS", "30")

	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, []string{"x/one", "x/two"}, cfg.Council.Models)
	assert.Equal(t, "x/chair", cfg.Council.Chairman)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-env")

	cfg, err := Load(writeConfig(t, `
[council]
models = ["m"]
chairman = "m"

[[providers]]
name = "openrouter"
default = true
`))
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.Providers[0].APIKey)
}

func TestProviderFor(t *testing.T) {
	cfg := &Config{Providers: []ProviderConfig{
		{Name: "claude", Models: []string{"claude-sonnet-4-5"}},
		{Name: "openrouter", Default: true},
	}}

	p, ok := cfg.ProviderFor("claude-sonnet-4-5")
	require.True(t, ok)
	assert.Equal(t, "claude", p.Name)

	p, ok = cfg.ProviderFor("anything-else")
	require.True(t, ok)
	assert.Equal(t, "openrouter", p.Name)

	cfg.Providers[1].Default = false
	_, ok = cfg.ProviderFor("anything-else")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Council: CouncilConfig{
				Models:         []string{"a", "b"},
				Chairman:       "c",
				TimeoutSeconds: 60,
			},
			Providers: []ProviderConfig{{Name: "openrouter", Default: true}},
		}
	}

	assert.NoError(t, base().Validate())

	cfg := base()
	cfg.Council.Models = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Council.Chairman = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Council.TimeoutSeconds = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Council.Models = []string{"a", "a"}
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Providers = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	models := make([]string, MaxCouncilSize+1)
	for i := range models {
		models[i] = string(rune('a' + i))
	}
	cfg.Council.Models = models
	assert.Error(t, cfg.Validate())
}
