package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func defaultConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfigFile(writeConfig(t, "app:\n  logLevel: info\n"))
	require.NoError(t, err)
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := defaultConfig(t)

	assert.Equal(t, "ollama", cfg.AI.Provider)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.AI.Endpoints.Ollama)
	assert.Equal(t, 5000, cfg.Scoring.MaxJobWords)
	assert.Equal(t, 10, cfg.Scoring.CacheEntries)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.True(t, cfg.AI.CircuitBreaker.Enabled)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadConfigFileAndOperationFallback(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: anthropic
  model: claude-sonnet
  rewrite:
    provider: openai
    maxRetries: 5
server:
  port: "9000"
`)
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)

	rewrite := cfg.Operation(OpRewrite)
	assert.Equal(t, "openai", rewrite.Provider)
	assert.Equal(t, "claude-sonnet", rewrite.Model)
	assert.Equal(t, 5, rewrite.MaxRetries)
	assert.Equal(t, 180*time.Second, rewrite.Timeout)
	assert.InDelta(t, 0.4, rewrite.Temperature, 0.001)

	interview := cfg.Operation(OpInterview)
	assert.Equal(t, "anthropic", interview.Provider)
	assert.Equal(t, cfg.AI.Timeout, interview.Timeout)
	assert.InDelta(t, 0.7, interview.Temperature, 0.001)

	unknown := cfg.Operation("something-else")
	assert.Equal(t, "anthropic", unknown.Provider)
}

func TestProviderKeysFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-plain")
	t.Setenv("RESUMATCH_AI_KEYS_OPENAI", "sk-prefixed")
	t.Setenv("ANTHROPIC_API_KEY", "ant-env")
	t.Setenv("GOOGLE_GENERATIVE_AI_API_KEY", "")
	t.Setenv("DEEPSEEK_API_KEY", "")
	t.Setenv("RESUMATCH_AI_PROVIDER", "google")

	cfg := defaultConfig(t)

	assert.Equal(t, "google", cfg.AI.Provider)
	assert.Equal(t, "sk-prefixed", cfg.ProviderKey("openai"))
	assert.Equal(t, "ant-env", cfg.ProviderKey("anthropic"))
	assert.Equal(t, "", cfg.ProviderKey("ollama"))
	assert.Equal(t, map[string]bool{
		"openai":    true,
		"anthropic": true,
		"google":    false,
		"deepseek":  false,
	}, cfg.KeyAvailability())
}

func TestServerAPIKeysFromEnvironment(t *testing.T) {
	t.Setenv("RESUMATCH_SERVER_APIKEYS", "one, two ,,three")
	cfg := &Config{}
	cfg.applyServerAPIKeyFallbacks()
	assert.Equal(t, []string{"one", "two", "three"}, cfg.Server.APIKeys)
}

func TestValidate(t *testing.T) {
	negative := -time.Second
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.AI.Provider = "mistral" }, wantErr: "unknown AI provider"},
		{name: "unknown operation provider", mutate: func(c *Config) { c.AI.Parse.Provider = "bard" }, wantErr: "unknown AI provider for parse"},
		{name: "operation timeout", mutate: func(c *Config) { c.AI.CoverLetter.Timeout = &negative }, wantErr: "coverLetter must be positive"},
		{name: "zero timeout", mutate: func(c *Config) { c.AI.Timeout = 0 }, wantErr: "AI timeout must be positive"},
		{name: "fabrication range", mutate: func(c *Config) { c.AI.DefaultFabricationLevel = 101 }, wantErr: "between 0 and 100"},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port is required"},
		{name: "cache entries", mutate: func(c *Config) { c.Scoring.CacheEntries = 0 }, wantErr: "cacheEntries must be positive"},
		{name: "bad default format", mutate: func(c *Config) { c.App.DefaultFormat = "yaml" }, wantErr: "invalid default format"},
		{name: "tls without cert", mutate: func(c *Config) { c.Server.TLS.Mode = "server" }, wantErr: "TLS configuration error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{name: "disabled", tls: TLSConfig{Mode: "disabled"}},
		{name: "empty mode", tls: TLSConfig{}},
		{name: "server with files", tls: TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem", MinVersion: "1.3"}},
		{name: "server missing key", tls: TLSConfig{Mode: "server", CertFile: "c.pem"}, wantErr: "required for server mode"},
		{name: "mutual unsupported", tls: TLSConfig{Mode: "mutual"}, wantErr: "invalid TLS mode"},
		{name: "bad version", tls: TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k", MinVersion: "1.1"}, wantErr: "invalid TLS minVersion"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSystemPromptFiles(t *testing.T) {
	t.Cleanup(systemPrompts.reset)

	dir := t.TempDir()
	rewritePrompt := filepath.Join(dir, "rewrite.md")
	require.NoError(t, os.WriteFile(rewritePrompt, []byte("  You are a meticulous resume editor.\n"), 0600))

	path := writeConfig(t, "ai:\n  rewrite:\n    systemPromptFile: "+rewritePrompt+"\n  parse:\n    systemPrompt: inline parser prompt\n")
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "You are a meticulous resume editor.", cfg.Operation(OpRewrite).SystemPrompt)
	assert.Equal(t, "inline parser prompt", cfg.Operation(OpParse).SystemPrompt)
	assert.Empty(t, cfg.Operation(OpInterview).SystemPrompt)

	require.NoError(t, os.WriteFile(rewritePrompt, []byte("Edited prompt"), 0600))
	require.NoError(t, cfg.ReloadSystemPrompt(OpRewrite))
	assert.Equal(t, "Edited prompt", cfg.Operation(OpRewrite).SystemPrompt)

	require.NoError(t, os.WriteFile(rewritePrompt, []byte("   "), 0600))
	err = cfg.ReloadSystemPrompt(OpRewrite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
	assert.Equal(t, "Edited prompt", cfg.Operation(OpRewrite).SystemPrompt, "failed reload keeps the previous prompt")

	assert.Error(t, cfg.ReloadSystemPrompt(OpCoverLetter))
}

func TestMissingPromptFileFailsLoad(t *testing.T) {
	t.Cleanup(systemPrompts.reset)

	path := writeConfig(t, "ai:\n  coverLetter:\n    systemPromptFile: /nonexistent/cover.md\n")
	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coverLetter prompt file not found")
}

func TestPromptWatcherReloads(t *testing.T) {
	t.Cleanup(systemPrompts.reset)

	dir := t.TempDir()
	promptFile := filepath.Join(dir, "interview.md")
	require.NoError(t, os.WriteFile(promptFile, []byte("first"), 0600))

	cfg, err := LoadConfigFile(writeConfig(t, "ai:\n  interview:\n    systemPromptFile: "+promptFile+"\n"))
	require.NoError(t, err)

	reloaded := make(chan string, 4)
	watcher := NewPromptWatcher(cfg, 20*time.Millisecond, func(op string) { reloaded <- op }, errors.Discard())
	require.NoError(t, watcher.Start())
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(promptFile, []byte("second"), 0600))

	select {
	case op := <-reloaded:
		assert.Equal(t, OpInterview, op)
	case <-time.After(5 * time.Second):
		t.Fatal("prompt watcher did not reload")
	}
	assert.Equal(t, "second", cfg.Operation(OpInterview).SystemPrompt)
}

func TestPromptWatcherNoFiles(t *testing.T) {
	watcher := NewPromptWatcher(&Config{}, 0, nil, errors.Discard())
	assert.NoError(t, watcher.Start())
	assert.NoError(t, watcher.Stop())
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "***", MaskKey("short"))
	assert.Equal(t, "sk-abcde...", MaskKey("sk-abcdefghijkl"))
}
