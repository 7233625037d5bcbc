package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Provider key precedence order:
// 1. Vault (if configured) - Highest priority
// 2. Config file values
// 3. Environment variables (RESUMATCH_AI_KEYS_OPENAI, then OPENAI_API_KEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Scoring       ScoringConfig       `mapstructure:"scoring"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// AIConfig holds provider selection, credentials and per-operation overrides
type AIConfig struct {
	Provider                string               `mapstructure:"provider"`
	Model                   string               `mapstructure:"model"`
	Timeout                 time.Duration        `mapstructure:"timeout"`
	MaxRetries              int                  `mapstructure:"maxRetries"`
	Temperature             float32              `mapstructure:"temperature"`
	MaxTokens               int32                `mapstructure:"maxTokens"`
	DefaultFabricationLevel int                  `mapstructure:"defaultFabricationLevel"`
	Keys                    ProviderKeys         `mapstructure:"keys"`
	Endpoints               EndpointConfig       `mapstructure:"endpoints"`
	CircuitBreaker          CircuitBreakerConfig `mapstructure:"circuitBreaker"`

	Rewrite     OperationAIConfig `mapstructure:"rewrite"`
	CoverLetter OperationAIConfig `mapstructure:"coverLetter"`
	Parse       OperationAIConfig `mapstructure:"parse"`
	Interview   OperationAIConfig `mapstructure:"interview"`
}

// ProviderKeys holds the server-side API key of each cloud provider
type ProviderKeys struct {
	OpenAI    string `mapstructure:"openai"`
	Anthropic string `mapstructure:"anthropic"`
	Google    string `mapstructure:"google"`
	DeepSeek  string `mapstructure:"deepseek"`
}

// EndpointConfig holds provider base URLs
type EndpointConfig struct {
	OpenAI    string `mapstructure:"openai"`
	Anthropic string `mapstructure:"anthropic"`
	Google    string `mapstructure:"google"`
	DeepSeek  string `mapstructure:"deepseek"`
	Ollama    string `mapstructure:"ollama"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// ScoringConfig tunes the deterministic scorer and the generation cache
type ScoringConfig struct {
	MaxJobWords  int `mapstructure:"maxJobWords"`
	CacheEntries int `mapstructure:"cacheEntries"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	MaxRequestSize int64         `mapstructure:"maxRequestSize"`

	TLS TLSConfig `mapstructure:"tls"`

	// Valid API keys for authentication. Empty disables auth.
	APIKeys []string `mapstructure:"apiKeys"`

	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// TLSConfig holds static certificate configuration
type TLSConfig struct {
	Mode       string `mapstructure:"mode"` // "disabled" or "server"
	CertFile   string `mapstructure:"certFile"`
	KeyFile    string `mapstructure:"keyFile"`
	MinVersion string `mapstructure:"minVersion"` // "1.2" or "1.3"
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	RequestsPerMin int           `mapstructure:"requestsPerMin"`
	BurstCapacity  int           `mapstructure:"burstCapacity"`
	ByIP           bool          `mapstructure:"byIP"`
	ByAPIKey       bool          `mapstructure:"byAPIKey"`
	Window         time.Duration `mapstructure:"window"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// LoadConfig loads configuration from defaults, an optional config file and
// the environment.
func LoadConfig() (*Config, error) {
	return load(viper.New(), true)
}

func load(v *viper.Viper, searchPaths bool) (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	setDefaults(v)

	v.SetEnvPrefix("RESUMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindProviderKeyEnv(v); err != nil {
		return nil, err
	}
	log.Println("[CONFIG] Configured environment variable handling with prefix 'RESUMATCH'")

	if searchPaths {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/resumatch/")
		v.AddConfigPath("$HOME/.resumatch")
		v.AddConfigPath(".")
		log.Println("[CONFIG] Configured config file search paths: /etc/resumatch/, $HOME/.resumatch, .")
	}

	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()
	config.logConfigurationSources(configFileUsed)

	if err := config.loadSystemPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load system prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// LoadConfigFile loads configuration from an explicit file path instead of
// the search paths.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v, false)
}

// bindProviderKeyEnv lets the conventional provider variables fill the keys
// section when the prefixed ones are not set.
func bindProviderKeyEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"ai.keys.openai":    "OPENAI_API_KEY",
		"ai.keys.anthropic": "ANTHROPIC_API_KEY",
		"ai.keys.google":    "GOOGLE_GENERATIVE_AI_API_KEY",
		"ai.keys.deepseek":  "DEEPSEEK_API_KEY",
	}
	for key, env := range bindings {
		prefixed := "RESUMATCH_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !isKnownProvider(c.AI.Provider) {
		return fmt.Errorf("unknown AI provider: %s", c.AI.Provider)
	}
	for name, op := range c.operations() {
		if op.Provider != "" && !isKnownProvider(op.Provider) {
			return fmt.Errorf("unknown AI provider for %s: %s", name, op.Provider)
		}
		if op.Timeout != nil && *op.Timeout <= 0 {
			return fmt.Errorf("AI timeout for %s must be positive", name)
		}
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.AI.DefaultFabricationLevel < 0 || c.AI.DefaultFabricationLevel > 100 {
		return fmt.Errorf("default fabrication level must be between 0 and 100, got %d", c.AI.DefaultFabricationLevel)
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Scoring.MaxJobWords < 0 {
		return fmt.Errorf("scoring maxJobWords cannot be negative")
	}
	if c.Scoring.CacheEntries <= 0 {
		return fmt.Errorf("scoring cacheEntries must be positive")
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

func isKnownProvider(name string) bool {
	switch name {
	case "", "ollama", "openai", "anthropic", "google", "deepseek":
		return true
	}
	return false
}
