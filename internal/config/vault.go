package config

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"

	"resumatch/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets names the KV v2 secrets to read, as "<mount>/<path>". The
// "<mount>/data/<path>" form of the raw API is accepted too.
type VaultSecrets struct {
	// APIKeys holds a "keys" field with comma-separated server API keys
	APIKeys string `mapstructure:"apiKeys"`
	// ProviderKeys holds "openai", "anthropic", "google" and "deepseek" fields
	ProviderKeys string `mapstructure:"providerKeys"`
}

const vaultReadTimeout = 10 * time.Second

// kvReader returns the data of one KV v2 secret
type kvReader interface {
	ReadSecret(ctx context.Context, path string) (map[string]any, error)
}

// VaultClient reads KV v2 secrets
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault and checks that it is reachable
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	apiConfig := api.DefaultConfig()
	if cfg.Address != "" {
		apiConfig.Address = cfg.Address
	}
	client, err := api.NewClient(apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault at %s: %w", apiConfig.Address, err)
	}
	if health.Sealed {
		return nil, fmt.Errorf("vault at %s is sealed", apiConfig.Address)
	}
	logger.Info("Connected to Vault",
		"address", apiConfig.Address,
		"version", health.Version,
		"token_prefix", MaskKey(token))

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken prefers the configured token over the token file
func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// ReadSecret reads the latest version of a KV v2 secret
func (vc *VaultClient) ReadSecret(ctx context.Context, path string) (map[string]any, error) {
	mount, secretPath, err := splitKVPath(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, vaultReadTimeout)
	defer cancel()

	secret, err := vc.client.KVv2(mount).Get(ctx, secretPath)
	if stderrors.Is(err, api.ErrSecretNotFound) {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}

	version := 0
	if secret.VersionMetadata != nil {
		version = secret.VersionMetadata.Version
	}
	vc.logger.Debug("Secret read from Vault", "mount", mount, "path", secretPath, "version", version)
	return secret.Data, nil
}

// splitKVPath turns "secret/resumatch/keys" or "secret/data/resumatch/keys"
// into the mount and the path inside it.
func splitKVPath(path string) (mount, secretPath string, err error) {
	mount, secretPath, ok := strings.Cut(strings.Trim(path, "/"), "/")
	secretPath = strings.TrimPrefix(secretPath, "data/")
	if !ok || mount == "" || secretPath == "" {
		return "", "", fmt.Errorf("invalid vault secret path %q (want <mount>/<path>)", path)
	}
	return mount, secretPath, nil
}

// ApplyVaultSecrets overrides server API keys and provider keys with the
// values stored in Vault. It does nothing when Vault is disabled.
func ApplyVaultSecrets(ctx context.Context, config *Config, logger *errors.Logger) error {
	if logger == nil {
		logger = errors.Discard()
	}
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	return loadVaultSecrets(ctx, client, config, logger)
}

func loadVaultSecrets(ctx context.Context, client kvReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.APIKeys != "" {
		data, err := client.ReadSecret(ctx, secrets.APIKeys)
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		raw, ok := data["keys"].(string)
		if !ok {
			return fmt.Errorf("failed to load API keys from vault: %s has no string field \"keys\"", secrets.APIKeys)
		}
		if keys := splitKeyList(raw); len(keys) > 0 {
			config.Server.APIKeys = keys
			logger.Info("API keys loaded from Vault", "count", len(keys))
		} else {
			logger.Warn("No API keys found in Vault", "path", secrets.APIKeys)
		}
	}

	if secrets.ProviderKeys != "" {
		data, err := client.ReadSecret(ctx, secrets.ProviderKeys)
		if err != nil {
			return fmt.Errorf("failed to load provider keys from vault: %w", err)
		}
		logger.Info("Provider keys loaded from Vault", "providers", applyProviderKeys(&config.AI.Keys, data))
	}
	return nil
}

func splitKeyList(raw string) []string {
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if k := strings.TrimSpace(part); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// applyProviderKeys copies non-empty string fields into keys and returns the
// providers that were set.
func applyProviderKeys(keys *ProviderKeys, data map[string]any) []string {
	targets := []struct {
		field  string
		target *string
	}{
		{"openai", &keys.OpenAI},
		{"anthropic", &keys.Anthropic},
		{"google", &keys.Google},
		{"deepseek", &keys.DeepSeek},
	}

	var loaded []string
	for _, t := range targets {
		if value, ok := data[t.field].(string); ok && strings.TrimSpace(value) != "" {
			*t.target = strings.TrimSpace(value)
			loaded = append(loaded, t.field)
		}
	}
	return loaded
}
