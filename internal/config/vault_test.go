package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/errors"
)

type fakeVault map[string]map[string]any

func (f fakeVault) ReadSecret(_ context.Context, path string) (map[string]any, error) {
	data, ok := f[path]
	if !ok {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return data, nil
}

func TestSplitKVPath(t *testing.T) {
	tests := []struct {
		path      string
		mount     string
		secret    string
		expectErr bool
	}{
		{path: "secret/resumatch/providers", mount: "secret", secret: "resumatch/providers"},
		{path: "secret/data/resumatch/providers", mount: "secret", secret: "resumatch/providers"},
		{path: "/kv/app/", mount: "kv", secret: "app"},
		{path: "secret", expectErr: true},
		{path: "/secret/", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			mount, secret, err := splitKVPath(tt.path)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mount, mount)
			assert.Equal(t, tt.secret, secret)
		})
	}
}

func TestResolveVaultToken(t *testing.T) {
	t.Run("token from config", func(t *testing.T) {
		token, err := resolveVaultToken(VaultConfig{Token: "direct-token", TokenFile: "/ignored"})
		require.NoError(t, err)
		assert.Equal(t, "direct-token", token)
	})

	t.Run("token from file is trimmed", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "vault-token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("  file-token  \n"), 0600))

		token, err := resolveVaultToken(VaultConfig{TokenFile: tokenFile})
		require.NoError(t, err)
		assert.Equal(t, "file-token", token)
	})

	t.Run("missing token file", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{TokenFile: "/nonexistent/token/file"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read vault token file")
	})

	t.Run("no token provided", func(t *testing.T) {
		_, err := resolveVaultToken(VaultConfig{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vault token is required")
	})
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := &Config{Vault: VaultConfig{Enabled: false}}
	assert.NoError(t, ApplyVaultSecrets(context.Background(), cfg, nil))
}

func TestApplyProviderKeys(t *testing.T) {
	keys := ProviderKeys{OpenAI: "sk-config", Google: "g-config"}
	loaded := applyProviderKeys(&keys, map[string]any{
		"openai":    "sk-vault",
		"anthropic": " ant-vault ",
		"google":    "",
		"deepseek":  42,
	})

	assert.Equal(t, []string{"openai", "anthropic"}, loaded)
	assert.Equal(t, "sk-vault", keys.OpenAI)
	assert.Equal(t, "ant-vault", keys.Anthropic)
	assert.Equal(t, "g-config", keys.Google, "empty vault value keeps configured key")
	assert.Empty(t, keys.DeepSeek, "non-string values are ignored")
}

func TestLoadVaultSecrets(t *testing.T) {
	ctx := context.Background()
	newConfig := func(apiKeys, providerKeys string) *Config {
		return &Config{
			Server: ServerConfig{APIKeys: []string{"from-config"}},
			Vault:  VaultConfig{Secrets: VaultSecrets{APIKeys: apiKeys, ProviderKeys: providerKeys}},
		}
	}
	vault := fakeVault{
		"secret/resumatch/server":    {"keys": " k1, ,k2 "},
		"secret/resumatch/empty":     {"keys": ""},
		"secret/resumatch/malformed": {"keys": []string{"k1"}},
		"secret/resumatch/providers": {"deepseek": "ds-key"},
	}

	t.Run("both secrets", func(t *testing.T) {
		cfg := newConfig("secret/resumatch/server", "secret/resumatch/providers")
		require.NoError(t, loadVaultSecrets(ctx, vault, cfg, errors.Discard()))
		assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
		assert.Equal(t, "ds-key", cfg.AI.Keys.DeepSeek)
	})

	t.Run("empty key list keeps configured keys", func(t *testing.T) {
		cfg := newConfig("secret/resumatch/empty", "")
		require.NoError(t, loadVaultSecrets(ctx, vault, cfg, errors.Discard()))
		assert.Equal(t, []string{"from-config"}, cfg.Server.APIKeys)
	})

	t.Run("keys field must be a string", func(t *testing.T) {
		err := loadVaultSecrets(ctx, vault, newConfig("secret/resumatch/malformed", ""), errors.Discard())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `no string field "keys"`)
	})

	t.Run("missing provider secret", func(t *testing.T) {
		err := loadVaultSecrets(ctx, vault, newConfig("", "secret/missing"), errors.Discard())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load provider keys from vault")
	})

	t.Run("nothing configured", func(t *testing.T) {
		cfg := newConfig("", "")
		require.NoError(t, loadVaultSecrets(ctx, vault, cfg, errors.Discard()))
		assert.Equal(t, []string{"from-config"}, cfg.Server.APIKeys)
	})
}
