// File: internal/secretstore/vault_provider.go
// Brief: HashiCorp Vault KV secret provider.

package secretstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"
)

// VaultConfig configures a Vault-backed provider. Token and AppRole auth are
// supported; Token wins when both are set.
type VaultConfig struct {
	Address   string
	Namespace string
	Mount     string
	KVVersion int
	Token     string
	RoleID    string
	SecretID  string
	AuthMount string
}

type vaultProvider struct {
	client    *vault.Client
	mount     string
	kvVersion int
	cfg       VaultConfig
	authOnce  sync.Once
	authErr   error
}

// NewVaultProvider builds a Vault KV provider. Secret paths may carry a
// #key suffix to select one field; otherwise the "value" field is used.
func NewVaultProvider(cfg VaultConfig) (Provider, error) {
	address := strings.TrimSpace(cfg.Address)
	if address == "" {
		return nil, fmt.Errorf("vault address is required")
	}
	if strings.TrimSpace(cfg.Token) == "" && (strings.TrimSpace(cfg.RoleID) == "" || strings.TrimSpace(cfg.SecretID) == "") {
		return nil, fmt.Errorf("vault auth requires a token or an approle roleId/secretId pair")
	}

	apiCfg := vault.DefaultConfig()
	apiCfg.Address = address
	client, err := vault.NewClient(apiCfg)
	if err != nil {
		return nil, err
	}
	if ns := strings.TrimSpace(cfg.Namespace); ns != "" {
		client.SetNamespace(ns)
	}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		client.SetToken(token)
	}

	mount := strings.Trim(strings.TrimSpace(cfg.Mount), "/")
	if mount == "" {
		mount = "secret"
	}
	kvVersion := cfg.KVVersion
	if kvVersion == 0 {
		kvVersion = 2
	}
	if kvVersion != 1 && kvVersion != 2 {
		return nil, fmt.Errorf("vault kvVersion must be 1 or 2")
	}
	return &vaultProvider{client: client, mount: mount, kvVersion: kvVersion, cfg: cfg}, nil
}

func (p *vaultProvider) Resolve(ctx context.Context, secretPath string) (string, error) {
	path, key := splitVaultPath(secretPath)
	if path == "" {
		return "", fmt.Errorf("vault secret path is required")
	}
	if err := p.ensureAuth(ctx); err != nil {
		return "", err
	}
	data, err := p.read(ctx, path)
	if err != nil {
		return "", err
	}
	return selectSecretValue(data, key, "value")
}

func (p *vaultProvider) ensureAuth(ctx context.Context) error {
	if strings.TrimSpace(p.cfg.Token) != "" {
		return nil
	}
	p.authOnce.Do(func() {
		p.authErr = p.loginAppRole(ctx)
	})
	return p.authErr
}

func (p *vaultProvider) loginAppRole(ctx context.Context) error {
	authMount := strings.Trim(strings.TrimSpace(p.cfg.AuthMount), "/")
	if authMount == "" {
		authMount = "approle"
	}
	secret, err := p.client.Logical().WriteWithContext(ctx, "auth/"+authMount+"/login", map[string]any{
		"role_id":   strings.TrimSpace(p.cfg.RoleID),
		"secret_id": strings.TrimSpace(p.cfg.SecretID),
	})
	if err != nil {
		return fmt.Errorf("vault approle login: %w", err)
	}
	if secret == nil || secret.Auth == nil || secret.Auth.ClientToken == "" {
		return fmt.Errorf("vault approle login returned no token")
	}
	p.client.SetToken(secret.Auth.ClientToken)
	return nil
}

func (p *vaultProvider) read(ctx context.Context, path string) (map[string]any, error) {
	path = strings.Trim(strings.TrimSpace(path), "/")
	switch p.kvVersion {
	case 1:
		secret, err := p.client.Logical().ReadWithContext(ctx, p.mount+"/"+path)
		if err != nil {
			return nil, err
		}
		if secret == nil || secret.Data == nil {
			return nil, fmt.Errorf("vault secret not found")
		}
		return secret.Data, nil
	default:
		secret, err := p.client.KVv2(p.mount).Get(ctx, path)
		if err != nil {
			return nil, err
		}
		if secret == nil || secret.Data == nil {
			return nil, fmt.Errorf("vault secret not found")
		}
		return secret.Data, nil
	}
}

func splitVaultPath(raw string) (path, key string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}
	parts := strings.SplitN(raw, "#", 2)
	path = strings.Trim(strings.TrimSpace(parts[0]), "/")
	if len(parts) > 1 {
		key = strings.TrimSpace(parts[1])
	}
	return path, key
}

func selectSecretValue(data map[string]any, key, fallback string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("secret data is empty")
	}
	for _, candidate := range []string{key, fallback} {
		if candidate == "" {
			continue
		}
		if val, ok := data[candidate]; ok {
			return coerceStringValue(val)
		}
	}
	if len(data) == 1 {
		for _, val := range data {
			return coerceStringValue(val)
		}
	}
	if key == "" {
		return "", fmt.Errorf("secret value is ambiguous; specify a key")
	}
	return "", fmt.Errorf("secret key %q not found", key)
}

func coerceStringValue(val any) (string, error) {
	switch typed := val.(type) {
	case string:
		return typed, nil
	case []byte:
		return string(typed), nil
	default:
		return "", fmt.Errorf("secret value must be a string")
	}
}
