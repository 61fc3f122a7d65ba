// File: internal/config/config.go
// Brief: Internal config package implementation for 'config'.

// Package config defines the flag plumbing and runtime options for stackup's
// commands, translating Cobra/Viper flag values into a strongly typed struct
// the provisioner consumes.
package config

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/stackup/internal/secretstore"
)

// Options holds all CLI configuration used by the provisioner.
type Options struct {
	InstallDir string
	Domain     string
	Network    string

	DBPassword string
	JWTSecret  string

	EnableEmailSignup bool
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPass          string
	SMTPAdminEmail    string
	SMTPSenderName    string

	Reset       bool
	AssetsURL   string
	LogLevel    string
	ColorMode   string
	NonInteract bool

	SecretsFile  string
	VaultAddr    string
	VaultToken   string
	VaultRoleID  string
	VaultSecret  string
	VaultMount   string
	VaultKVVer   int
	VaultAuthMnt string
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		InstallDir: defaultInstallDir(),
		Domain:     "localhost",
		Network:    "stackup",
		LogLevel:   "info",
		ColorMode:  "auto",
	}
}

func defaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stackup"
	}
	return filepath.Join(home, "stackup")
}

// AddFlags binds configuration flags to the provided Cobra command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	o.BindFlags(cmd.Flags())
}

// BindFlags attaches provisioning flags to an arbitrary FlagSet.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.InstallDir, "install-dir", "d", o.InstallDir, "Directory that receives stack volumes, templates, and credentials")
	fs.StringVar(&o.Domain, "domain", o.Domain, "Hostname or IP clients use to reach the stack")
	fs.StringVar(&o.Network, "network", o.Network, "Container network the stack runs on")
	fs.StringVar(&o.DBPassword, "db-password", "", "Database superuser password (secret:// references allowed; generated when empty)")
	fs.StringVar(&o.JWTSecret, "jwt-secret", "", "JWT signing secret (secret:// references allowed; generated when empty)")
	fs.BoolVar(&o.EnableEmailSignup, "enable-email-signup", false, "Enable email signup and confirmation via SMTP")
	fs.StringVar(&o.SMTPHost, "smtp-host", "", "SMTP relay host for auth emails")
	fs.IntVar(&o.SMTPPort, "smtp-port", 587, "SMTP relay port")
	fs.StringVar(&o.SMTPUser, "smtp-user", "", "SMTP username")
	fs.StringVar(&o.SMTPPass, "smtp-pass", "", "SMTP password (secret:// references allowed)")
	fs.StringVar(&o.SMTPAdminEmail, "smtp-admin-email", "", "From address for auth emails")
	fs.StringVar(&o.SMTPSenderName, "smtp-sender-name", "", "Display name for auth emails")
	fs.StringVar(&o.AssetsURL, "assets-url", "", "Override the template download base URL")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn, or error")
	fs.StringVar(&o.ColorMode, "color", o.ColorMode, "Color output: auto, always, or never")
	fs.BoolVar(&o.NonInteract, "non-interactive", false, "Fail instead of prompting for missing values")
	fs.StringVar(&o.SecretsFile, "secrets-file", "", "YAML file backing secret://local/... references")
	fs.StringVar(&o.VaultAddr, "vault-addr", "", "Vault address backing secret://vault/... references")
	fs.StringVar(&o.VaultToken, "vault-token", "", "Vault token")
	fs.StringVar(&o.VaultRoleID, "vault-role-id", "", "Vault AppRole role id")
	fs.StringVar(&o.VaultSecret, "vault-secret-id", "", "Vault AppRole secret id")
	fs.StringVar(&o.VaultMount, "vault-mount", "secret", "Vault KV mount")
	fs.IntVar(&o.VaultKVVer, "vault-kv-version", 2, "Vault KV engine version (1 or 2)")
	fs.StringVar(&o.VaultAuthMnt, "vault-auth-mount", "approle", "Vault auth mount for AppRole login")
}

// Validate checks cross-field consistency before a run starts.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.InstallDir) == "" {
		return fmt.Errorf("install directory cannot be empty")
	}
	if strings.TrimSpace(o.Domain) == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if strings.ContainsAny(o.Domain, "/ ") {
		return fmt.Errorf("domain %q must be a bare hostname or IP", o.Domain)
	}
	switch o.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", o.LogLevel)
	}
	switch o.ColorMode {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (expected auto, always, or never)", o.ColorMode)
	}
	if o.EnableEmailSignup {
		if strings.TrimSpace(o.SMTPHost) == "" {
			return fmt.Errorf("email signup requires --smtp-host")
		}
		if o.SMTPPort <= 0 || o.SMTPPort > 65535 {
			return fmt.Errorf("smtp port %d out of range", o.SMTPPort)
		}
		if o.SMTPAdminEmail != "" {
			if _, err := mail.ParseAddress(o.SMTPAdminEmail); err != nil {
				return fmt.Errorf("invalid smtp admin email %q: %w", o.SMTPAdminEmail, err)
			}
		}
	}
	if o.VaultKVVer != 1 && o.VaultKVVer != 2 {
		return fmt.Errorf("vault kv version must be 1 or 2")
	}
	return nil
}

// SecretResolver assembles the resolver for secret:// references from the
// configured backends. Returns nil when no backend is configured.
func (o *Options) SecretResolver() (*secretstore.Resolver, error) {
	providers := map[string]secretstore.Provider{}
	defaultProvider := ""
	if strings.TrimSpace(o.SecretsFile) != "" {
		p, err := secretstore.NewFileProvider(o.SecretsFile, "")
		if err != nil {
			return nil, err
		}
		providers["local"] = p
		defaultProvider = "local"
	}
	if strings.TrimSpace(o.VaultAddr) != "" {
		p, err := secretstore.NewVaultProvider(secretstore.VaultConfig{
			Address:   o.VaultAddr,
			Mount:     o.VaultMount,
			KVVersion: o.VaultKVVer,
			Token:     o.VaultToken,
			RoleID:    o.VaultRoleID,
			SecretID:  o.VaultSecret,
			AuthMount: o.VaultAuthMnt,
		})
		if err != nil {
			return nil, err
		}
		providers["vault"] = p
		defaultProvider = "vault"
	}
	if len(providers) == 0 {
		return nil, nil
	}
	return secretstore.NewResolver(providers, defaultProvider), nil
}

// ResolveSecrets replaces secret:// references in the secret-bearing fields.
func (o *Options) ResolveSecrets(ctx context.Context) error {
	resolver, err := o.SecretResolver()
	if err != nil {
		return err
	}
	for _, field := range []*string{&o.DBPassword, &o.JWTSecret, &o.SMTPPass} {
		resolved, _, err := resolver.ResolveString(ctx, *field)
		if err != nil {
			return err
		}
		*field = resolved
	}
	return nil
}

// Values builds the substitution map fed to the service environment
// templates. Credential values are layered on top by the caller.
func (o *Options) Values() map[string]string {
	autoconfirm := "true"
	if o.EnableEmailSignup {
		autoconfirm = "false"
	}
	return map[string]string{
		"DOMAIN":              o.Domain,
		"INSTALL_DIR":         o.InstallDir,
		"SITE_URL":            fmt.Sprintf("http://%s:3000", o.Domain),
		"API_EXTERNAL_URL":    fmt.Sprintf("http://%s:8000", o.Domain),
		"ENABLE_EMAIL_SIGNUP": fmt.Sprintf("%t", o.EnableEmailSignup),
		"MAILER_AUTOCONFIRM":  autoconfirm,
		"SMTP_HOST":           o.SMTPHost,
		"SMTP_PORT":           fmt.Sprintf("%d", o.SMTPPort),
		"SMTP_USER":           o.SMTPUser,
		"SMTP_PASS":           o.SMTPPass,
		"SMTP_ADMIN_EMAIL":    o.SMTPAdminEmail,
		"SMTP_SENDER_NAME":    o.SMTPSenderName,
	}
}
