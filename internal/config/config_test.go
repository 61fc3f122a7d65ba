// File: internal/config/config_test.go
// Brief: Option validation and secret resolution tests.

package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := NewOptions().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
		want   string
	}{
		{"empty install dir", func(o *Options) { o.InstallDir = " " }, "install directory"},
		{"empty domain", func(o *Options) { o.Domain = "" }, "domain"},
		{"domain with path", func(o *Options) { o.Domain = "example.com/api" }, "bare hostname"},
		{"bad log level", func(o *Options) { o.LogLevel = "trace" }, "log level"},
		{"bad color mode", func(o *Options) { o.ColorMode = "rainbow" }, "color mode"},
		{"email without smtp host", func(o *Options) { o.EnableEmailSignup = true }, "smtp-host"},
		{"bad smtp port", func(o *Options) { o.EnableEmailSignup = true; o.SMTPHost = "mail"; o.SMTPPort = 0 }, "port"},
		{"bad admin email", func(o *Options) {
			o.EnableEmailSignup = true
			o.SMTPHost = "mail"
			o.SMTPAdminEmail = "not-an-email"
		}, "admin email"},
		{"bad kv version", func(o *Options) { o.VaultKVVer = 3 }, "kv version"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := NewOptions()
			tc.mutate(o)
			err := o.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}

func TestResolveSecrets_FileBacked(t *testing.T) {
	dir := t.TempDir()
	secrets := filepath.Join(dir, "secrets.yaml")
	if err := os.WriteFile(secrets, []byte("db-password: pw\nsmtp:\n  pass: mailpw\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	o := NewOptions()
	o.SecretsFile = secrets
	o.DBPassword = "secret://local/db-password"
	o.JWTSecret = "literal-secret"
	o.SMTPPass = "secret://local/smtp/pass"

	if err := o.ResolveSecrets(context.Background()); err != nil {
		t.Fatalf("ResolveSecrets: %v", err)
	}
	if o.DBPassword != "pw" {
		t.Fatalf("DBPassword = %q", o.DBPassword)
	}
	if o.JWTSecret != "literal-secret" {
		t.Fatalf("literal value altered: %q", o.JWTSecret)
	}
	if o.SMTPPass != "mailpw" {
		t.Fatalf("SMTPPass = %q", o.SMTPPass)
	}
}

func TestResolveSecrets_NoBackendLeavesLiterals(t *testing.T) {
	o := NewOptions()
	o.DBPassword = "plain"
	if err := o.ResolveSecrets(context.Background()); err != nil {
		t.Fatalf("ResolveSecrets: %v", err)
	}
	if o.DBPassword != "plain" {
		t.Fatalf("DBPassword = %q", o.DBPassword)
	}
}

func TestResolveSecrets_ReferenceWithoutBackend(t *testing.T) {
	o := NewOptions()
	o.DBPassword = "secret://vault/db-password"
	if err := o.ResolveSecrets(context.Background()); err == nil {
		t.Fatal("expected error resolving a reference with no backend configured")
	}
}

func TestValues(t *testing.T) {
	o := NewOptions()
	o.Domain = "10.0.0.5"
	o.EnableEmailSignup = true
	o.SMTPHost = "mail.example.com"

	vals := o.Values()
	if vals["API_EXTERNAL_URL"] != "http://10.0.0.5:8000" {
		t.Fatalf("API_EXTERNAL_URL = %q", vals["API_EXTERNAL_URL"])
	}
	if vals["SITE_URL"] != "http://10.0.0.5:3000" {
		t.Fatalf("SITE_URL = %q", vals["SITE_URL"])
	}
	if vals["MAILER_AUTOCONFIRM"] != "false" {
		t.Fatalf("MAILER_AUTOCONFIRM = %q with email signup enabled", vals["MAILER_AUTOCONFIRM"])
	}
}
