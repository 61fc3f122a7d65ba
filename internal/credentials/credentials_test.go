package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/stackup/internal/token"
)

func TestInitialize_GeneratesSecrets(t *testing.T) {
	set, err := Initialize("", "")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if len(set.DBPassword) != SecretLength {
		t.Fatalf("password length=%d", len(set.DBPassword))
	}
	if len(set.JWTSecret) != SecretLength {
		t.Fatalf("secret length=%d", len(set.JWTSecret))
	}
	for _, r := range set.DBPassword + set.JWTSecret {
		if !strings.ContainsRune(secretAlphabet, r) {
			t.Fatalf("unexpected rune %q", r)
		}
	}
	other, err := Initialize("", "")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if other.JWTSecret == set.JWTSecret {
		t.Fatalf("secrets should not repeat")
	}
}

func TestInitialize_ProvidedSecretsAndRoles(t *testing.T) {
	set, err := Initialize("pw", "s3cr3t")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if set.DBPassword != "pw" || set.JWTSecret != "s3cr3t" {
		t.Fatalf("provided values overridden: %+v", set)
	}
	if err := token.Verify([]byte("s3cr3t"), set.AnonKey); err != nil {
		t.Fatalf("anon verify: %v", err)
	}
	if err := token.Verify([]byte("s3cr3t"), set.ServiceRoleKey); err != nil {
		t.Fatalf("service_role verify: %v", err)
	}
	anon, err := token.DecodeClaims(set.AnonKey)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	service, err := token.DecodeClaims(set.ServiceRoleKey)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if anon["role"] != "anon" || service["role"] != "service_role" {
		t.Fatalf("roles anon=%v service=%v", anon["role"], service["role"])
	}
	if anon["iss"] != TokenIssuer {
		t.Fatalf("iss=%v", anon["iss"])
	}
}

func TestWriteFile_Permissions(t *testing.T) {
	dir := t.TempDir()
	set, err := Initialize("pw", "s3cr3t")
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	path, err := set.WriteFile(dir, "example.com")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("path=%s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm=%v", info.Mode().Perm())
	}

	loaded, err := LoadFile(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *loaded != *set {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", loaded, set)
	}
}

func TestBuildArtifact_ConnectionStrings(t *testing.T) {
	set := &Set{DBPassword: "pw", JWTSecret: "s", AnonKey: "a", ServiceRoleKey: "sr"}
	a := set.BuildArtifact("example.com")
	if a.PostgresURL != "postgres://postgres:pw@example.com:5432/postgres" {
		t.Fatalf("postgres url=%s", a.PostgresURL)
	}
	if a.APIURL != "http://example.com:8000" {
		t.Fatalf("api url=%s", a.APIURL)
	}
}
