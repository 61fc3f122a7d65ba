// File: internal/credentials/file.go
// Brief: Credential artifact written to the install directory.

package credentials

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the credential artifact written under the install directory.
const FileName = "credentials.yaml"

// Artifact is the on-disk projection of a Set plus the reconstructed
// connection strings an operator needs to reach the stack.
type Artifact struct {
	DBPassword     string `yaml:"dbPassword"`
	JWTSecret      string `yaml:"jwtSecret"`
	AnonKey        string `yaml:"anonKey"`
	ServiceRoleKey string `yaml:"serviceRoleKey"`
	PostgresURL    string `yaml:"postgresUrl"`
	APIURL         string `yaml:"apiUrl"`
	StudioURL      string `yaml:"studioUrl"`
}

// BuildArtifact reconstructs connection strings for the given domain.
func (s *Set) BuildArtifact(domain string) Artifact {
	return Artifact{
		DBPassword:     s.DBPassword,
		JWTSecret:      s.JWTSecret,
		AnonKey:        s.AnonKey,
		ServiceRoleKey: s.ServiceRoleKey,
		PostgresURL:    fmt.Sprintf("postgres://postgres:%s@%s:5432/postgres", s.DBPassword, domain),
		APIURL:         fmt.Sprintf("http://%s:8000", domain),
		StudioURL:      fmt.Sprintf("http://%s:3000", domain),
	}
}

// WriteFile persists the artifact with owner-only permissions. Callers invoke
// this only after provisioning succeeded.
func (s *Set) WriteFile(installDir, domain string) (string, error) {
	data, err := yaml.Marshal(s.BuildArtifact(domain))
	if err != nil {
		return "", fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return "", fmt.Errorf("create install dir: %w", err)
	}
	path := filepath.Join(installDir, FileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write credentials: %w", err)
	}
	return path, nil
}

// LoadFile reads a previously written credential artifact, allowing resets to
// reuse the original secrets instead of regenerating them.
func LoadFile(installDir string) (*Set, error) {
	raw, err := os.ReadFile(filepath.Join(installDir, FileName))
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &Set{
		DBPassword:     a.DBPassword,
		JWTSecret:      a.JWTSecret,
		AnonKey:        a.AnonKey,
		ServiceRoleKey: a.ServiceRoleKey,
	}, nil
}
