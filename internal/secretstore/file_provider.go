// File: internal/secretstore/file_provider.go
// Brief: YAML-file backed secret provider.

package secretstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileProvider struct {
	path string
	data map[string]any
}

// NewFileProvider loads a YAML secrets file. Paths inside references walk
// nested maps, slash-separated.
func NewFileProvider(path, baseDir string) (Provider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("file provider path is required")
	}
	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	path = filepath.Clean(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file %q: %w", path, err)
	}
	data := make(map[string]any)
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse secrets file %q: %w", path, err)
	}
	return &fileProvider{path: path, data: data}, nil
}

func (p *fileProvider) Resolve(_ context.Context, secretPath string) (string, error) {
	secretPath = strings.TrimSpace(secretPath)
	if secretPath == "" {
		return "", fmt.Errorf("secret path is required")
	}
	var current any = p.data
	for _, part := range strings.Split(strings.Trim(secretPath, "/"), "/") {
		if part == "" {
			continue
		}
		m, ok := current.(map[string]any)
		if !ok {
			return "", fmt.Errorf("secret path %q does not lead to a value in %s", secretPath, p.path)
		}
		current, ok = m[part]
		if !ok {
			return "", fmt.Errorf("secret path %q not found in %s", secretPath, p.path)
		}
	}
	switch v := current.(type) {
	case string:
		return v, nil
	case int, int64, float64, bool:
		return fmt.Sprintf("%v", v), nil
	default:
		return "", fmt.Errorf("secret path %q is not a scalar in %s", secretPath, p.path)
	}
}
