// File: internal/secretstore/resolver.go
// Brief: Resolves secret:// references in operator-supplied configuration.

// Package secretstore resolves secret:// references so credentials like the
// database password or SMTP password never have to appear literally in flags
// or environment variables.
package secretstore

import (
	"context"
	"fmt"
	"strings"
)

// Provider resolves secret paths for one backend.
type Provider interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// Ref is a parsed secret reference of the form secret://provider/path.
type Ref struct {
	Provider string
	Path     string
	Raw      string
}

// ParseRef detects and parses secret:// references. ok is false when value
// is a plain string rather than a reference.
func ParseRef(value, defaultProvider string) (Ref, bool, error) {
	const prefix = "secret://"
	if !strings.HasPrefix(value, prefix) {
		return Ref{}, false, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(value, prefix))
	if rest == "" {
		return Ref{}, true, fmt.Errorf("secret reference %q is missing a path", value)
	}
	provider := defaultProvider
	path := rest
	if i := strings.Index(rest, "/"); i > 0 {
		provider = rest[:i]
		path = rest[i+1:]
	}
	if strings.TrimSpace(path) == "" {
		return Ref{}, true, fmt.Errorf("secret reference %q is missing a path", value)
	}
	if strings.TrimSpace(provider) == "" {
		return Ref{}, true, fmt.Errorf("secret reference %q names no provider and no default is configured", value)
	}
	return Ref{Provider: provider, Path: path, Raw: value}, true, nil
}

// Resolver dispatches references to named providers and caches results for
// the life of the run.
type Resolver struct {
	providers       map[string]Provider
	defaultProvider string
	cache           map[string]string
}

// NewResolver builds a resolver over the given providers.
func NewResolver(providers map[string]Provider, defaultProvider string) *Resolver {
	return &Resolver{
		providers:       providers,
		defaultProvider: strings.TrimSpace(defaultProvider),
		cache:           map[string]string{},
	}
}

// ResolveString resolves value if it is a secret reference, returning it
// unchanged otherwise. replaced reports whether a resolution happened.
func (r *Resolver) ResolveString(ctx context.Context, value string) (resolved string, replaced bool, err error) {
	defaultProvider := ""
	if r != nil {
		defaultProvider = r.defaultProvider
	}
	ref, ok, err := ParseRef(value, defaultProvider)
	if !ok {
		return value, false, nil
	}
	if err != nil {
		return "", false, err
	}
	if r == nil {
		return "", false, fmt.Errorf("secret resolver is not configured")
	}

	key := ref.Provider + "|" + ref.Path
	if cached, ok := r.cache[key]; ok {
		return cached, true, nil
	}
	provider := r.providers[ref.Provider]
	if provider == nil {
		return "", false, fmt.Errorf("secret provider %q is not configured", ref.Provider)
	}
	val, err := provider.Resolve(ctx, ref.Path)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", ref.Raw, err)
	}
	r.cache[key] = val
	return val, true, nil
}
