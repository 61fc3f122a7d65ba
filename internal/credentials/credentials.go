// File: internal/credentials/credentials.go
// Brief: Per-run credential generation (db password, JWT secret, role tokens).

// Package credentials owns the secrets shared by the provisioned services:
// the database password, the token signing secret, and the two role tokens
// minted from it. A Set is assembled once at the start of a provisioning run
// and never mutated afterwards.
package credentials

import (
	"crypto/rand"
	"fmt"

	"github.com/example/stackup/internal/token"
)

// Alphabet for generated secrets. 64 symbols, so bytes from the CSPRNG map
// onto it without modulo bias.
const secretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// SecretLength is the length of generated passwords and signing secrets.
const SecretLength = 64

// Token claim constants. The issued-at/expiry window is fixed so that token
// minting stays deterministic for a given secret.
const (
	TokenIssuer    = "supabase"
	TokenIssuedAt  = 1643806800 // 2022-02-02T13:00:00Z
	TokenExpiresAt = 1801573200 // 2027-02-02T13:00:00Z
)

// Set holds every credential generated for one provisioning run.
type Set struct {
	DBPassword     string
	JWTSecret      string
	AnonKey        string
	ServiceRoleKey string
}

// Initialize resolves or generates the secrets and mints both role tokens.
// Empty dbPassword or jwtSecret arguments request generation.
func Initialize(dbPassword, jwtSecret string) (*Set, error) {
	var err error
	if dbPassword == "" {
		if dbPassword, err = randomSecret(SecretLength); err != nil {
			return nil, fmt.Errorf("generate database password: %w", err)
		}
	}
	if jwtSecret == "" {
		if jwtSecret, err = randomSecret(SecretLength); err != nil {
			return nil, fmt.Errorf("generate JWT secret: %w", err)
		}
	}
	anon, err := token.Mint([]byte(jwtSecret), roleClaims("anon"))
	if err != nil {
		return nil, fmt.Errorf("mint anon token: %w", err)
	}
	service, err := token.Mint([]byte(jwtSecret), roleClaims("service_role"))
	if err != nil {
		return nil, fmt.Errorf("mint service_role token: %w", err)
	}
	return &Set{
		DBPassword:     dbPassword,
		JWTSecret:      jwtSecret,
		AnonKey:        anon,
		ServiceRoleKey: service,
	}, nil
}

func roleClaims(role string) token.Claims {
	return token.Claims{
		"role": role,
		"iss":  TokenIssuer,
		"iat":  TokenIssuedAt,
		"exp":  TokenExpiresAt,
	}
}

func randomSecret(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range raw {
		out[i] = secretAlphabet[int(b)%len(secretAlphabet)]
	}
	return string(out), nil
}
