// File: internal/token/token.go
// Brief: HS256 service token minting and verification.

// Package token mints the compact signed tokens the provisioned services use
// to authenticate against each other. Tokens are standard HS256 JWTs built
// directly from crypto primitives so that minting stays deterministic: the
// same secret and claims always produce byte-identical output.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// header is the fixed serialized JOSE header for every minted token.
const header = `{"alg":"HS256","typ":"JWT"}`

var (
	// ErrEmptySecret is returned when minting or verifying with a zero-length secret.
	ErrEmptySecret = errors.New("signing secret is empty")
	// ErrInvalidClaims is returned when a required claim is missing.
	ErrInvalidClaims = errors.New("invalid claims")
	// ErrMalformedToken is returned when a token does not have three segments.
	ErrMalformedToken = errors.New("malformed token")
	// ErrSignatureMismatch is returned when a token's signature does not verify.
	ErrSignatureMismatch = errors.New("token signature mismatch")
)

// Claims is the payload of a minted token. encoding/json serializes map keys
// in sorted order, which keeps the payload segment canonical.
type Claims map[string]any

var requiredClaims = []string{"role", "iss", "iat", "exp"}

// Mint builds the three-segment token string for the given secret and claims.
// It is a pure function: no randomness, no clock reads.
func Mint(secret []byte, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	for _, key := range requiredClaims {
		if _, ok := claims[key]; !ok {
			return "", fmt.Errorf("%w: missing %q", ErrInvalidClaims, key)
		}
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshal claims: %w", err)
	}
	signingInput := segment([]byte(header)) + "." + segment(payload)
	return signingInput + "." + segment(sign(secret, signingInput)), nil
}

// Verify recomputes the signature over a token's first two segments and
// compares it against the third in constant time.
func Verify(secret []byte, tok string) error {
	if len(secret) == 0 {
		return ErrEmptySecret
	}
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	want, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	got := sign(secret, parts[0]+"."+parts[1])
	if !hmac.Equal(got, want) {
		return ErrSignatureMismatch
	}
	return nil
}

// DecodeClaims returns the payload segment of a token without verifying it.
func DecodeClaims(tok string) (Claims, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

func segment(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

func sign(secret []byte, signingInput string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}
