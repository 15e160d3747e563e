package secrets

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strings"
)

// StaticToken implements ports.TokenValidator against a single shared token.
// It is immutable once constructed.
type StaticToken struct {
	expected []byte
}

// NewStaticToken returns a validator accepting exactly token. An empty
// token rejects everything.
func NewStaticToken(token string) *StaticToken {
	return &StaticToken{expected: []byte(token)}
}

// Validate reports whether token matches the expected value.
func (s *StaticToken) Validate(token string) bool {
	if len(s.expected) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(s.expected, []byte(token)) == 1
}

// Empty reports whether no token is configured.
func (s *StaticToken) Empty() bool {
	return len(s.expected) == 0
}

// ReadTokenFile reads a token from path, trimming surrounding whitespace
// (secret files usually end with a newline).
func ReadTokenFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
