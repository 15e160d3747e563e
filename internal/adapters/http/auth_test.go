package http

import (
	"testing"

	"github.com/melih/podman-remote/internal/adapters/secrets"
	"github.com/stretchr/testify/assert"
)

func TestCheckBearer(t *testing.T) {
	tokens := secrets.NewStaticToken("abc123")

	tests := []struct {
		header string
		want   authDecision
	}{
		{"", rejectedMissingHeader},
		{"abc123", rejectedMalformedScheme},
		{"Basic abc123", rejectedMalformedScheme},
		{"bearer abc123", rejectedMalformedScheme},
		{"Bearerabc123", rejectedMalformedScheme},
		{"Bearer", rejectedMalformedScheme},
		{"Bearer ", rejectedInvalidToken},
		{"Bearer wrong", rejectedInvalidToken},
		{"Bearer  abc123", rejectedInvalidToken},
		{"Bearer abc123 ", rejectedInvalidToken},
		{"Bearer abc1234", rejectedInvalidToken},
		{"Bearer abc123", authorized},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, checkBearer(tokens, tt.header), "header %q", tt.header)
	}
}

func TestCheckBearerEmptyExpectedToken(t *testing.T) {
	tokens := secrets.NewStaticToken("")

	assert.Equal(t, rejectedInvalidToken, checkBearer(tokens, "Bearer "))
	assert.Equal(t, rejectedInvalidToken, checkBearer(tokens, "Bearer anything"))
}

func TestAuthDecisionString(t *testing.T) {
	assert.Equal(t, "missing authorization header", rejectedMissingHeader.String())
	assert.Equal(t, "malformed authorization scheme", rejectedMalformedScheme.String())
	assert.Equal(t, "invalid token", rejectedInvalidToken.String())
	assert.Equal(t, "authorized", authorized.String())
}
