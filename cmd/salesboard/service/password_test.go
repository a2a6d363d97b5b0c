package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	attrs := []passwordAttribute{{"username", "alice"}, {"email address", "alice@example.com"}}

	tests := []struct {
		name     string
		password string
		want     []string
	}{
		{"strong", "Tr1cky-Horse-57", nil},
		{"short", "aB3$x", []string{"This password is too short. It must contain at least 8 characters."}},
		{"common", "password123", []string{"This password is too common."}},
		{"numeric", "9081726354", []string{"This password is entirely numeric."}},
		{"similar to username", "alice-wonder", []string{"The password is too similar to the username."}},
		{"short and numeric", "1234", []string{
			"This password is too short. It must contain at least 8 characters.",
			"This password is entirely numeric.",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkPassword(tt.password, attrs))
		})
	}
}

func TestTooSimilarIgnoresShortParts(t *testing.T) {
	assert.False(t, tooSimilar("unrelated-secret", "al"))
	assert.True(t, tooSimilar("myexample99", "bob@example.com"))
	assert.False(t, tooSimilar("anything", ""))
}
