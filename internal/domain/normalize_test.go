package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vidstream/vidstream-api/internal/domain"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"  ALICE@Example.com ", "alice@example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.NormalizeHandle(tt.in))
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice smith", "Alice Smith"},
		{"  ALICE   SMITH  ", "Alice Smith"},
		{"bob", "Bob"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.TitleCase(tt.in), "input %q", tt.in)
	}
}

func TestIsEmailValid(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"alice@example.com", true},
		{" ALICE@Example.com ", true},
		{"first.last+tag@sub.example.io", true},
		{"alice@example", false},
		{"alice.example.com", false},
		{"@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.IsEmailValid(tt.email), "email %q", tt.email)
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, domain.IsBlank(""))
	assert.True(t, domain.IsBlank("   "))
	assert.False(t, domain.IsBlank(" x "))
}
