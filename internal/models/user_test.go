package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"test@EMAIL.COM", "test@email.com"},
		{"Test.User@Example.Org", "Test.User@example.org"},
		{"  spaced@Host.io ", "spaced@host.io"},
		{"no-at-sign", "no-at-sign"},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeEmail(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, NormalizeEmail(got), "normalizing twice changed %q", tt.in)
	}
}

func TestTagString(t *testing.T) {
	assert.Equal(t, "Vegan", Tag{Name: "Vegan"}.String())
	assert.Equal(t, "Cucumber", Ingredient{Name: "Cucumber"}.String())
}
