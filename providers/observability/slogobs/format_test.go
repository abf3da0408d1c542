package slogobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"compact", FormatCompact},
		{"PRETTY", FormatPretty},
		{" json ", FormatJSON},
		{"xml", FormatCompact},
		{"", FormatCompact},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseFormat(tt.input), "ParseFormat(%q)", tt.input)
	}
}

func TestFormatFromEnv(t *testing.T) {
	t.Setenv("UNICHAT_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "")
	assert.Equal(t, FormatCompact, FormatFromEnv())

	t.Setenv("LOG_FORMAT", "pretty")
	assert.Equal(t, FormatPretty, FormatFromEnv(), "LOG_FORMAT is the fallback")

	t.Setenv("UNICHAT_LOG_FORMAT", "json")
	assert.Equal(t, FormatJSON, FormatFromEnv(), "UNICHAT_LOG_FORMAT wins")
}
