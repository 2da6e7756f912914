package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
		{
			name:     "normalizes CRLF",
			input:    "line one\r\nline two\rline three",
			expected: "line one\nline two\nline three",
		},
		{
			name:     "collapses repeated spaces",
			input:    "We   need    Go experience",
			expected: "We need Go experience",
		},
		{
			name:     "limits blank line runs",
			input:    "Requirements\n\n\n\n\nGo",
			expected: "Requirements\n\nGo",
		},
		{
			name:     "preserves bullet indentation",
			input:    "Requirements:\n  - Go\n  - PostgreSQL",
			expected: "Requirements:\n  - Go\n  - PostgreSQL",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "\n\n  Backend Engineer  \n\n",
			expected: "Backend Engineer",
		},
		{
			name:     "whitespace-only lines become empty",
			input:    "a\n   \t\nb",
			expected: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.input))
		})
	}
}

func TestNewMetadata(t *testing.T) {
	meta := NewMetadata("some cleaned text", "https://example.com/job")

	assert.Equal(t, "https://example.com/job", meta.URL)
	assert.Len(t, meta.Hash, 64)
	assert.Equal(t, len("some cleaned text"), meta.Chars)
	assert.NotEmpty(t, meta.Timestamp)
}

func TestNewMetadata_HashIsDeterministic(t *testing.T) {
	first := NewMetadata("content", "")
	second := NewMetadata("content", "")
	assert.Equal(t, first.Hash, second.Hash)

	different := NewMetadata("other content", "")
	assert.NotEqual(t, first.Hash, different.Hash)
}
