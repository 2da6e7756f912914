package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_Empty(t *testing.T) {
	assert.Nil(t, SplitText("", 500, 50))
}

func TestSplitText_SingleChunk(t *testing.T) {
	text := "short document"
	chunks := SplitText(text, 500, 50)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
}

func TestSplitText_WindowOffsets(t *testing.T) {
	// 1200 characters with size 500 / overlap 50 gives windows starting
	// at 0, 450 and 900, the last truncated at the end of the text.
	text := strings.Repeat("a", 1200)
	chunks := SplitText(text, 500, 50)

	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Len(t, chunks[0].Text, 500)

	assert.Equal(t, 450, chunks[1].Start)
	assert.Len(t, chunks[1].Text, 500)

	assert.Equal(t, 900, chunks[2].Start)
	assert.Len(t, chunks[2].Text, 300)
}

func TestSplitText_OverlapContent(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 1000; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	text := sb.String()

	chunks := SplitText(text, 500, 50)
	require.Len(t, chunks, 3)

	// The last 50 characters of a window reappear at the start of the next.
	assert.Equal(t, chunks[0].Text[450:], chunks[1].Text[:50])
	assert.Equal(t, chunks[1].Text[450:], chunks[2].Text[:50])
}

func TestSplitText_ExactChunkSize(t *testing.T) {
	text := strings.Repeat("x", 500)
	chunks := SplitText(text, 500, 50)

	require.Len(t, chunks, 1)
	assert.Len(t, chunks[0].Text, 500)
}

func TestSplitText_Deterministic(t *testing.T) {
	text := strings.Repeat("hello world ", 200)

	first := SplitText(text, 500, 50)
	second := SplitText(text, 500, 50)

	assert.Equal(t, first, second)
}

func TestSplitText_Unicode(t *testing.T) {
	// Offsets are rune-based, so multi-byte characters never split.
	text := strings.Repeat("é", 600)
	chunks := SplitText(text, 500, 50)

	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, strings.HasPrefix(c.Text, "é"))
	}
	assert.Equal(t, 450, chunks[1].Start)
	assert.Equal(t, 150, len([]rune(chunks[1].Text)))
}

func TestSplitText_InvalidParamsFallBackToDefaults(t *testing.T) {
	text := strings.Repeat("a", 1200)

	chunks := SplitText(text, 0, -1)
	require.NotEmpty(t, chunks)
	assert.Len(t, chunks[0].Text, DefaultChunkSize)
}
