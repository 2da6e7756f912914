package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/jonathan/cv-optimizer/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator returns a canned JSON response and counts calls.
type fakeGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeGenerator) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	f.calls++
	return f.response, f.err
}

func (f *fakeGenerator) GetModel(_ llm.ModelTier) string {
	return "fake-model"
}

func TestExtract_ParsesAndNormalizes(t *testing.T) {
	gen := &fakeGenerator{response: `["Python", "  SQL ", "python"]`}
	extractor := NewExtractor(gen)

	result, err := extractor.Extract(context.Background(), "some cv text", KindCV)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, result)
}

func TestExtract_EmptyTextSkipsAPICall(t *testing.T) {
	gen := &fakeGenerator{response: `["should not be called"]`}
	extractor := NewExtractor(gen)

	result, err := extractor.Extract(context.Background(), "   \n\t ", KindCV)
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.Equal(t, 0, gen.calls)
}

func TestExtract_CachesByTextAndKind(t *testing.T) {
	gen := &fakeGenerator{response: `["Go"]`}
	extractor := NewExtractor(gen)
	ctx := context.Background()

	_, err := extractor.Extract(ctx, "same text", KindCV)
	require.NoError(t, err)
	_, err = extractor.Extract(ctx, "same text", KindCV)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)

	// Same text with a different kind is a different cache entry.
	_, err = extractor.Extract(ctx, "same text", KindJob)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestExtract_APIError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rate limited")}
	extractor := NewExtractor(gen)

	_, err := extractor.Extract(context.Background(), "cv text", KindCV)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, KindCV, extractionErr.Kind)
	assert.ErrorContains(t, err, "rate limited")
}

func TestExtract_MalformedResponse(t *testing.T) {
	gen := &fakeGenerator{response: `{"skills": ["Go"]}`}
	extractor := NewExtractor(gen)

	_, err := extractor.Extract(context.Background(), "cv text", KindJob)
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.True(t, errors.As(err, &extractionErr))
}

func TestExtract_ErrorsAreNotCached(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("transient")}
	extractor := NewExtractor(gen)
	ctx := context.Background()

	_, err := extractor.Extract(ctx, "cv text", KindCV)
	require.Error(t, err)

	gen.err = nil
	gen.response = `["Go"]`
	result, err := extractor.Extract(ctx, "cv text", KindCV)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, result)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "sorts case-insensitively",
			input:    []string{"sql", "Docker", "AWS"},
			expected: []string{"AWS", "Docker", "sql"},
		},
		{
			name:     "dedupes keeping first spelling",
			input:    []string{"PostgreSQL", "postgresql", "POSTGRESQL"},
			expected: []string{"PostgreSQL"},
		},
		{
			name:     "drops blanks",
			input:    []string{" ", "", "Go"},
			expected: []string{"Go"},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestExtractionCache_BoundedEviction(t *testing.T) {
	cache := newExtractionCache()

	for i := 0; i < maxCacheEntries+10; i++ {
		cache.put(cacheKey(string(rune('a'+i%26))+string(rune(i)), KindCV, "m"), []string{"x"})
	}

	assert.Equal(t, maxCacheEntries, cache.len())
}

func TestExtractionCache_ReturnsCopy(t *testing.T) {
	cache := newExtractionCache()
	key := cacheKey("doc", KindCV, "m")
	cache.put(key, []string{"Go", "SQL"})

	first, ok := cache.get(key)
	require.True(t, ok)
	first[0] = "mutated"

	second, ok := cache.get(key)
	require.True(t, ok)
	assert.Equal(t, []string{"Go", "SQL"}, second)
}
