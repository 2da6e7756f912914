package skills

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned unit vectors by skill name.
type fakeEmbedder struct {
	vecs map[string][]float32
	err  error
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vecs[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func TestCompare_MatchedAndMissing(t *testing.T) {
	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"Python": {1, 0, 0},
		"SQL":    {0, 1, 0},
		"Excel":  {0, 0, 1},
	}}
	comparator := NewComparator(embedder)

	result, err := comparator.Compare(context.Background(),
		[]string{"Python", "SQL"},
		[]string{"Python", "Excel"})
	require.NoError(t, err)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "Python", result.Matched[0].CVSkill)
	assert.Equal(t, "Python", result.Matched[0].JobSkill)
	assert.InDelta(t, 1.0, result.Matched[0].Similarity, 1e-9)

	assert.Equal(t, []string{"Excel"}, result.Missing)
	assert.Equal(t, []string{"SQL"}, result.CVOnly)
	assert.Empty(t, result.Interesting)

	assert.Equal(t, 2, result.Stats.TotalCV)
	assert.Equal(t, 2, result.Stats.TotalJob)
	assert.Equal(t, 1, result.Stats.MatchedCount)
	assert.Equal(t, 1, result.Stats.MissingCount)
	assert.InDelta(t, 50.0, result.Stats.MatchPercentage, 1e-9)
}

func TestCompare_ExactMatchIgnoresCase(t *testing.T) {
	// Different vectors, but exact case-insensitive equality wins.
	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"python": {1, 0, 0},
		"Python": {0, 1, 0},
	}}
	comparator := NewComparator(embedder)

	result, err := comparator.Compare(context.Background(),
		[]string{"python"}, []string{"Python"})
	require.NoError(t, err)

	require.Len(t, result.Matched, 1)
	assert.InDelta(t, 1.0, result.Matched[0].Similarity, 1e-9)
	assert.InDelta(t, 100.0, result.Stats.MatchPercentage, 1e-9)
}

func TestCompare_InterestingSkills(t *testing.T) {
	// cos 0.4 normalizes to 0.7: below the match threshold, above the
	// interesting one.
	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"Kubernetes": {1, 0},
		"Docker":     {0.4, 0.9165151},
	}}
	comparator := NewComparator(embedder)

	result, err := comparator.Compare(context.Background(),
		[]string{"Kubernetes"}, []string{"Docker"})
	require.NoError(t, err)

	assert.Empty(t, result.Matched)
	assert.Equal(t, []string{"Docker"}, result.Missing)
	assert.Empty(t, result.CVOnly)
	assert.Equal(t, []string{"Kubernetes"}, result.Interesting)
	assert.Equal(t, 0, result.Stats.CVOnlyCount)
	assert.Equal(t, 1, result.Stats.InterestingCount)
}

func TestCompare_EmptyJobSkills(t *testing.T) {
	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"Go": {1, 0},
	}}
	comparator := NewComparator(embedder)

	result, err := comparator.Compare(context.Background(), []string{"Go"}, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Missing)
	assert.Equal(t, []string{"Go"}, result.CVOnly)
	assert.InDelta(t, 0.0, result.Stats.MatchPercentage, 1e-9)
}

func TestCompare_EmptyBothLists(t *testing.T) {
	comparator := NewComparator(&fakeEmbedder{})

	result, err := comparator.Compare(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Missing)
	assert.Empty(t, result.CVOnly)
	assert.Equal(t, 0, result.Stats.TotalCV)
	assert.InDelta(t, 0.0, result.Stats.MatchPercentage, 1e-9)
}

func TestCompare_EmbedderError(t *testing.T) {
	comparator := NewComparator(&fakeEmbedder{err: errors.New("quota exceeded")})

	_, err := comparator.Compare(context.Background(), []string{"Go"}, []string{"Go"})
	require.Error(t, err)

	var comparisonErr *ComparisonError
	assert.True(t, errors.As(err, &comparisonErr))
}

func TestCompare_MatchPercentageRounding(t *testing.T) {
	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"A": {1, 0}, "B": {0, 1}, "C": {0.5, 0.8660254},
	}}
	comparator := NewComparator(embedder)

	// 1 of 3 job skills matched: 33.333... rounds to 33.3.
	result, err := comparator.Compare(context.Background(),
		[]string{"A"}, []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.MatchedCount)
	assert.InDelta(t, 33.3, result.Stats.MatchPercentage, 1e-9)
}
