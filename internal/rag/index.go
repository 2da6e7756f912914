package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/jonathan/cv-optimizer/internal/llm"
)

// ErrIndexEmpty is returned by Query when no document has been indexed.
// Callers can recover by indexing a document and retrying.
var ErrIndexEmpty = errors.New("rag: index is empty")

// Result is one retrieved chunk with its normalized similarity score.
type Result struct {
	Chunk Chunk
	// Score is cosine similarity mapped to [0, 1]: (cos+1)/2, clamped.
	Score float64
}

// Index is an in-memory vector index over the chunks of one document.
// Indexing a new document replaces the previous one. Safe for
// concurrent use.
type Index struct {
	embedder llm.Embedder

	chunkSize int
	overlap   int

	mu      sync.RWMutex
	chunks  []Chunk
	vectors [][]float32
}

// NewIndex creates an empty index using the default chunking parameters.
func NewIndex(embedder llm.Embedder) *Index {
	return &Index{
		embedder:  embedder,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
}

// NewIndexWithChunking creates an empty index with explicit chunking
// parameters. Used by tests and callers with unusual document shapes.
func NewIndexWithChunking(embedder llm.Embedder, chunkSize, overlap int) *Index {
	return &Index{
		embedder:  embedder,
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// IndexDocument splits text into chunks, embeds each chunk, and replaces
// the index contents. Indexing an empty document clears the index.
func (idx *Index) IndexDocument(ctx context.Context, text string) error {
	chunks := SplitText(text, idx.chunkSize, idx.overlap)
	if len(chunks) == 0 {
		idx.mu.Lock()
		idx.chunks = nil
		idx.vectors = nil
		idx.mu.Unlock()
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := idx.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("indexing document: %w", err)
	}

	idx.mu.Lock()
	idx.chunks = chunks
	idx.vectors = vectors
	idx.mu.Unlock()
	return nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// Query embeds the query once and returns the k most similar chunks,
// ordered by descending score; ties break on ascending chunk index.
// Returns ErrIndexEmpty when nothing has been indexed.
func (idx *Index) Query(ctx context.Context, query string, k int) ([]Result, error) {
	idx.mu.RLock()
	chunks := idx.chunks
	vectors := idx.vectors
	idx.mu.RUnlock()

	if len(chunks) == 0 {
		return nil, ErrIndexEmpty
	}
	if k <= 0 {
		return nil, nil
	}

	queryVec, err := idx.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results := make([]Result, len(chunks))
	for i := range chunks {
		results[i] = Result{
			Chunk: chunks[i],
			Score: NormalizedSimilarity(queryVec, vectors[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizedSimilarity maps cosine similarity from [-1, 1] to [0, 1]
// and clamps against floating point drift.
func NormalizedSimilarity(a, b []float32) float64 {
	score := (CosineSimilarity(a, b) + 1) / 2
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
