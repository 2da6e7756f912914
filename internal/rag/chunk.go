// Package rag provides an in-memory retrieval index over document chunks.
// Documents are split into fixed sliding windows, embedded once at index
// time, and queried by cosine similarity.
package rag

// Chunking defaults. A 500-character window with a 50-character overlap
// keeps sentence fragments that straddle a boundary retrievable from
// either side.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// Chunk is one window of a source document.
type Chunk struct {
	// Index is the 0-based position of this chunk within its document.
	Index int
	// Text is the raw window content, no normalization applied.
	Text string
	// Start is the rune offset of the window start in the source document.
	Start int
}

// SplitText splits text into sliding windows of size chunkSize with the
// given overlap. Window i starts at offset i*(chunkSize-overlap); the
// final window is truncated at the end of the text. Splitting is
// deterministic: the same input always yields the same chunks.
func SplitText(text string, chunkSize, overlap int) []Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 10
		}
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := chunkSize - overlap
	var chunks []Chunk
	for i := 0; ; i++ {
		start := i * step
		if start >= len(runes) {
			break
		}
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Index: i,
			Text:  string(runes[start:end]),
			Start: start,
		})
		if end == len(runes) {
			break
		}
	}

	return chunks
}
