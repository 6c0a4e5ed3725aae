// Package embeddings provides text embedding capabilities.
package embeddings

import "context"

// Embedder converts text into fixed-dimension dense vectors.
//
// Embed is batched: the output vectors correspond positionally, one-to-one,
// to the input texts, and every vector has Dimensions() elements. For a fixed
// model version the mapping is deterministic and side-effect free.
type Embedder interface {
	// Embed converts a batch of texts into vector embeddings.
	// A transient model failure is reported by wrapping ErrEmbedding so
	// callers can choose to retry; zero vectors are never substituted.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed output vector length for the configured
	// model. A collection indexed with one dimension must never receive
	// vectors of another.
	Dimensions() uint64

	// Close releases any resources held by the embedder.
	Close() error
}

// EmbedOne is a convenience wrapper for embedding a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}
