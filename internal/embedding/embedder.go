// Package embedding turns report descriptions into vectors for similarity
// comparison.
package embedding

import "context"

// Embedder generates embeddings for free text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}
