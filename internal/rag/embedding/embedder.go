// Package embedding turns document and query text into vectors for
// similarity search. The production implementation runs a local
// all-MiniLM-L6-v2 model through ONNX Runtime.
package embedding

import "context"

// Embedder produces fixed-width vector embeddings for text. EmbedBatch
// returns one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}

// embedEach implements EmbedBatch for providers whose runtime takes one
// input at a time. The first failure aborts the batch.
func embedEach(ctx context.Context, e Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vector, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}
