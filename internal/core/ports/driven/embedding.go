package driven

import (
	"context"
)

// Embedder generates sentence-level embeddings used by the Paragraph
// Aligner's cosine similarity matrix. Implementations are expected to
// L2-normalize their output so cosine similarity reduces to a dot product.
type Embedder interface {
	// Embed generates one embedding per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// Model returns the model name/version, recorded on Session for
	// reproducibility.
	Model() string

	// HealthCheck verifies the embedder is available. A non-nil error here
	// is how the pipeline learns to fall back to degraded lexical
	// alignment at startup or between requests.
	HealthCheck(ctx context.Context) error

	// Close releases resources (the ONNX Runtime session, if any).
	Close() error
}
