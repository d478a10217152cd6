package mocks

import (
	"context"
	"hash/fnv"
	"math"
)

// MockEmbedder is a mock implementation of driven.Embedder for testing.
type MockEmbedder struct {
	dimensions int
	model      string
	failNext   bool
}

// NewMockEmbedder creates a new MockEmbedder.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		dimensions: 384,
		model:      "mock-embedding-model",
	}
}

func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.generateEmbedding(text)
	}
	return result, nil
}

func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbedder) Model() string {
	return m.model
}

func (m *MockEmbedder) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbedder) Close() error {
	return nil
}

// generateEmbedding generates a deterministic, L2-normalized embedding based
// on a hash of the text, so cosine similarity reduces to a dot product just
// like the real ONNX embedder's output.
func (m *MockEmbedder) generateEmbedding(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	var sumSquares float64
	for i := range embedding {
		seed = seed*1103515245 + 12345
		v := float32(seed%1000)/500.0 - 1.0
		embedding[i] = v
		sumSquares += float64(v) * float64(v)
	}

	norm := float32(math.Sqrt(sumSquares))
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}
	return embedding
}

// Helper methods for testing

func (m *MockEmbedder) SetFailNext(fail bool) {
	m.failNext = fail
}

func (m *MockEmbedder) SetDimensions(dim int) {
	m.dimensions = dim
}
