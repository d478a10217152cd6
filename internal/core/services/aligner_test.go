package services

import (
	"context"
	"testing"

	"github.com/netest/netest-core/internal/core/domain"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.vectors[t]
	}
	return out, nil
}
func (s *stubEmbedder) Dimensions() int         { return 2 }
func (s *stubEmbedder) Model() string           { return "stub" }
func (s *stubEmbedder) HealthCheck(context.Context) error { return nil }
func (s *stubEmbedder) Close() error            { return nil }

func paragraphOf(text string) *domain.Paragraph {
	return &domain.Paragraph{Text: text}
}

func TestAlignerSemanticModeUsesEmbeddingCosine(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"a": {1, 0},
		"b": {1, 0},
		"c": {0, 1},
	}}
	rt := domain.NewRuntimeConfig("filesystem")
	rt.SetEmbeddingAvailable(true)

	aligner := NewAligner(embedder, rt, AlignerConfig{Threshold: 0.5, TopK: 5})
	result, err := aligner.Align(context.Background(), []*domain.Paragraph{paragraphOf("a")}, []*domain.Paragraph{paragraphOf("b"), paragraphOf("c")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Degraded {
		t.Fatal("expected non-degraded semantic alignment")
	}
	if len(result.Pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(result.Pairs))
	}
	if result.Pairs[0].TargetParagraphIndex != 0 {
		t.Errorf("expected match to target index 0 (cosine=1.0), got %d", result.Pairs[0].TargetParagraphIndex)
	}
	if len(result.Unaligned) != 1 || result.Unaligned[0].ParagraphIndex != 1 {
		t.Errorf("expected target paragraph 1 unaligned, got %+v", result.Unaligned)
	}
}

func TestAlignerFallsBackToLexicalWhenEmbeddingUnavailable(t *testing.T) {
	rt := domain.NewRuntimeConfig("filesystem")
	rt.SetEmbeddingAvailable(false)

	aligner := NewAligner(nil, rt, AlignerConfig{Threshold: 0.1, TopK: 5})
	result, err := aligner.Align(context.Background(),
		[]*domain.Paragraph{paragraphOf("o gato correu rapido")},
		[]*domain.Paragraph{paragraphOf("o gato correu rapido")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected degraded lexical alignment")
	}
	if len(result.Pairs) != 1 || result.Pairs[0].Similarity != 1.0 {
		t.Fatalf("expected identical paragraphs to have jaccard similarity 1.0, got %+v", result.Pairs)
	}
}

func TestAlignerFallsBackWhenEmbedderErrors(t *testing.T) {
	embedder := &stubEmbedder{err: domain.ErrServiceUnavailable}
	rt := domain.NewRuntimeConfig("filesystem")
	rt.SetEmbeddingAvailable(true)

	aligner := NewAligner(embedder, rt, AlignerConfig{Threshold: 0.1, TopK: 5})
	result, err := aligner.Align(context.Background(),
		[]*domain.Paragraph{paragraphOf("texto fonte")},
		[]*domain.Paragraph{paragraphOf("texto fonte")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected embedding failure to degrade to lexical mode")
	}
	if rt.EmbeddingAvailable() {
		t.Error("expected embedder failure to mark embedding unavailable")
	}
}

func TestAlignerRespectsThreshold(t *testing.T) {
	rt := domain.NewRuntimeConfig("filesystem")
	rt.SetEmbeddingAvailable(false)

	aligner := NewAligner(nil, rt, AlignerConfig{Threshold: 0.9, TopK: 5})
	result, err := aligner.Align(context.Background(),
		[]*domain.Paragraph{paragraphOf("completamente diferente")},
		[]*domain.Paragraph{paragraphOf("nada em comum aqui")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Pairs) != 0 {
		t.Fatalf("expected no pairs above threshold, got %d", len(result.Pairs))
	}
	if len(result.Unaligned) != 2 {
		t.Fatalf("expected both paragraphs unaligned, got %d", len(result.Unaligned))
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got != 1.0 {
		t.Errorf("expected 1.0, got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0.0 {
		t.Errorf("expected 0.0, got %v", got)
	}
}

func TestJaccard(t *testing.T) {
	a := map[string]bool{"x": true, "y": true}
	b := map[string]bool{"y": true, "z": true}
	if got := jaccard(a, b); got != 1.0/3.0 {
		t.Errorf("expected 1/3, got %v", got)
	}
}
