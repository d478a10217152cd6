package services

import (
	"context"
	"testing"
	"time"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven/mocks"
	"github.com/netest/netest-core/internal/segmenters"
)

func newTestPipeline(t *testing.T) (*Pipeline, *mocks.MockAnnotationStore) {
	t.Helper()
	registry := segmenters.DefaultRegistry()
	preprocessor := NewPreprocessor(registry, 0)

	rt := domain.NewRuntimeConfig("filesystem")
	rt.SetEmbeddingAvailable(false) // lexical mode keeps the test deterministic without a real ONNX model
	aligner := NewAligner(nil, rt, AlignerConfig{Threshold: 0.1, TopK: 5})
	extractor := NewExtractor(nil, rt, DefaultSpanPipeline())
	classifier := NewClassifier(ClassifierConfig{MinConfidence: 0.0})
	store := mocks.NewMockAnnotationStore()

	pipeline := NewPipeline(preprocessor, aligner, extractor, classifier, store, PipelineConfig{StageTimeout: 5 * time.Second}, nil)
	return pipeline, store
}

func TestPipelineAnalyzeProducesReport(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	report, err := pipeline.Analyze(context.Background(),
		"O gato correu rapidamente pela rua.",
		"O gato correu rapidamente pela rua.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Session == nil || report.Alignment == nil {
		t.Fatal("expected session and alignment to be populated")
	}
	if len(report.Alignment.Pairs) != 1 {
		t.Fatalf("expected 1 aligned pair for identical single-paragraph texts, got %d", len(report.Alignment.Pairs))
	}
}

func TestPipelineSubmitPersistsSessionAndPredictions(t *testing.T) {
	pipeline, store := newTestPipeline(t)

	sessionID, err := pipeline.Submit(context.Background(),
		"Esta é uma frase de exemplo muito longa e complexa que precisa ser simplificada.",
		"Esta é uma frase simples.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected non-empty session id")
	}

	record, err := store.GetSessionRecord(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("expected session to be persisted: %v", err)
	}
	if record.Session.SessionID != sessionID {
		t.Errorf("unexpected session id in record: %v", record.Session.SessionID)
	}
}

func TestPipelineGetReportReturnsPersistedSession(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	sessionID, err := pipeline.Submit(context.Background(), "Frase fonte.", "Frase alvo.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := pipeline.GetReport(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Session.SessionID != sessionID {
		t.Errorf("unexpected session id: %v", report.Session.SessionID)
	}
}

func TestPipelineRejectsEmptyInput(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	_, err := pipeline.Analyze(context.Background(), "", "algo")
	if err == nil {
		t.Fatal("expected error for empty source text")
	}
}
