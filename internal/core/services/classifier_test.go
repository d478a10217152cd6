package services

import (
	"testing"

	"github.com/netest/netest-core/internal/core/domain"
)

func hasCode(predictions []*domain.StrategyPrediction, code domain.StrategyCode) bool {
	for _, p := range predictions {
		if p.Code == code {
			return true
		}
	}
	return false
}

func TestClassifierEmitsRFForGlobalRewrite(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3})
	fv := &domain.FeatureVector{LengthRatio: 0.5, LexicalOverlap: 0.2, SemanticSimilarity: 0.7}

	predictions := c.Classify(fv, nil)
	if !hasCode(predictions, domain.StrategyRF) {
		t.Fatalf("expected RF+ prediction, got %+v", predictions)
	}
}

func TestClassifierEmitsSLForShorterWords(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3})
	fv := &domain.FeatureVector{
		LexicalOverlap:       0.3,
		SemanticSimilarity:   0.8,
		AvgWordCharLenSource: 7,
		AvgWordCharLenTarget: 5,
	}

	predictions := c.Classify(fv, nil)
	if !hasCode(predictions, domain.StrategySL) {
		t.Fatalf("expected SL+ prediction, got %+v", predictions)
	}
}

func TestClassifierSkipsSLWhenSentenceLengthShrinksButWordsDoNot(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3})
	fv := &domain.FeatureVector{
		LexicalOverlap:       0.3,
		SemanticSimilarity:   0.8,
		AvgSentenceLenSource: 20,
		AvgSentenceLenTarget: 8,
		AvgWordCharLenSource: 5,
		AvgWordCharLenTarget: 5,
	}

	predictions := c.Classify(fv, nil)
	if hasCode(predictions, domain.StrategySL) {
		t.Fatal("SL+ should key on word length, not sentence length")
	}
}

func TestClassifierNeverEmitsPRO(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.0})
	fv := &domain.FeatureVector{SemanticSimilarity: 0.1, LexicalOverlap: 0.0, LengthRatio: 0.1}

	predictions := c.Classify(fv, nil)
	if hasCode(predictions, domain.StrategyPRO) {
		t.Fatal("PRO+ must never be auto-emitted")
	}
}

func TestClassifierOMDisabledByDefault(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3})
	fv := &domain.FeatureVector{LengthRatio: 0.5, LexicalOverlap: 0.5, SemanticSimilarity: 0.8}

	predictions := c.Classify(fv, nil)
	if hasCode(predictions, domain.StrategyOM) {
		t.Fatal("OM+ must not be emitted unless explicitly enabled")
	}
}

func TestClassifierOMEmittedWhenEnabled(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3, EnableOM: true})
	fv := &domain.FeatureVector{LengthRatio: 0.5, LexicalOverlap: 0.5, SemanticSimilarity: 0.8}

	predictions := c.Classify(fv, nil)
	if !hasCode(predictions, domain.StrategyOM) {
		t.Fatal("expected OM+ prediction once enabled")
	}
}

func TestClassifierDropsPredictionsBelowMinConfidence(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.95})
	fv := &domain.FeatureVector{LengthRatio: 0.5, LexicalOverlap: 0.2, SemanticSimilarity: 0.7}

	predictions := c.Classify(fv, nil)
	if len(predictions) != 0 {
		t.Fatalf("expected all predictions dropped below min confidence, got %d", len(predictions))
	}
}

func TestClassifierMarksDegradedModeInEvidence(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3})
	fv := &domain.FeatureVector{LengthRatio: 0.5, LexicalOverlap: 0.2, SemanticSimilarity: 0.7, Degraded: true}

	predictions := c.Classify(fv, nil)
	if len(predictions) == 0 {
		t.Fatal("expected at least one prediction")
	}
	found := false
	for _, e := range predictions[0].Evidence {
		if e == "degraded_mode" {
			found = true
		}
	}
	if !found {
		t.Error("expected degraded_mode evidence string")
	}
}

func TestClassifierPredictionsAreStableAndPending(t *testing.T) {
	c := NewClassifier(ClassifierConfig{MinConfidence: 0.3})
	fv := &domain.FeatureVector{LengthRatio: 0.5, LexicalOverlap: 0.2, SemanticSimilarity: 0.7}

	predictions := c.Classify(fv, nil)
	for _, p := range predictions {
		if p.Origin != domain.OriginMachine {
			t.Errorf("expected machine origin, got %v", p.Origin)
		}
		if p.Status != domain.StatusPending {
			t.Errorf("expected pending status, got %v", p.Status)
		}
		if p.StrategyID == "" {
			t.Error("expected non-empty strategy_id")
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			t.Errorf("confidence out of range: %v", p.Confidence)
		}
	}
}
