package domain

import (
	"testing"
)

func TestNewRuntimeConfig(t *testing.T) {
	config := NewRuntimeConfig("sqlite")

	if config == nil {
		t.Fatal("expected non-nil config")
	}
	if config.SessionBackend != "sqlite" {
		t.Errorf("expected sqlite, got %s", config.SessionBackend)
	}
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable initially")
	}
	if config.LinguisticAvailable() {
		t.Error("expected linguistic pipeline to be unavailable initially")
	}
}

func TestRuntimeConfig_EmbeddingAvailable(t *testing.T) {
	config := NewRuntimeConfig("filesystem")

	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable initially")
	}

	config.SetEmbeddingAvailable(true)
	if !config.EmbeddingAvailable() {
		t.Error("expected embedding to be available after setting")
	}

	config.SetEmbeddingAvailable(false)
	if config.EmbeddingAvailable() {
		t.Error("expected embedding to be unavailable after clearing")
	}
}

func TestRuntimeConfig_LinguisticAvailable(t *testing.T) {
	config := NewRuntimeConfig("postgres")

	if config.LinguisticAvailable() {
		t.Error("expected linguistic pipeline to be unavailable initially")
	}

	config.SetLinguisticAvailable(true)
	if !config.LinguisticAvailable() {
		t.Error("expected linguistic pipeline to be available after setting")
	}

	config.SetLinguisticAvailable(false)
	if config.LinguisticAvailable() {
		t.Error("expected linguistic pipeline to be unavailable after clearing")
	}
}

func TestRuntimeConfig_CanDoSemanticAlignment(t *testing.T) {
	config := NewRuntimeConfig("postgres")

	if config.CanDoSemanticAlignment() {
		t.Error("expected CanDoSemanticAlignment to be false without embedding")
	}

	config.SetEmbeddingAvailable(true)
	if !config.CanDoSemanticAlignment() {
		t.Error("expected CanDoSemanticAlignment to be true with embedding")
	}
}

func TestRuntimeConfig_CanDoLinguisticFeatures(t *testing.T) {
	config := NewRuntimeConfig("postgres")

	if config.CanDoLinguisticFeatures() {
		t.Error("expected CanDoLinguisticFeatures to be false without linguistic pipeline")
	}

	config.SetLinguisticAvailable(true)
	if !config.CanDoLinguisticFeatures() {
		t.Error("expected CanDoLinguisticFeatures to be true with linguistic pipeline")
	}
}

func TestRuntimeConfig_EffectiveAlignmentMode(t *testing.T) {
	tests := []struct {
		name      string
		embedding bool
		expected  AlignmentMode
	}{
		{
			name:      "no embedding - lexical",
			embedding: false,
			expected:  AlignmentModeLexical,
		},
		{
			name:      "with embedding - semantic",
			embedding: true,
			expected:  AlignmentModeSemantic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := NewRuntimeConfig("postgres")
			config.SetEmbeddingAvailable(tt.embedding)

			result := config.EffectiveAlignmentMode()
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestAlignmentMode_RequiresEmbedding(t *testing.T) {
	tests := []struct {
		mode     AlignmentMode
		requires bool
	}{
		{AlignmentModeLexical, false},
		{AlignmentModeSemantic, true},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			if tt.mode.RequiresEmbedding() != tt.requires {
				t.Errorf("expected %v, got %v", tt.requires, tt.mode.RequiresEmbedding())
			}
		})
	}
}

func TestRuntimeConfig_ThreadSafety(t *testing.T) {
	config := NewRuntimeConfig("postgres")

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			config.SetEmbeddingAvailable(true)
			config.SetLinguisticAvailable(true)
			config.SetEmbeddingAvailable(false)
			config.SetLinguisticAvailable(false)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			_ = config.EmbeddingAvailable()
			_ = config.LinguisticAvailable()
			_ = config.CanDoSemanticAlignment()
			_ = config.CanDoLinguisticFeatures()
			_ = config.EffectiveAlignmentMode()
		}
		done <- true
	}()

	<-done
	<-done
}
