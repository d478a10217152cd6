package runtime

import (
	"context"
	"sync"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// Services holds references to the process-wide Embedder and
// LinguisticPipeline (spec.md §5: "a single process-wide instance, loaded
// once at startup, never mutated"), kept swappable here so a health-check
// failure can flip RuntimeConfig's availability flags without restarting
// the process. Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embedder   driven.Embedder
	linguistic driven.LinguisticPipeline
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// Embedder returns the current embedder (may be nil in lexical-only mode)
func (s *Services) Embedder() driven.Embedder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedder
}

// LinguisticPipeline returns the current linguistic pipeline (may be nil)
func (s *Services) LinguisticPipeline() driven.LinguisticPipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.linguistic
}

// SetEmbedder updates the embedder.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbedder(svc driven.Embedder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Close old service
	if s.embedder != nil {
		_ = s.embedder.Close()
	}

	s.embedder = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLinguisticPipeline updates the linguistic pipeline.
// Closes the old service if present. Updates config flags.
func (s *Services) SetLinguisticPipeline(svc driven.LinguisticPipeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Close old service
	if s.linguistic != nil {
		_ = s.linguistic.Close()
	}

	s.linguistic = svc
	s.config.SetLinguisticAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embedder != nil {
		_ = s.embedder.Close()
		s.embedder = nil
	}
	if s.linguistic != nil {
		_ = s.linguistic.Close()
		s.linguistic = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLinguisticAvailable(false)

	return nil
}

// ValidateAndSetEmbedder validates connectivity before setting the embedder
func (s *Services) ValidateAndSetEmbedder(ctx context.Context, svc driven.Embedder) error {
	if svc == nil {
		s.SetEmbedder(nil)
		return nil
	}

	// Validate connectivity
	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbedder(svc)
	return nil
}

// ValidateAndSetLinguisticPipeline validates connectivity before setting
// the linguistic pipeline
func (s *Services) ValidateAndSetLinguisticPipeline(ctx context.Context, svc driven.LinguisticPipeline) error {
	if svc == nil {
		s.SetLinguisticPipeline(nil)
		return nil
	}

	// Validate connectivity
	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLinguisticPipeline(svc)
	return nil
}
