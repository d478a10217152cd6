package embedding

import (
	"fmt"
	"time"

	"github.com/netest/netest-core/internal/adapters/driven/linguistic"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// Factory builds Embedder and LinguisticPipeline instances from
// configuration, uniformly returning (nil, nil) when a port is not
// configured so the pipeline falls back to degraded mode rather than
// erroring.
type Factory struct{}

var _ driven.ServiceFactory = (*Factory)(nil)

// NewFactory creates a new embedding/linguistic service factory.
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbedder builds an Embedder from settings.
func (f *Factory) CreateEmbedder(settings *driven.EmbedderSettings) (driven.Embedder, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case "onnx":
		base, err := NewOnnxEmbedder(settings.ModelPath, settings.TokenizerPath, settings.ModelPath, 384, settings.MaxSequenceLength)
		if err != nil {
			return nil, fmt.Errorf("create onnx embedder: %w", err)
		}
		cached, err := NewCachedEmbedder(base, settings.CacheSize)
		if err != nil {
			_ = base.Close()
			return nil, fmt.Errorf("wrap embedder with cache: %w", err)
		}
		return cached, nil
	default:
		return nil, fmt.Errorf("unknown embedder provider: %s", settings.Provider)
	}
}

// CreateLinguisticPipeline builds a LinguisticPipeline from settings.
func (f *Factory) CreateLinguisticPipeline(settings *driven.LinguisticSettings) (driven.LinguisticPipeline, error) {
	if settings == nil || settings.Provider == "" {
		return nil, nil
	}

	switch settings.Provider {
	case "corenlp":
		timeout := time.Duration(settings.TimeoutSeconds) * time.Second
		client, err := linguistic.NewHTTPClient(settings.Endpoint, settings.Annotators, timeout)
		if err != nil {
			return nil, fmt.Errorf("create linguistic client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown linguistic pipeline provider: %s", settings.Provider)
	}
}
