package domain

import "sync"

// AlignmentMode identifies which strategy the Paragraph Aligner is currently
// able to use.
type AlignmentMode string

const (
	AlignmentModeSemantic AlignmentMode = "semantic"
	AlignmentModeLexical  AlignmentMode = "lexical"
)

// RequiresEmbedding reports whether mode needs a working Embedder.
func (mode AlignmentMode) RequiresEmbedding() bool {
	return mode == AlignmentModeSemantic
}

// RuntimeConfig tracks which optional services are available at runtime: the
// Embedder and the Linguistic Pipeline are both allowed to be absent or to
// fail at startup, in which case the pipeline falls back to lexical
// alignment and skips linguistic features rather than refusing to run.
// Thread-safe for concurrent access from the HTTP handlers and the worker
// pool.
type RuntimeConfig struct {
	mu sync.RWMutex

	// SessionBackend is set once at startup ("filesystem", "sqlite" or
	// "postgres") and never changes afterward.
	SessionBackend string

	embeddingAvailable  bool
	linguisticAvailable bool
}

// NewRuntimeConfig creates a RuntimeConfig for the given session backend.
// Both capability flags start false; the caller flips them once the
// corresponding adapter has confirmed it can serve requests.
func NewRuntimeConfig(sessionBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		SessionBackend: sessionBackend,
	}
}

// EmbeddingAvailable reports whether the Embedder is currently serving.
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LinguisticAvailable reports whether the Linguistic Pipeline is currently
// serving.
func (c *RuntimeConfig) LinguisticAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.linguisticAvailable
}

// SetEmbeddingAvailable updates the embedding capability flag.
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLinguisticAvailable updates the linguistic pipeline capability flag.
func (c *RuntimeConfig) SetLinguisticAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.linguisticAvailable = available
}

// CanDoSemanticAlignment reports whether paragraph alignment can use cosine
// similarity over embeddings instead of falling back to lexical overlap.
func (c *RuntimeConfig) CanDoSemanticAlignment() bool {
	return c.EmbeddingAvailable()
}

// CanDoLinguisticFeatures reports whether the Feature & Span Extractor can
// populate POS/lemma/dependency-derived fields.
func (c *RuntimeConfig) CanDoLinguisticFeatures() bool {
	return c.LinguisticAvailable()
}

// EffectiveAlignmentMode returns the alignment strategy the aligner should
// use right now.
func (c *RuntimeConfig) EffectiveAlignmentMode() AlignmentMode {
	if c.EmbeddingAvailable() {
		return AlignmentModeSemantic
	}
	return AlignmentModeLexical
}
