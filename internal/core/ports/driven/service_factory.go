package driven

// ServiceFactory builds the optional AI-backed ports (Embedder,
// LinguisticPipeline) from configuration. Centralizing construction here
// lets the pipeline fall back to nil (degraded mode) uniformly, whether the
// cause is "not configured" or "configured but unreachable".
type ServiceFactory interface {
	// CreateEmbedder builds an Embedder from settings. Returns nil, nil if
	// embedding is not configured (the pipeline then runs in lexical
	// alignment mode).
	CreateEmbedder(settings *EmbedderSettings) (Embedder, error)

	// CreateLinguisticPipeline builds a LinguisticPipeline from settings.
	// Returns nil, nil if not configured (the extractor then skips
	// linguistic features).
	CreateLinguisticPipeline(settings *LinguisticSettings) (LinguisticPipeline, error)
}

// EmbedderSettings configures which Embedder implementation to build.
type EmbedderSettings struct {
	// Provider selects the implementation: "onnx" or "" (disabled).
	Provider string

	// ModelPath is the filesystem path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the filesystem path to the tokenizer config/vocab.
	TokenizerPath string

	// MaxSequenceLength truncates tokenized input longer than this.
	MaxSequenceLength int

	// CacheSize is the number of embeddings kept in the in-memory LRU
	// cache, keyed by a hash of the normalized input text. Zero disables
	// caching.
	CacheSize int
}

// LinguisticSettings configures which LinguisticPipeline implementation to
// build.
type LinguisticSettings struct {
	// Provider selects the implementation: "corenlp" or "" (disabled).
	Provider string

	// Endpoint is the base URL of the annotation server.
	Endpoint string

	// Annotators is the comma-joined annotator pipeline, e.g.
	// "tokenize,ssplit,pos,lemma,depparse".
	Annotators string

	// TimeoutSeconds bounds a single annotate call.
	TimeoutSeconds int
}
