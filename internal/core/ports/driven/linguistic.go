package driven

import "context"

// LinguisticPipeline provides optional POS-tagging, lemmatization and
// dependency-parse annotations for Portuguese text, used by the Feature &
// Span Extractor to compute passive-participle deltas, pronoun/noun
// densities and connector deltas. Entirely optional: the extractor computes
// a reduced feature set without it (Degraded=true on the FeatureVector) when
// this port is unavailable.
type LinguisticPipeline interface {
	// Annotate runs the configured annotators (pos, lemma, depparse) over
	// text and returns one TokenAnnotation per token, in reading order.
	Annotate(ctx context.Context, text string) ([]TokenAnnotation, error)

	// Ping verifies the pipeline is available.
	Ping(ctx context.Context) error

	// Close releases resources held by the pipeline client.
	Close() error
}

// TokenAnnotation is one token's linguistic analysis.
type TokenAnnotation struct {
	Text        string
	Lemma       string
	POS         string // universal POS tag: NOUN, PROPN, PRON, VERB, AUX, ...
	Dependency  string // dependency relation to its head, e.g. "nsubj"
	HeadIndex   int    // index of the head token within the sentence, -1 for root
	CharStart   int
	CharEnd     int
	IsPassive   bool // true when this token participates in a passive construction
}
