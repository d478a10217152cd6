package driven

import (
	"github.com/netest/netest-core/internal/core/domain"
)

// Segmenter splits normalized raw text into paragraphs and sentences,
// assigning each a stable half-open character offset into that same text.
type Segmenter interface {
	// Segment splits text into paragraphs, each carrying its sentences.
	Segment(text string) []*domain.Paragraph

	// Supports reports whether this segmenter handles the given language
	// tag ("pt", "pt-BR", "*" for a language-agnostic fallback).
	Supports(lang string) bool

	// Priority returns the segmenter priority (higher = more specific).
	// Priority ranges:
	//   90-100: language-specific (Portuguese sentence boundary rules)
	//   10-49:  generic punctuation-based segmentation
	//   1-9:    fallback (newline-only splitting)
	Priority() int
}

// SegmenterRegistry manages registered segmenters. When multiple segmenters
// support a language, the highest priority one is used.
type SegmenterRegistry interface {
	// Get retrieves the best-matching segmenter for a language tag.
	// Returns nil if none is registered.
	Get(lang string) Segmenter

	// GetAll retrieves all segmenters that support a language, sorted by
	// priority (highest first).
	GetAll(lang string) []Segmenter

	// Register registers a segmenter.
	Register(seg Segmenter)

	// List returns all registered language tags.
	List() []string
}

// SpanProposer proposes candidate evidence spans for a single aligned
// paragraph pair. Proposers form a pipeline: sentence anchors, then
// inserted-content spans, then deleted-content spans, each stage reading
// the pair's FeatureVector and contributing candidate offsets that the
// Strategy Classifier's rules then evaluate.
type SpanProposer interface {
	// Propose returns candidate spans for the given aligned pair.
	Propose(source, target *domain.Paragraph, features *domain.FeatureVector) []SpanCandidate

	// Name returns the proposer name for logging/debugging.
	Name() string

	// Order returns the proposer order in the pipeline (lower = earlier).
	Order() int
}

// SpanCandidate is one span proposed by a SpanProposer, tagged with which
// side of the pair it belongs to and which proposer produced it.
type SpanCandidate struct {
	Side   string // "source" or "target"
	Offset domain.Offset
	Kind   string // e.g. "sentence", "inserted", "deleted"
}

// SpanProposerPipeline chains multiple span proposers in order.
type SpanProposerPipeline interface {
	// Propose runs all proposers in order against one aligned pair.
	Propose(source, target *domain.Paragraph, features *domain.FeatureVector) []SpanCandidate

	// Add adds a proposer to the pipeline. Proposers are sorted by Order()
	// before processing.
	Add(proposer SpanProposer)

	// List returns proposer names in order.
	List() []string
}
