package services

import (
	"sort"
	"strings"
	"sync"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SpanProposerPipeline = (*SpanPipeline)(nil)

// SpanPipeline chains span proposers in Order() behind an Add/Propose/List
// interface.
type SpanPipeline struct {
	mu        sync.RWMutex
	proposers []driven.SpanProposer
	sorted    bool
}

// NewSpanPipeline creates an empty pipeline.
func NewSpanPipeline() *SpanPipeline {
	return &SpanPipeline{}
}

// DefaultSpanPipeline returns the pipeline spec.md §4.4 describes: sentence
// anchors first, then inserted-content anchors, then deleted-content
// anchors.
func DefaultSpanPipeline() *SpanPipeline {
	p := NewSpanPipeline()
	p.Add(&SentenceAnchorProposer{})
	p.Add(&InsertedSpanProposer{})
	p.Add(&DeletedSpanProposer{})
	return p
}

func (p *SpanPipeline) Add(proposer driven.SpanProposer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.proposers = append(p.proposers, proposer)
	p.sorted = false
}

func (p *SpanPipeline) Propose(source, target *domain.Paragraph, features *domain.FeatureVector) []driven.SpanCandidate {
	p.mu.Lock()
	if !p.sorted {
		sort.Slice(p.proposers, func(i, j int) bool { return p.proposers[i].Order() < p.proposers[j].Order() })
		p.sorted = true
	}
	proposers := make([]driven.SpanProposer, len(p.proposers))
	copy(proposers, p.proposers)
	p.mu.Unlock()

	// The default anchor is always the whole target paragraph; proposers
	// below may add finer-grained candidates on top of it.
	candidates := []driven.SpanCandidate{{
		Side:   "target",
		Offset: domain.Offset{Start: target.CharStart, End: target.CharEnd},
		Kind:   "paragraph",
	}}
	for _, proposer := range proposers {
		candidates = append(candidates, proposer.Propose(source, target, features)...)
	}
	return candidates
}

func (p *SpanPipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.proposers))
	for i, proposer := range p.proposers {
		names[i] = proposer.Name()
	}
	return names
}

// SentenceAnchorProposer anchors a prediction to a single target sentence
// when it has high lexical overlap with a single source sentence, per
// spec.md §4.4's sentence-level anchor rule.
type SentenceAnchorProposer struct{}

func (s *SentenceAnchorProposer) Name() string { return "sentence_anchor" }
func (s *SentenceAnchorProposer) Order() int   { return 10 }

func (s *SentenceAnchorProposer) Propose(source, target *domain.Paragraph, features *domain.FeatureVector) []driven.SpanCandidate {
	var candidates []driven.SpanCandidate
	for _, ts := range target.Sentences {
		targetSet := tokenSet(ts.Text)
		bestOverlap := 0.0
		for _, ss := range source.Sentences {
			overlap := jaccard(targetSet, tokenSet(ss.Text))
			if overlap > bestOverlap {
				bestOverlap = overlap
			}
		}
		if bestOverlap >= 0.6 {
			candidates = append(candidates, driven.SpanCandidate{
				Side:   "target",
				Offset: domain.Offset{Start: ts.CharStart, End: ts.CharEnd},
				Kind:   "sentence",
			})
		}
	}
	return candidates
}

// InsertedSpanProposer anchors EXP+/IN+ candidates on connectors or
// parentheticals present in the target but absent from the source.
type InsertedSpanProposer struct{}

func (s *InsertedSpanProposer) Name() string { return "inserted_span" }
func (s *InsertedSpanProposer) Order() int   { return 20 }

func (s *InsertedSpanProposer) Propose(source, target *domain.Paragraph, features *domain.FeatureVector) []driven.SpanCandidate {
	var candidates []driven.SpanCandidate
	for _, connector := range features.ConnectorsGained {
		if idx := indexOfFold(target.Text, connector); idx >= 0 {
			candidates = append(candidates, driven.SpanCandidate{
				Side:   "target",
				Offset: domain.Offset{Start: target.CharStart + idx, End: target.CharStart + idx + len(connector)},
				Kind:   "inserted",
			})
		}
	}
	for _, span := range parentheticalSpans(target.Text) {
		candidates = append(candidates, driven.SpanCandidate{
			Side:   "target",
			Offset: domain.Offset{Start: target.CharStart + span.start, End: target.CharStart + span.end},
			Kind:   "inserted",
		})
	}
	return candidates
}

// DeletedSpanProposer anchors OM+ candidates on source content with no
// counterpart in the target, per spec.md §4.4's deleted-span rule.
type DeletedSpanProposer struct{}

func (s *DeletedSpanProposer) Name() string { return "deleted_span" }
func (s *DeletedSpanProposer) Order() int   { return 30 }

func (s *DeletedSpanProposer) Propose(source, target *domain.Paragraph, features *domain.FeatureVector) []driven.SpanCandidate {
	targetSet := tokenSet(target.Text)
	var candidates []driven.SpanCandidate
	for _, ss := range source.Sentences {
		overlap := jaccard(tokenSet(ss.Text), targetSet)
		if overlap < 0.2 {
			candidates = append(candidates, driven.SpanCandidate{
				Side:   "source",
				Offset: domain.Offset{Start: ss.CharStart, End: ss.CharEnd},
				Kind:   "deleted",
			})
		}
	}
	return candidates
}

func indexOfFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

type byteSpan struct{ start, end int }

// parentheticalSpans returns the offsets of "(...)" runs within text.
func parentheticalSpans(text string) []byteSpan {
	var spans []byteSpan
	open := -1
	for i, r := range text {
		switch r {
		case '(':
			open = i
		case ')':
			if open >= 0 {
				spans = append(spans, byteSpan{open, i + 1})
				open = -1
			}
		}
	}
	return spans
}
