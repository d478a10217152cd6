package services

import (
	"context"
	"strings"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// connectors are Portuguese explicit connectors whose appearance in the
// target but not the source (or vice versa) feeds the EXP+/IN+ span
// proposer and the FeatureVector's ConnectorsGained/Lost, per spec.md §4.4.
var connectors = []string{
	"porque", "portanto", "ou seja", "por exemplo", "isto é",
	"além disso", "no entanto", "contudo", "assim", "dado que",
	"visto que", "logo", "consequentemente",
}

// Extractor computes a FeatureVector for each aligned pair and proposes
// candidate evidence spans via its SpanProposerPipeline, per spec.md §4.4.
type Extractor struct {
	linguistic driven.LinguisticPipeline
	runtime    *domain.RuntimeConfig
	spans      driven.SpanProposerPipeline
}

// NewExtractor builds an Extractor. linguistic may be nil, in which case
// POS-derived features are left at their zero value and the FeatureVector
// is marked Degraded.
func NewExtractor(linguistic driven.LinguisticPipeline, runtime *domain.RuntimeConfig, spans driven.SpanProposerPipeline) *Extractor {
	return &Extractor{linguistic: linguistic, runtime: runtime, spans: spans}
}

// Extract computes the feature vector and span candidates for one aligned
// source/target paragraph pair. alignmentDegraded reports whether the
// aligner fell back to lexical matching for lack of an embedder, which
// degrades the result just as a missing linguistic pipeline does.
func (e *Extractor) Extract(ctx context.Context, source, target *domain.Paragraph, similarity float64, alignmentDegraded bool) (*domain.FeatureVector, []driven.SpanCandidate) {
	fv := &domain.FeatureVector{
		SourceParagraphIndex: source.Index,
		TargetParagraphIndex: target.Index,
		SemanticSimilarity:   similarity,
		SourceWordCount:      source.WordCount(),
		TargetWordCount:      target.WordCount(),
		SourceSentenceCount:  source.SentenceCount(),
		TargetSentenceCount:  target.SentenceCount(),
		IsHeading:            target.IsHeadingLike(12),
		Degraded:             alignmentDegraded,
	}

	if fv.SourceWordCount > 0 {
		fv.LengthRatio = float64(fv.TargetWordCount) / float64(fv.SourceWordCount)
	}
	if fv.SourceSentenceCount > 0 {
		fv.SentenceCountRatio = float64(fv.TargetSentenceCount) / float64(fv.SourceSentenceCount)
	}
	fv.AvgSentenceLenSource = avgSentenceLen(source)
	fv.AvgSentenceLenTarget = avgSentenceLen(target)
	fv.AvgWordCharLenSource = avgWordCharLen(source)
	fv.AvgWordCharLenTarget = avgWordCharLen(target)
	fv.LexicalOverlap = jaccard(tokenSet(source.Text), tokenSet(target.Text))
	fv.ConnectorsGained, fv.ConnectorsLost = connectorDelta(source.Text, target.Text)
	fv.ReorderDistance = reorderDistance(source.Text, target.Text)

	if e.linguistic != nil && e.runtime.LinguisticAvailable() {
		if err := e.applyLinguisticFeatures(ctx, source, target, fv); err != nil {
			e.runtime.SetLinguisticAvailable(false)
			fv.Degraded = true
		}
	} else {
		fv.Degraded = true
	}

	var candidates []driven.SpanCandidate
	if e.spans != nil {
		candidates = e.spans.Propose(source, target, fv)
	}
	return fv, candidates
}

func (e *Extractor) applyLinguisticFeatures(ctx context.Context, source, target *domain.Paragraph, fv *domain.FeatureVector) error {
	sourceTokens, err := e.linguistic.Annotate(ctx, source.Text)
	if err != nil {
		return err
	}
	targetTokens, err := e.linguistic.Annotate(ctx, target.Text)
	if err != nil {
		return err
	}

	sourcePassive := passiveDensity(sourceTokens)
	targetPassive := passiveDensity(targetTokens)
	fv.PassiveParticipleDeltaHasData = true
	fv.PassiveParticipleDelta = targetPassive - sourcePassive

	fv.PronounDensitySource = posDensity(sourceTokens, "PRON")
	fv.PronounDensityTarget = posDensity(targetTokens, "PRON")
	fv.ProperNounDensityTarget = posDensity(targetTokens, "PROPN")
	fv.CommonNounDensityTarget = posDensity(targetTokens, "NOUN")
	return nil
}

func avgSentenceLen(p *domain.Paragraph) float64 {
	if len(p.Sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range p.Sentences {
		total += domain.CountWords(s.Text)
	}
	return float64(total) / float64(len(p.Sentences))
}

// avgWordCharLen returns the mean character length of the paragraph's
// words, the vocabulary-simplicity signal SL+ keys on (spec.md §4.5: a
// shorter average target *word* length, not a shorter target sentence).
func avgWordCharLen(p *domain.Paragraph) float64 {
	words := strings.Fields(p.Text)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len([]rune(w))
	}
	return float64(total) / float64(len(words))
}

func connectorDelta(source, target string) (gained, lost []string) {
	sourceLower := strings.ToLower(source)
	targetLower := strings.ToLower(target)
	for _, c := range connectors {
		inSource := strings.Contains(sourceLower, c)
		inTarget := strings.Contains(targetLower, c)
		if inTarget && !inSource {
			gained = append(gained, c)
		}
		if inSource && !inTarget {
			lost = append(lost, c)
		}
	}
	return gained, lost
}

// reorderDistance is a coarse proxy for content reordering: the average
// absolute shift, in token-rank positions, of content words shared between
// source and target. 0 means no detectable reordering.
func reorderDistance(source, target string) float64 {
	sourceTokens := strings.Fields(strings.ToLower(source))
	targetTokens := strings.Fields(strings.ToLower(target))

	sourceRank := make(map[string]int)
	for i, tok := range sourceTokens {
		tok = trimPunct(tok)
		if len(tok) < 4 {
			continue
		}
		if _, exists := sourceRank[tok]; !exists {
			sourceRank[tok] = i
		}
	}

	var totalShift float64
	var shared int
	for j, tok := range targetTokens {
		tok = trimPunct(tok)
		if len(tok) < 4 {
			continue
		}
		if si, ok := sourceRank[tok]; ok {
			sourceFrac := float64(si) / float64(maxInt(len(sourceTokens), 1))
			targetFrac := float64(j) / float64(maxInt(len(targetTokens), 1))
			totalShift += absFloat(sourceFrac - targetFrac)
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	return totalShift / float64(shared)
}

func passiveDensity(tokens []driven.TokenAnnotation) float64 {
	if len(tokens) == 0 {
		return 0
	}
	passive := 0
	for _, t := range tokens {
		if t.IsPassive {
			passive++
		}
	}
	return float64(passive) / float64(len(tokens))
}

func posDensity(tokens []driven.TokenAnnotation, pos string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	count := 0
	for _, t := range tokens {
		if t.POS == pos {
			count++
		}
	}
	return float64(count) / float64(len(tokens))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
