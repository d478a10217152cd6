package services

import (
	"context"
	"sort"
	"strings"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// AlignerConfig holds the tunables from spec.md §6's aligner.* options.
type AlignerConfig struct {
	// Threshold is the minimum similarity a pair must clear to be aligned
	// at all; below it a paragraph is reported unaligned.
	Threshold float64
	// TopK bounds how many target candidates each source paragraph considers
	// before matching, for large documents.
	TopK int
}

// Aligner pairs source paragraphs to target paragraphs by similarity,
// preferring semantic (embedding cosine) similarity and falling back to
// lexical Jaccard overlap when no embedder is configured or embedding
// fails, per spec.md §4.3.
type Aligner struct {
	embedder driven.Embedder
	runtime  *domain.RuntimeConfig
	cfg      AlignerConfig
}

// NewAligner builds an Aligner. embedder may be nil, in which case the
// aligner always runs in lexical (degraded) mode.
func NewAligner(embedder driven.Embedder, runtime *domain.RuntimeConfig, cfg AlignerConfig) *Aligner {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &Aligner{embedder: embedder, runtime: runtime, cfg: cfg}
}

// Align computes the full pairwise similarity matrix between source and
// target paragraphs and derives a symmetrized top-K alignment from it.
func (a *Aligner) Align(ctx context.Context, source, target []*domain.Paragraph) (*domain.AlignmentResult, error) {
	mode := a.runtime.EffectiveAlignmentMode()

	matrix, degraded, err := a.similarityMatrix(ctx, source, target, mode)
	if err != nil {
		return nil, err
	}

	pairs, unaligned := a.symmetricTopKMatch(matrix, degraded)

	return &domain.AlignmentResult{
		Pairs:     pairs,
		Unaligned: unaligned,
		Degraded:  degraded,
	}, nil
}

// similarityMatrix returns matrix[i][j] = similarity(source[i], target[j]).
// It attempts semantic similarity first when mode requires it, falling back
// to lexical Jaccard and reporting degraded=true if embedding is
// unavailable or fails.
func (a *Aligner) similarityMatrix(ctx context.Context, source, target []*domain.Paragraph, mode domain.AlignmentMode) ([][]float64, bool, error) {
	if mode.RequiresEmbedding() && a.embedder != nil {
		matrix, err := a.semanticMatrix(ctx, source, target)
		if err == nil {
			return matrix, false, nil
		}
		a.runtime.SetEmbeddingAvailable(false)
	}
	return a.lexicalMatrix(source, target), true, nil
}

func (a *Aligner) semanticMatrix(ctx context.Context, source, target []*domain.Paragraph) ([][]float64, error) {
	texts := make([]string, 0, len(source)+len(target))
	for _, p := range source {
		texts = append(texts, p.Text)
	}
	for _, p := range target {
		texts = append(texts, p.Text)
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := a.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	sourceVecs := vectors[:len(source)]
	targetVecs := vectors[len(source):]

	matrix := make([][]float64, len(source))
	for i := range source {
		matrix[i] = make([]float64, len(target))
		for j := range target {
			matrix[i][j] = cosineSimilarity(sourceVecs[i], targetVecs[j])
		}
	}
	return matrix, nil
}

func (a *Aligner) lexicalMatrix(source, target []*domain.Paragraph) [][]float64 {
	sourceTokens := make([]map[string]bool, len(source))
	for i, p := range source {
		sourceTokens[i] = tokenSet(p.Text)
	}
	targetTokens := make([]map[string]bool, len(target))
	for j, p := range target {
		targetTokens[j] = tokenSet(p.Text)
	}

	matrix := make([][]float64, len(source))
	for i := range source {
		matrix[i] = make([]float64, len(target))
		for j := range target {
			matrix[i][j] = jaccard(sourceTokens[i], targetTokens[j])
		}
	}
	return matrix
}

// symmetricTopKMatch keeps, for each source paragraph, only its top-K
// target candidates, then greedily accepts candidates at or above the
// threshold in descending similarity order, skipping any whose source or
// target paragraph is already paired, so every paragraph ends up in at most
// one pair. Ties break by
// smaller |i-j| (prefers paragraphs that stayed roughly in place across
// translation) then by smaller target index, for determinism.
func (a *Aligner) symmetricTopKMatch(matrix [][]float64, degraded bool) ([]*domain.AlignedPair, []*domain.UnalignedParagraph) {
	type candidate struct {
		i, j int
		sim  float64
	}
	var candidates []candidate
	for i := range matrix {
		topJ := topKIndices(matrix[i], a.cfg.TopK)
		for _, j := range topJ {
			candidates = append(candidates, candidate{i, j, matrix[i][j]})
		}
	}

	sort.Slice(candidates, func(x, y int) bool {
		if candidates[x].sim != candidates[y].sim {
			return candidates[x].sim > candidates[y].sim
		}
		dx := abs(candidates[x].i - candidates[x].j)
		dy := abs(candidates[y].i - candidates[y].j)
		if dx != dy {
			return dx < dy
		}
		return candidates[x].j < candidates[y].j
	})

	usedSource := make(map[int]bool)
	usedTarget := make(map[int]bool)
	var pairs []*domain.AlignedPair
	for _, c := range candidates {
		if c.sim < a.cfg.Threshold {
			continue
		}
		if usedSource[c.i] || usedTarget[c.j] {
			continue
		}
		usedSource[c.i] = true
		usedTarget[c.j] = true
		pairs = append(pairs, &domain.AlignedPair{
			SourceParagraphIndex: c.i,
			TargetParagraphIndex: c.j,
			Similarity:           c.sim,
			Confidence:           domain.BucketConfidence(c.sim, a.cfg.Threshold, degraded),
		})
	}

	sort.Slice(pairs, func(x, y int) bool {
		return pairs[x].SourceParagraphIndex < pairs[y].SourceParagraphIndex
	})

	var unaligned []*domain.UnalignedParagraph
	for i := range matrix {
		if usedSource[i] {
			continue
		}
		unaligned = append(unaligned, bestCounterpart("source", i, matrix[i]))
	}
	// Collect unaligned target paragraphs by column, since matrix is
	// indexed [source][target].
	numTarget := 0
	if len(matrix) > 0 {
		numTarget = len(matrix[0])
	}
	for j := 0; j < numTarget; j++ {
		if usedTarget[j] {
			continue
		}
		col := make([]float64, len(matrix))
		for i := range matrix {
			col[i] = matrix[i][j]
		}
		unaligned = append(unaligned, bestCounterpart("target", j, col))
	}

	return pairs, unaligned
}

func bestCounterpart(side string, index int, scores []float64) *domain.UnalignedParagraph {
	best := -1
	bestScore := -1.0
	for k, s := range scores {
		if s > bestScore {
			bestScore = s
			best = k
		}
	}
	return &domain.UnalignedParagraph{
		Side:               side,
		ParagraphIndex:     index,
		BestSimilarity:      bestScore,
		BestCounterpartIdx: best,
		HasBestCounterpart: best >= 0,
	}
}

func topKIndices(scores []float64, k int) []int {
	type scored struct {
		idx int
		val float64
	}
	ranked := make([]scored, len(scores))
	for i, v := range scores {
		ranked[i] = scored{i, v}
	}
	sort.Slice(ranked, func(x, y int) bool { return ranked[x].val > ranked[y].val })
	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].idx
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// cosineSimilarity assumes both vectors are already L2-normalized (the
// embedder's contract), so it reduces to a plain dot product.
func cosineSimilarity(a, b []float32) float64 {
	var dot float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]bool {
	tokens := strings.Fields(strings.ToLower(text))
	set := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		set[trimPunct(tok)] = true
	}
	return set
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127)
	})
}
