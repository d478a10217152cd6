// Package bdd wires the cucumber/godog feature files under features/ to the
// core services, exercising the end-to-end scenarios from spec.md §8
// without a real ONNX embedder or CoreNLP pipeline.
package bdd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/stretchr/testify/require"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
	"github.com/netest/netest-core/internal/core/ports/driven/mocks"
	"github.com/netest/netest-core/internal/core/ports/driving"
	"github.com/netest/netest-core/internal/core/services"
	"github.com/netest/netest-core/internal/segmenters"
)

// fakeEmbedder is a deterministic driven.Embedder test double. Texts
// registered in overrides return their exact pre-normalized vector
// (grounded on aligner_test.go's stubEmbedder); every other text falls
// back to a length-weighted bag-of-words vector, L2-normalized so that
// cosineSimilarity (a plain dot product) behaves like real cosine.
type fakeEmbedder struct {
	overrides   map[string][]float32
	unavailable bool
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{overrides: make(map[string][]float32)}
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.unavailable {
		return nil, errors.New("fake embedder: model unavailable")
	}
	out := make([][]float32, len(texts))
	var pending []int
	for i, t := range texts {
		if v, ok := e.overrides[t]; ok {
			out[i] = v
			continue
		}
		pending = append(pending, i)
	}
	if len(pending) > 0 {
		subset := make([]string, len(pending))
		for k, idx := range pending {
			subset[k] = texts[idx]
		}
		vecs := bagOfWordsVectors(subset)
		for k, idx := range pending {
			out[idx] = vecs[k]
		}
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int                      { return 0 }
func (e *fakeEmbedder) Model() string                        { return "bdd-fake-embedder" }
func (e *fakeEmbedder) HealthCheck(ctx context.Context) error { return nil }
func (e *fakeEmbedder) Close() error                          { return nil }

// bagOfWordsVectors builds one length-weighted, L2-normalized vector per
// text over the vocabulary shared across all of them, so that two texts
// reusing the same content words score a high cosine.
func bagOfWordsVectors(texts []string) [][]float32 {
	counts := make([]map[string]float64, len(texts))
	vocab := map[string]bool{}
	for i, t := range texts {
		c := map[string]float64{}
		for _, tok := range strings.Fields(strings.ToLower(t)) {
			tok = strings.Trim(tok, ".,;:!?\"'()")
			if tok == "" {
				continue
			}
			c[tok] += float64(len(tok))
			vocab[tok] = true
		}
		counts[i] = c
	}
	dims := make([]string, 0, len(vocab))
	for k := range vocab {
		dims = append(dims, k)
	}
	sort.Strings(dims)

	out := make([][]float32, len(texts))
	for i, c := range counts {
		vec := make([]float32, len(dims))
		var sumSquares float64
		for j, d := range dims {
			vec[j] = float32(c[d])
			sumSquares += c[d] * c[d]
		}
		norm := float32(math.Sqrt(sumSquares))
		if norm > 0 {
			for j := range vec {
				vec[j] /= norm
			}
		}
		out[i] = vec
	}
	return out
}

// overlapTemplates feed buildOverlapPair: each is an 8-unique-word source
// sentence whose target drops the last two words, giving a lexical jaccard
// of exactly 6/8 = 0.75 and a positive average-sentence-length delta.
var overlapTemplates = [][]string{
	{"o", "governo", "anunciou", "hoje", "um", "plano", "nacional", "importante"},
	{"a", "equipe", "lancou", "ontem", "um", "relatorio", "tecnico", "detalhado"},
	{"o", "ministerio", "publicou", "agora", "um", "aviso", "oficial", "extenso"},
	{"a", "comissao", "emitiu", "recentemente", "um", "parecer", "tecnico", "amplo"},
}

func buildOverlapPair(n int) (source, target string) {
	var srcParas, tgtParas []string
	for i := 0; i < n; i++ {
		words := overlapTemplates[i%len(overlapTemplates)]
		srcParas = append(srcParas, strings.Join(words, " ")+".")
		tgtParas = append(tgtParas, strings.Join(words[:len(words)-2], " ")+".")
	}
	return strings.Join(srcParas, "\n\n"), strings.Join(tgtParas, "\n\n")
}

// world holds per-scenario state shared across step functions.
type world struct {
	ctx context.Context

	store             *mocks.MockAnnotationStore
	runtimeConfig     *domain.RuntimeConfig
	embedder          *fakeEmbedder
	pipeline          *services.Pipeline
	annotationService driving.AnnotationService

	sourceText string
	targetText string

	report    *domain.AnalysisReport
	analyzeErr error

	sessionID string
	aliases   map[string]string // feature-visible name -> real StrategyID

	lastErr error
}

func newWorld() *world {
	w := &world{
		ctx:           context.Background(),
		store:         mocks.NewMockAnnotationStore(),
		runtimeConfig: domain.NewRuntimeConfig("mock"),
		aliases:       make(map[string]string),
	}
	w.annotationService = services.NewAnnotationService(w.store, services.AnnotationServiceConfig{}, nil)
	return w
}

// buildPipeline wires a fresh Pipeline once the scenario has decided
// whether an embedder is available; late binding lets "the embedder is
// unavailable" run before any text is known.
func (w *world) buildPipeline() {
	registry := segmenters.NewRegistry()
	registry.Register(&segmenters.PortugueseSegmenter{})
	registry.Register(&segmenters.PunctuationSegmenter{})
	preprocessor := services.NewPreprocessor(registry, 0)

	var embedder driven.Embedder
	if w.embedder != nil {
		embedder = w.embedder
		w.runtimeConfig.SetEmbeddingAvailable(true)
	}
	aligner := services.NewAligner(embedder, w.runtimeConfig, services.AlignerConfig{Threshold: 0.3, TopK: 5})
	extractor := services.NewExtractor(nil, w.runtimeConfig, services.DefaultSpanPipeline())
	classifier := services.NewClassifier(services.ClassifierConfig{MinConfidence: 0.3, Weights: services.DefaultRuleWeights()})

	w.pipeline = services.NewPipeline(preprocessor, aligner, extractor, classifier, w.store, services.PipelineConfig{StageTimeout: 5 * time.Second}, slog.Default())
}

// seedSession creates a fresh session in the in-memory store; the mock
// store's CreateSession never fails, so the error is not actionable here.
func (w *world) seedSession(sessionID string) {
	_ = w.store.CreateSession(w.ctx, &domain.Session{
		SessionID: sessionID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	w.sessionID = sessionID
}

func (w *world) resolve(alias string) string {
	if id, ok := w.aliases[alias]; ok {
		return id
	}
	return alias
}

// --- Degraded mode ---

func (w *world) theEmbedderIsUnavailable() error {
	w.embedder = nil
	return nil
}

func (w *world) sourceTextWithParagraphsOverlap(n int) error {
	source, target := buildOverlapPair(n)
	w.sourceText = source
	if w.targetText == "" {
		w.targetText = target
	}
	return nil
}

func (w *world) targetTextWithParagraphsOverlap(n int) error {
	_, target := buildOverlapPair(n)
	w.targetText = target
	return nil
}

func (w *world) iAnalyzeThePair() error {
	if w.pipeline == nil {
		w.buildPipeline()
	}
	report, err := w.pipeline.Analyze(w.ctx, w.sourceText, w.targetText)
	w.report = report
	w.analyzeErr = err
	return nil
}

func (w *world) thePipelineCompletesWithoutError() error {
	if w.analyzeErr != nil {
		return fmt.Errorf("expected no error, got %w", w.analyzeErr)
	}
	return nil
}

func (w *world) everyPredictionsEvidenceMentions(text string) error {
	if w.report == nil {
		return errors.New("no report to inspect")
	}
	for _, p := range w.report.Predictions {
		found := false
		for _, e := range p.Evidence {
			if strings.Contains(e, text) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("prediction %s (%s) evidence %v does not mention %q", p.StrategyID, p.Code, p.Evidence, text)
		}
	}
	return nil
}

// --- Vocabulary adequation & sentence fragmentation ---

func (w *world) theSourceParagraph(text string) error {
	w.sourceText = text
	return nil
}

func (w *world) theTargetParagraph(text string) error {
	w.targetText = text
	w.embedder = newFakeEmbedder()
	// Exact vectors for spec.md §8 scenario 2's fixed sentence pair: the
	// shared content words ("Lei", "Responsabilidade", "Fiscal") carry the
	// topical signal a real sentence embedding would capture even though
	// raw token overlap is low.
	w.embedder.overrides[w.sourceText] = []float32{0.9, 0.43589}
	w.embedder.overrides[w.targetText] = []float32{1, 0}
	return nil
}

func (w *world) theParagraphsAreAlignedWithSimilarityAtLeast(min float64) error {
	if w.report == nil || w.report.Alignment == nil || len(w.report.Alignment.Pairs) == 0 {
		return errors.New("no aligned pair found")
	}
	sim := w.report.Alignment.Pairs[0].Similarity
	if sim < min {
		return fmt.Errorf("expected similarity >= %v, got %v", min, sim)
	}
	return nil
}

func (w *world) aPredictionWithCodeIsEmitted(code string) error {
	if w.predictionWithCode(code) == nil {
		return fmt.Errorf("no prediction with code %s emitted; got %v", code, w.codesEmitted())
	}
	return nil
}

func (w *world) noPredictionWithCodeIsEmitted(code string) error {
	if p := w.predictionWithCode(code); p != nil {
		return fmt.Errorf("unexpected prediction with code %s", code)
	}
	return nil
}

func (w *world) predictionWithCode(code string) *domain.StrategyPrediction {
	if w.report == nil {
		return nil
	}
	for _, p := range w.report.Predictions {
		if string(p.Code) == code {
			return p
		}
	}
	return nil
}

func (w *world) codesEmitted() []string {
	var codes []string
	if w.report != nil {
		for _, p := range w.report.Predictions {
			codes = append(codes, string(p.Code))
		}
	}
	return codes
}

func (w *world) thatPredictionsConfidenceIsGreaterThan(code string, min float64) error {
	p := w.predictionWithCode(code)
	if p == nil {
		return fmt.Errorf("no prediction with code %s", code)
	}
	if p.Confidence <= min {
		return fmt.Errorf("expected confidence > %v, got %v", min, p.Confidence)
	}
	return nil
}

func (w *world) thatPredictionsEvidenceMentionsReducedWordLength() error {
	p := w.predictionWithCode("SL+")
	if p == nil {
		return errors.New("no SL+ prediction")
	}
	for _, e := range p.Evidence {
		if strings.Contains(strings.ToLower(e), "shorter") || strings.Contains(strings.ToLower(e), "word length") {
			return nil
		}
	}
	return fmt.Errorf("SL+ evidence %v does not mention reduced word length", p.Evidence)
}

func (w *world) aSourceSentenceOfWordsWithTwoSubordinateClauses(n int) error {
	clause := "o relatorio que o governo publicou ontem embora tenha sido criticado por especialistas independentes " +
		"que avaliaram seus metodos estatisticos apresenta dados detalhados sobre o crescimento economico regional " +
		"a distribuicao de renda entre as familias brasileiras e as projecoes futuras para o proximo ano fiscal"
	words := strings.Fields(clause)
	for len(words) < n {
		words = append(words, words[len(words)%len(words)])
	}
	sentence := strings.Join(words[:n], " ")
	sentence = strings.ToUpper(sentence[:1]) + sentence[1:] + "."
	w.sourceText = sentence
	return nil
}

func (w *world) aTargetMadeOfSentencesEachOfAtMostWordsPreservingTheContent(count, maxWords int) error {
	sentences := []string{
		"O governo publicou o relatorio ontem.",
		"Especialistas independentes criticaram seus metodos estatisticos.",
		"O relatorio apresenta dados sobre crescimento economico, distribuicao de renda e projecoes futuras.",
	}
	if count < len(sentences) {
		sentences = sentences[:count]
	}
	w.targetText = strings.Join(sentences, " ")
	w.embedder = newFakeEmbedder()
	// The fixed source/target pair below share most of their content words
	// but not all (the source's subordinate clauses are dropped entirely),
	// so a generic bag-of-words cosine risks landing under the 0.7 floor
	// RP+/RD+ both require. Pin it the same way vocabulary_adequation does.
	w.embedder.overrides[w.sourceText] = []float32{0.85, 0.5267}
	w.embedder.overrides[w.targetText] = []float32{1, 0}
	return nil
}

func (w *world) thatPredictionsConfidenceScalesWithTheSentenceCountRatio() error {
	p := w.predictionWithCode("RP+")
	if p == nil {
		return errors.New("no RP+ prediction")
	}
	if p.Confidence <= 0.5 {
		return fmt.Errorf("expected RP+ confidence to scale above the 0.5 base, got %v", p.Confidence)
	}
	return nil
}

// --- Annotation lifecycle & span edit ---

func (w *world) aSessionSeededWithOnePendingPrediction(alias string) error {
	return w.seedPending(alias, domain.StrategySL, []domain.Offset{{Start: 0, End: 10}})
}

func (w *world) aSessionSeededWithOnePendingPredictionWithTargetOffsets(alias string, start, end int) error {
	return w.seedPending(alias, domain.StrategyRP, []domain.Offset{{Start: start, End: end}})
}

func (w *world) seedPending(alias string, code domain.StrategyCode, offsets []domain.Offset) error {
	sessionID := "sess-" + alias
	w.seedSession(sessionID)
	now := time.Now()
	pred := &domain.StrategyPrediction{
		StrategyID:    domain.GenerateID(),
		Code:          code,
		Confidence:    0.8,
		Evidence:      []string{"seeded for testing"},
		TargetOffsets: offsets,
		Origin:        domain.OriginMachine,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	w.aliases[alias] = pred.StrategyID
	return w.store.SeedAnnotations(w.ctx, sessionID, []*domain.StrategyPrediction{pred})
}

func (w *world) iModifyTheCodeOfPredictionTo(alias, newCode string) error {
	_, err := w.annotationService.ModifyCode(w.ctx, w.sessionID, w.resolve(alias), domain.StrategyCode(newCode))
	w.lastErr = err
	return nil
}

func (w *world) iModifyTheSpanOfPredictionToOffsets(alias string, start, end int) error {
	_, err := w.annotationService.ModifySpan(w.ctx, w.sessionID, w.resolve(alias), []domain.Offset{{Start: start, End: end}})
	w.lastErr = err
	return nil
}

func (w *world) iAcceptPrediction(alias string) error {
	_, err := w.annotationService.Accept(w.ctx, w.sessionID, w.resolve(alias))
	w.lastErr = err
	return nil
}

func (w *world) iRejectPrediction(alias string) error {
	_, err := w.annotationService.Reject(w.ctx, w.sessionID, w.resolve(alias))
	w.lastErr = err
	return nil
}

func (w *world) predictionHasStatus(alias, status string) error {
	pred, err := w.store.GetAnnotation(w.ctx, w.sessionID, w.resolve(alias))
	if err != nil {
		return err
	}
	if string(pred.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, pred.Status)
	}
	return nil
}

func (w *world) predictionsTargetOffsetsAre(alias string, start, end int) error {
	pred, err := w.store.GetAnnotation(w.ctx, w.sessionID, w.resolve(alias))
	if err != nil {
		return err
	}
	if len(pred.TargetOffsets) != 1 || pred.TargetOffsets[0].Start != start || pred.TargetOffsets[0].End != end {
		return fmt.Errorf("expected target offsets [%d,%d), got %v", start, end, pred.TargetOffsets)
	}
	return nil
}

func (w *world) predictionsOriginalCodeIsThePreModificationCode() error {
	pred, err := w.store.GetAnnotation(w.ctx, w.sessionID, w.resolve("p"))
	if err != nil {
		return err
	}
	if pred.OriginalCode == nil || *pred.OriginalCode != domain.StrategySL {
		return fmt.Errorf("expected original_code SL+, got %v", pred.OriginalCode)
	}
	return nil
}

func (w *world) theAuditLogForContainsExactlyEntry(alias string, n int) error {
	entries, err := w.annotationService.Audit(w.ctx, w.sessionID, w.resolve(alias))
	if err != nil {
		return err
	}
	if len(entries) != n {
		return fmt.Errorf("expected %d audit entries, got %d", n, len(entries))
	}
	return nil
}

func (w *world) theAuditLogForStillContainsExactlyEntry(alias string, n int) error {
	return w.theAuditLogForContainsExactlyEntry(alias, n)
}

func (w *world) theLastAuditEntryForHasAction(alias, action string) error {
	entries, err := w.annotationService.Audit(w.ctx, w.sessionID, w.resolve(alias))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("no audit entries")
	}
	last := entries[len(entries)-1]
	if string(last.Action) != action {
		return fmt.Errorf("expected last action %s, got %s", action, last.Action)
	}
	return nil
}

func (w *world) theLastAuditEntryForRecordsFromOffsetsAndToOffsets(alias string, fromStart, fromEnd, toStart, toEnd int) error {
	entries, err := w.annotationService.Audit(w.ctx, w.sessionID, w.resolve(alias))
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("no audit entries")
	}
	last := entries[len(entries)-1]
	if len(last.FromOffsets) != 1 || last.FromOffsets[0].Start != fromStart || last.FromOffsets[0].End != fromEnd {
		return fmt.Errorf("expected from offsets [%d,%d), got %v", fromStart, fromEnd, last.FromOffsets)
	}
	if len(last.ToOffsets) != 1 || last.ToOffsets[0].Start != toStart || last.ToOffsets[0].End != toEnd {
		return fmt.Errorf("expected to offsets [%d,%d), got %v", toStart, toEnd, last.ToOffsets)
	}
	return nil
}

func (w *world) theCallRaisesIllegalTransition() error {
	if !errors.Is(w.lastErr, domain.ErrIllegalTransition) {
		return fmt.Errorf("expected ErrIllegalTransition, got %v", w.lastErr)
	}
	return nil
}

// --- Export round-trip ---

func (w *world) aSessionSeededWithPendingPredictions(n int, a1, a2, a3, a4 string) error {
	sessionID := "sess-export"
	w.seedSession(sessionID)
	now := time.Now()
	aliases := []string{a1, a2, a3, a4}
	var preds []*domain.StrategyPrediction
	for i, alias := range aliases {
		pred := &domain.StrategyPrediction{
			StrategyID:    domain.GenerateID(),
			Code:          domain.StrategySL,
			Confidence:    0.7,
			Evidence:      []string{"seeded for export test"},
			TargetOffsets: []domain.Offset{{Start: i * 10, End: i*10 + 5}},
			Origin:        domain.OriginMachine,
			Status:        domain.StatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		w.aliases[alias] = pred.StrategyID
		preds = append(preds, pred)
	}
	return w.store.SeedAnnotations(w.ctx, sessionID, preds)
}

func (w *world) iCreateANewAnnotationWithCode(alias, code string) error {
	pred, err := w.annotationService.Create(w.ctx, w.sessionID, domain.StrategyCode(code), []domain.Offset{{Start: 0, End: 5}}, "")
	if err != nil {
		return err
	}
	w.aliases[alias] = pred.StrategyID
	return nil
}

var lastExport []byte

func (w *world) iExportTheSessionAs(format string) error {
	data, err := w.annotationService.Export(w.ctx, w.sessionID, format)
	lastExport = data
	w.lastErr = err
	return err
}

func (w *world) theExportContainsExactlyLines(n int) error {
	lines := nonEmptyLines(lastExport)
	if len(lines) != n {
		return fmt.Errorf("expected %d lines, got %d: %q", n, len(lines), string(lastExport))
	}
	return nil
}

func (w *world) theExportDoesNotContain(alias string) error {
	id := w.resolve(alias)
	if strings.Contains(string(lastExport), id) {
		return fmt.Errorf("export unexpectedly contains rejected alias %s", alias)
	}
	return nil
}

func (w *world) reparsingTheExportReproducesTheAnnotationsExactly() error {
	lines := nonEmptyLines(lastExport)
	wantAliases := []string{"accepted1", "modified1", "created1"}
	found := map[string]bool{}
	for _, line := range lines {
		for _, alias := range wantAliases {
			if strings.Contains(line, w.resolve(alias)) {
				found[alias] = true
			}
		}
	}
	for _, alias := range wantAliases {
		if !found[alias] {
			return fmt.Errorf("export does not reproduce annotation %s", alias)
		}
	}
	return nil
}

func nonEmptyLines(data []byte) []string {
	var out []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// InitializeScenario registers every Given/When/Then step used by the
// feature files under features/, resetting world state between scenarios.
func InitializeScenario(ctx *godog.ScenarioContext) {
	var w *world
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		w = newWorld()
		return c, nil
	})

	ctx.Step(`^the embedder is unavailable$`, func() error { return w.theEmbedderIsUnavailable() })
	ctx.Step(`^a source text with (\d+) paragraphs with high lexical overlap with the target$`, func(n int) error {
		return w.sourceTextWithParagraphsOverlap(n)
	})
	ctx.Step(`^a target text with (\d+) paragraphs with high lexical overlap with the source$`, func(n int) error {
		return w.targetTextWithParagraphsOverlap(n)
	})
	ctx.Step(`^I analyze the pair$`, func() error { return w.iAnalyzeThePair() })
	ctx.Step(`^the pipeline completes without error$`, func() error { return w.thePipelineCompletesWithoutError() })
	ctx.Step(`^every prediction's evidence mentions "([^"]*)"$`, func(text string) error {
		return w.everyPredictionsEvidenceMentions(text)
	})

	ctx.Step(`^the source paragraph "([^"]*)"$`, func(text string) error { return w.theSourceParagraph(text) })
	ctx.Step(`^the target paragraph "([^"]*)"$`, func(text string) error { return w.theTargetParagraph(text) })
	ctx.Step(`^the paragraphs are aligned with similarity at least ([\d.]+)$`, func(min float64) error {
		return w.theParagraphsAreAlignedWithSimilarityAtLeast(min)
	})
	ctx.Step(`^a prediction with code "([^"]*)" is emitted$`, func(code string) error { return w.aPredictionWithCodeIsEmitted(code) })
	ctx.Step(`^no prediction with code "([^"]*)" is emitted$`, func(code string) error { return w.noPredictionWithCodeIsEmitted(code) })
	ctx.Step(`^that prediction's confidence is greater than ([\d.]+)$`, func(min float64) error {
		return w.thatPredictionsConfidenceIsGreaterThan("SL+", min)
	})
	ctx.Step(`^that prediction's evidence mentions reduced word length$`, func() error {
		return w.thatPredictionsEvidenceMentionsReducedWordLength()
	})

	ctx.Step(`^a source sentence of (\d+) words with two subordinate clauses$`, func(n int) error {
		return w.aSourceSentenceOfWordsWithTwoSubordinateClauses(n)
	})
	ctx.Step(`^a target made of (\d+) sentences each of at most (\d+) words preserving the content$`, func(count, maxWords int) error {
		return w.aTargetMadeOfSentencesEachOfAtMostWordsPreservingTheContent(count, maxWords)
	})
	ctx.Step(`^that prediction's confidence scales with the sentence-count ratio$`, func() error {
		return w.thatPredictionsConfidenceScalesWithTheSentenceCountRatio()
	})

	ctx.Step(`^a session seeded with one pending prediction "([^"]*)"$`, func(alias string) error {
		return w.aSessionSeededWithOnePendingPrediction(alias)
	})
	ctx.Step(`^a session seeded with one pending prediction "([^"]*)" with target offsets (\d+) to (\d+)$`, func(alias string, start, end int) error {
		return w.aSessionSeededWithOnePendingPredictionWithTargetOffsets(alias, start, end)
	})
	ctx.Step(`^I modify the code of prediction "([^"]*)" to "([^"]*)"$`, func(alias, code string) error {
		return w.iModifyTheCodeOfPredictionTo(alias, code)
	})
	ctx.Step(`^I modify the span of prediction "([^"]*)" to offsets (\d+) to (\d+)$`, func(alias string, start, end int) error {
		return w.iModifyTheSpanOfPredictionToOffsets(alias, start, end)
	})
	ctx.Step(`^I accept prediction "([^"]*)"$`, func(alias string) error { return w.iAcceptPrediction(alias) })
	ctx.Step(`^I reject prediction "([^"]*)"$`, func(alias string) error { return w.iRejectPrediction(alias) })
	ctx.Step(`^prediction "([^"]*)" has status "([^"]*)"$`, func(alias, status string) error {
		return w.predictionHasStatus(alias, status)
	})
	ctx.Step(`^prediction "([^"]*)"'s target offsets are (\d+) to (\d+)$`, func(alias string, start, end int) error {
		return w.predictionsTargetOffsetsAre(alias, start, end)
	})
	ctx.Step(`^prediction "([^"]*)"'s original code is the pre-modification code$`, func(alias string) error {
		return w.predictionsOriginalCodeIsThePreModificationCode()
	})
	ctx.Step(`^the audit log for "([^"]*)" contains exactly (\d+) entr(?:y|ies)$`, func(alias string, n int) error {
		return w.theAuditLogForContainsExactlyEntry(alias, n)
	})
	ctx.Step(`^the audit log for "([^"]*)" still contains exactly (\d+) entr(?:y|ies)$`, func(alias string, n int) error {
		return w.theAuditLogForStillContainsExactlyEntry(alias, n)
	})
	ctx.Step(`^the last audit entry for "([^"]*)" has action "([^"]*)"$`, func(alias, action string) error {
		return w.theLastAuditEntryForHasAction(alias, action)
	})
	ctx.Step(`^the last audit entry for "([^"]*)" records from offsets (\d+) to (\d+) and to offsets (\d+) to (\d+)$`, func(alias string, a, b, c, d int) error {
		return w.theLastAuditEntryForRecordsFromOffsetsAndToOffsets(alias, a, b, c, d)
	})
	ctx.Step(`^the call raises IllegalTransition$`, func() error { return w.theCallRaisesIllegalTransition() })

	ctx.Step(`^a session seeded with (\d+) pending predictions "([^"]*)", "([^"]*)", "([^"]*)", "([^"]*)"$`, func(n int, a1, a2, a3, a4 string) error {
		return w.aSessionSeededWithPendingPredictions(n, a1, a2, a3, a4)
	})
	ctx.Step(`^I create a new annotation "([^"]*)" with code "([^"]*)"$`, func(alias, code string) error {
		return w.iCreateANewAnnotationWithCode(alias, code)
	})
	ctx.Step(`^I export the session as "([^"]*)"$`, func(format string) error { return w.iExportTheSessionAs(format) })
	ctx.Step(`^the export contains exactly (\d+) lines?$`, func(n int) error { return w.theExportContainsExactlyLines(n) })
	ctx.Step(`^the export does not contain "([^"]*)"$`, func(alias string) error { return w.theExportDoesNotContain(alias) })
	ctx.Step(`^reparsing the export reproduces the accepted, modified and created annotations exactly$`, func() error {
		return w.reparsingTheExportReproducesTheAnnotationsExactly()
	})
}

// TestFeatures runs every .feature file under features/ against the step
// definitions above.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			TestingT: t,
		},
	}
	status := suite.Run()
	require.Equal(t, 0, status, "one or more feature scenarios failed")
}
