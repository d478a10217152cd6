package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
	"github.com/netest/netest-core/internal/core/ports/driving"
)

// Verify interface compliance.
var _ driving.AnalysisService = (*Pipeline)(nil)

// PipelineConfig carries the per-stage soft timeout from spec.md §5/§6's
// stage_timeout_ms, applied to the alignment stage and to the
// extract+classify loop as a whole.
type PipelineConfig struct {
	StageTimeout time.Duration
}

// Pipeline wires the preprocessor, aligner, extractor and classifier into
// one sequential Analyze call and seeds the result into the AnnotationStore,
// per spec.md §2's component pipeline and §5's single-logical-task model.
// Grounded on sync.go's SyncOrchestrator.SyncSource: sequential multi-stage
// orchestration, per-stage error handling, and a result struct accumulating
// degraded/truncated flags along the way.
type Pipeline struct {
	preprocessor *Preprocessor
	aligner      *Aligner
	extractor    *Extractor
	classifier   *Classifier
	store        driven.AnnotationStore
	cfg          PipelineConfig
	logger       *slog.Logger
}

// NewPipeline builds the Analyze orchestrator.
func NewPipeline(preprocessor *Preprocessor, aligner *Aligner, extractor *Extractor, classifier *Classifier, store driven.AnnotationStore, cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		preprocessor: preprocessor,
		aligner:      aligner,
		extractor:    extractor,
		classifier:   classifier,
		store:        store,
		cfg:          cfg,
		logger:       logger,
	}
}

// Analyze runs the full pipeline over one source/target pair and returns
// the report without persisting a session, for synchronous/dry-run use.
func (p *Pipeline) Analyze(ctx context.Context, sourceText, targetText string) (*domain.AnalysisReport, error) {
	sourceDoc, err := p.preprocessor.Process(sourceText)
	if err != nil {
		return nil, err
	}
	targetDoc, err := p.preprocessor.Process(targetText)
	if err != nil {
		return nil, err
	}

	alignCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()
	alignment, err := p.aligner.Align(alignCtx, sourceDoc.Paragraphs, targetDoc.Paragraphs)
	if err != nil {
		return nil, err
	}

	predictions, truncated := p.extractAndClassify(ctx, sourceDoc, targetDoc, alignment)
	alignment.Truncated = alignment.Truncated || truncated

	session := &domain.Session{
		SessionID:  domain.GenerateID(),
		SourceText: sourceDoc.RawText,
		TargetText: targetDoc.RawText,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		Degraded:   alignment.Degraded,
		Truncated:  alignment.Truncated,
	}

	return &domain.AnalysisReport{
		Session:     session,
		Alignment:   alignment,
		Predictions: predictions,
	}, nil
}

// Submit runs Analyze and persists the resulting session plus its seeded
// machine predictions, returning the new session_id.
func (p *Pipeline) Submit(ctx context.Context, sourceText, targetText string) (string, error) {
	report, err := p.Analyze(ctx, sourceText, targetText)
	if err != nil {
		return "", err
	}

	if err := p.store.CreateSession(ctx, report.Session); err != nil {
		return "", err
	}
	if err := p.store.SeedAnnotations(ctx, report.Session.SessionID, report.Predictions); err != nil {
		return "", err
	}

	p.logger.Info("analysis submitted",
		"session_id", report.Session.SessionID,
		"predictions", len(report.Predictions),
		"degraded", report.Session.Degraded,
		"truncated", report.Session.Truncated,
	)
	return report.Session.SessionID, nil
}

// GetReport reconstructs an AnalysisReport from a previously persisted
// session record.
func (p *Pipeline) GetReport(ctx context.Context, sessionID string) (*domain.AnalysisReport, error) {
	record, err := p.store.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &domain.AnalysisReport{
		Session:     record.Session,
		Predictions: record.Annotations,
	}, nil
}

// extractAndClassify runs the Feature & Span Extractor and Strategy
// Classifier over every aligned pair. If the stage's soft timeout expires
// mid-loop, it returns whatever predictions were accumulated so far and
// truncated=true, per spec.md §5's timeout semantics.
func (p *Pipeline) extractAndClassify(ctx context.Context, sourceDoc, targetDoc *domain.Document, alignment *domain.AlignmentResult) ([]*domain.StrategyPrediction, bool) {
	deadlineCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	defer cancel()

	var predictions []*domain.StrategyPrediction
	for _, pair := range alignment.Pairs {
		select {
		case <-deadlineCtx.Done():
			return predictions, true
		default:
		}

		source := sourceDoc.Paragraphs[pair.SourceParagraphIndex]
		target := targetDoc.Paragraphs[pair.TargetParagraphIndex]

		fv, candidates := p.extractor.Extract(deadlineCtx, source, target, pair.Similarity, alignment.Degraded)
		predictions = append(predictions, p.classifier.Classify(fv, candidates)...)
	}
	return predictions, false
}
