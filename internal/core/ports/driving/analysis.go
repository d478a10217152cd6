package driving

import (
	"context"

	"github.com/netest/netest-core/internal/core/domain"
)

// AnalysisService runs the full pipeline — preprocess, embed, align,
// extract features, classify, seed — for one source/target pair.
type AnalysisService interface {
	// Analyze runs the pipeline synchronously and returns the resulting
	// report without persisting a session. Used by the HTTP analyze
	// endpoint.
	Analyze(ctx context.Context, sourceText, targetText string) (*domain.AnalysisReport, error)

	// Submit runs the pipeline synchronously, persists the session and its
	// seeded predictions, and returns the new session id; the caller then
	// fetches GetReport or the annotation list. Used by the HTTP submit
	// endpoint and by the worker pool when processing an analyze task.
	Submit(ctx context.Context, sourceText, targetText string) (sessionID string, err error)

	// GetReport retrieves the analysis report for a previously submitted or
	// analyzed session.
	GetReport(ctx context.Context, sessionID string) (*domain.AnalysisReport, error)
}
