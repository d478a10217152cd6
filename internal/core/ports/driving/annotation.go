package driving

import (
	"context"

	"github.com/netest/netest-core/internal/core/domain"
)

// AnnotationService exposes the annotation lifecycle from spec.md §4.6:
// seeding machine predictions, human create/accept/reject/modify, listing,
// audit retrieval and export.
type AnnotationService interface {
	// ListVisible returns all annotations except those with status
	// rejected.
	ListVisible(ctx context.Context, sessionID string) ([]*domain.StrategyPrediction, error)

	// Create adds a human annotation with origin=human, status=created.
	Create(ctx context.Context, sessionID string, code domain.StrategyCode, targetOffsets []domain.Offset, comment string) (*domain.StrategyPrediction, error)

	// Accept transitions pending -> accepted.
	Accept(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error)

	// Reject transitions pending, modified or created -> rejected; rejecting
	// an accepted or already rejected annotation is an illegal transition.
	Reject(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error)

	// ModifyCode changes an annotation's strategy code.
	ModifyCode(ctx context.Context, sessionID, strategyID string, newCode domain.StrategyCode) (*domain.StrategyPrediction, error)

	// ModifySpan replaces an annotation's target offsets.
	ModifySpan(ctx context.Context, sessionID, strategyID string, newTargetOffsets []domain.Offset) (*domain.StrategyPrediction, error)

	// Audit returns the audit entries for one annotation, chronologically.
	Audit(ctx context.Context, sessionID, strategyID string) ([]*domain.AuditEntry, error)

	// Export returns a serialized dump of annotations whose status is in
	// {accepted, modified, created}, in the requested format ("jsonl" or
	// "csv").
	Export(ctx context.Context, sessionID string, format string) ([]byte, error)
}
