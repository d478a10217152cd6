package driven

import (
	"context"

	"github.com/netest/netest-core/internal/core/domain"
)

// AnnotationStore persists sessions, their seeded/edited StrategyPrediction
// annotations and their append-only audit log. Three backends implement
// this: filesystem (atomic rename, single-process), SQLite (single-file,
// concurrent-safe) and Postgres (multi-instance deployments).
type AnnotationStore interface {
	// CreateSession persists a new session record with no annotations yet.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session's metadata by ID.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// GetSessionRecord retrieves the full record: session, annotations and
	// audit log.
	GetSessionRecord(ctx context.Context, id string) (*domain.SessionRecord, error)

	// ListSessions lists session metadata, most recently created first.
	ListSessions(ctx context.Context, limit, offset int) ([]*domain.Session, error)

	// DeleteSession purges a session and everything owned by it.
	DeleteSession(ctx context.Context, id string) error

	// SeedAnnotations inserts the predictions of a freshly-analyzed session
	// whose strategy_id is not already on record, leaving existing
	// annotations untouched. Idempotent on (session_id, strategy_id); writes
	// no audit entry, since seeding is not a status transition.
	SeedAnnotations(ctx context.Context, sessionID string, predictions []*domain.StrategyPrediction) error

	// GetAnnotation retrieves one StrategyPrediction by ID.
	GetAnnotation(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error)

	// ListAnnotations lists every StrategyPrediction in a session.
	ListAnnotations(ctx context.Context, sessionID string) ([]*domain.StrategyPrediction, error)

	// ApplyTransition validates and applies a status transition
	// (accept/reject/modify), appending one AuditEntry. The store must
	// perform the status update and the audit append as a single atomic
	// unit per session.
	ApplyTransition(ctx context.Context, sessionID string, entry *domain.AuditEntry, updated *domain.StrategyPrediction) error

	// CreateAnnotation inserts a new, human-created StrategyPrediction
	// (AnnotationStatus=created), appending a "create" AuditEntry.
	CreateAnnotation(ctx context.Context, sessionID string, prediction *domain.StrategyPrediction, entry *domain.AuditEntry) error

	// GetAuditLog retrieves the full append-only audit log for a session.
	GetAuditLog(ctx context.Context, sessionID string) ([]*domain.AuditEntry, error)

	// Ping checks if the store backend is healthy.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
