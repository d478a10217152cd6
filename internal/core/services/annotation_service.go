package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
	"github.com/netest/netest-core/internal/core/ports/driving"
)

// Verify interface compliance.
var _ driving.AnnotationService = (*annotationService)(nil)

// AnnotationServiceConfig carries the distributed-lock tunables from
// spec.md §5's per-session mutual exclusion requirement.
type AnnotationServiceConfig struct {
	Lock         driven.DistributedLock // optional; nil means single-instance, no locking
	LockTTL      time.Duration
	LockRequired bool
}

type annotationService struct {
	store  driven.AnnotationStore
	cfg    AnnotationServiceConfig
	logger *slog.Logger
}

// NewAnnotationService builds the annotation lifecycle service over an
// AnnotationStore, optionally guarded by a DistributedLock so a session's
// mutations serialize across instances, per spec.md §5.
func NewAnnotationService(store driven.AnnotationStore, cfg AnnotationServiceConfig, logger *slog.Logger) driving.AnnotationService {
	if cfg.LockTTL == 0 {
		cfg.LockTTL = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &annotationService{store: store, cfg: cfg, logger: logger}
}

func (s *annotationService) ListVisible(ctx context.Context, sessionID string) ([]*domain.StrategyPrediction, error) {
	all, err := s.store.ListAnnotations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	visible := all[:0]
	for _, a := range all {
		if a.Status != domain.StatusRejected {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

func (s *annotationService) Create(ctx context.Context, sessionID string, code domain.StrategyCode, targetOffsets []domain.Offset, comment string) (*domain.StrategyPrediction, error) {
	if !domain.IsKnownStrategyCode(code) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategyCode, code)
	}

	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now()
	prediction := &domain.StrategyPrediction{
		StrategyID:    domain.GenerateID(),
		Code:          code,
		Confidence:    1.0,
		Evidence:      []string{"human_created"},
		TargetOffsets: targetOffsets,
		Origin:        domain.OriginHuman,
		Status:        domain.StatusCreated,
		Comment:       comment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	entry := &domain.AuditEntry{
		StrategyID:  prediction.StrategyID,
		Action:      domain.ActionCreate,
		ToStatus:    domain.StatusCreated,
		ToCode:      code,
		ToOffsets:   targetOffsets,
		Timestamp:   now,
		Comment:     comment,
	}

	if err := s.store.CreateAnnotation(ctx, sessionID, prediction, entry); err != nil {
		return nil, err
	}
	return prediction, nil
}

func (s *annotationService) Accept(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error) {
	return s.transition(ctx, sessionID, strategyID, domain.StatusAccepted, domain.ActionAccept, "", "")
}

func (s *annotationService) Reject(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error) {
	return s.transition(ctx, sessionID, strategyID, domain.StatusRejected, domain.ActionReject, "", "")
}

func (s *annotationService) ModifyCode(ctx context.Context, sessionID, strategyID string, newCode domain.StrategyCode) (*domain.StrategyPrediction, error) {
	if !domain.IsKnownStrategyCode(newCode) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownStrategyCode, newCode)
	}
	return s.transition(ctx, sessionID, strategyID, domain.StatusModified, domain.ActionModifyCode, newCode, "")
}

func (s *annotationService) ModifySpan(ctx context.Context, sessionID, strategyID string, newTargetOffsets []domain.Offset) (*domain.StrategyPrediction, error) {
	return s.transitionOffsets(ctx, sessionID, strategyID, newTargetOffsets)
}

func (s *annotationService) Audit(ctx context.Context, sessionID, strategyID string) ([]*domain.AuditEntry, error) {
	all, err := s.store.GetAuditLog(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var out []*domain.AuditEntry
	for _, e := range all {
		if e.StrategyID == strategyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *annotationService) Export(ctx context.Context, sessionID string, format string) ([]byte, error) {
	all, err := s.store.ListAnnotations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var exportable []*domain.StrategyPrediction
	for _, a := range all {
		if domain.ExportableStatuses[a.Status] {
			exportable = append(exportable, a)
		}
	}
	switch format {
	case "jsonl":
		return encodeJSONL(sessionID, exportable)
	case "csv":
		return encodeCSV(sessionID, exportable)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", domain.ErrInvalidInput, format)
	}
}

// transition loads an annotation, validates the requested status move, and
// applies it plus its audit entry atomically via the store. newCode, when
// non-empty, is written alongside the status change; the trailing string
// argument is not used (offset edits go through transitionOffsets).
func (s *annotationService) transition(ctx context.Context, sessionID, strategyID string, to domain.AnnotationStatus, action domain.AuditAction, newCode domain.StrategyCode, _ string) (*domain.StrategyPrediction, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.store.GetAnnotation(ctx, sessionID, strategyID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, current.Status, to)
	}

	now := time.Now()
	entry := &domain.AuditEntry{
		StrategyID: strategyID,
		Action:     action,
		FromStatus: current.Status,
		ToStatus:   to,
		Timestamp:  now,
	}

	updated := *current
	updated.Status = to
	updated.UpdatedAt = now
	if newCode != "" {
		original := current.Code
		updated.OriginalCode = &original
		updated.Code = newCode
		entry.FromCode = current.Code
		entry.ToCode = newCode
	}

	if err := s.store.ApplyTransition(ctx, sessionID, entry, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *annotationService) transitionOffsets(ctx context.Context, sessionID, strategyID string, newOffsets []domain.Offset) (*domain.StrategyPrediction, error) {
	unlock, err := s.lockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.store.GetAnnotation(ctx, sessionID, strategyID)
	if err != nil {
		return nil, err
	}

	toStatus := current.Status
	if current.Status == domain.StatusPending {
		toStatus = domain.StatusModified
	}

	now := time.Now()
	entry := &domain.AuditEntry{
		StrategyID:  strategyID,
		Action:      domain.ActionModifySpan,
		FromStatus:  current.Status,
		ToStatus:    toStatus,
		FromOffsets: current.TargetOffsets,
		ToOffsets:   newOffsets,
		Timestamp:   now,
	}

	updated := *current
	updated.TargetOffsets = newOffsets
	updated.Status = toStatus
	updated.UpdatedAt = now
	// original_code is non-null iff status is modified (spec.md §3); a
	// span-only edit that promotes pending->modified didn't change the
	// code, so it records the unchanged code as its own "original".
	if toStatus == domain.StatusModified && updated.OriginalCode == nil {
		original := current.Code
		updated.OriginalCode = &original
	}

	if err := s.store.ApplyTransition(ctx, sessionID, entry, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// lockSession acquires a per-session distributed lock when one is
// configured, so concurrent requests against the same session serialize
// instead of racing on the store's read-modify-write. Grounded on
// scheduler.go's acquire-then-deferred-release pattern, renamed to a
// per-resource lock name instead of a single fixed "scheduler" name.
func (s *annotationService) lockSession(ctx context.Context, sessionID string) (func(), error) {
	if s.cfg.Lock == nil {
		return func() {}, nil
	}
	name := "session:" + sessionID
	acquired, err := s.cfg.Lock.Acquire(ctx, name, s.cfg.LockTTL)
	if err != nil {
		if s.cfg.LockRequired {
			return nil, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
		}
		return func() {}, nil
	}
	if !acquired {
		return nil, fmt.Errorf("%w: session %s is being modified by another request", domain.ErrServiceUnavailable, sessionID)
	}
	return func() {
		if err := s.cfg.Lock.Release(ctx, name); err != nil {
			s.logger.Warn("failed to release session lock", "session_id", sessionID, "error", err)
		}
	}, nil
}
