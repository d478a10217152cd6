package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
)

// Store implements driven.AnnotationStore over a SQLite file, following
// the same query shapes as the Postgres session/document stores, adapted
// to database/sql + mattn/go-sqlite3 placeholders.
type Store struct {
	db *DB
}

var _ driven.AnnotationStore = (*Store)(nil)

// NewStore wraps an already-connected *DB.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

func marshalOffsets(offsets []domain.Offset) string {
	if offsets == nil {
		offsets = []domain.Offset{}
	}
	b, _ := json.Marshal(offsets)
	return string(b)
}

func unmarshalOffsets(s string) []domain.Offset {
	var offsets []domain.Offset
	_ = json.Unmarshal([]byte(s), &offsets)
	return offsets
}

func marshalStrings(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	b, _ := json.Marshal(ss)
	return string(b)
}

func unmarshalStrings(s string) []string {
	var ss []string
	_ = json.Unmarshal([]byte(s), &ss)
	return ss
}

// CreateSession persists a new session record with no annotations yet.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, source_text, target_text, model_version, degraded, truncated, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.SessionID, session.SourceText, session.TargetText, session.ModelVersion,
		session.Degraded, session.Truncated, session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session's metadata by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_text, target_text, model_version, degraded, truncated, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(
		&session.SessionID, &session.SourceText, &session.TargetText, &session.ModelVersion,
		&session.Degraded, &session.Truncated, &session.CreatedAt, &session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &session, nil
}

// GetSessionRecord retrieves the full record: session, annotations, audit log.
func (s *Store) GetSessionRecord(ctx context.Context, id string) (*domain.SessionRecord, error) {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	annotations, err := s.ListAnnotations(ctx, id)
	if err != nil {
		return nil, err
	}
	auditLog, err := s.GetAuditLog(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.SessionRecord{Session: session, Annotations: annotations, AuditLog: auditLog}, nil
}

// ListSessions lists session metadata, most recently created first.
func (s *Store) ListSessions(ctx context.Context, limit, offset int) ([]*domain.Session, error) {
	query := `SELECT id, source_text, target_text, model_version, degraded, truncated, created_at, updated_at
		FROM sessions ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		var session domain.Session
		if err := rows.Scan(
			&session.SessionID, &session.SourceText, &session.TargetText, &session.ModelVersion,
			&session.Degraded, &session.Truncated, &session.CreatedAt, &session.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

// DeleteSession purges a session and everything owned by it (cascades via FK).
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// SeedAnnotations inserts predictions that don't already exist for this
// session, keyed by strategy_id; a prediction already on record is left
// untouched. Idempotent and writes no audit entry, since seeding is not a
// status transition (spec.md §4.6).
func (s *Store) SeedAnnotations(ctx context.Context, sessionID string, predictions []*domain.StrategyPrediction) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, p := range predictions {
			if err := insertAnnotationIfAbsent(ctx, tx, sessionID, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertAnnotation(ctx context.Context, tx *sql.Tx, sessionID string, p *domain.StrategyPrediction) error {
	var originalCode string
	if p.OriginalCode != nil {
		originalCode = string(*p.OriginalCode)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO annotations (
			strategy_id, session_id, code, confidence, evidence,
			target_offsets, source_offsets, origin, status, original_code,
			comment, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.StrategyID, sessionID, string(p.Code), p.Confidence, marshalStrings(p.Evidence),
		marshalOffsets(p.TargetOffsets), marshalOffsets(p.SourceOffsets), string(p.Origin), string(p.Status), originalCode,
		p.Comment, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert annotation %s: %w", p.StrategyID, err)
	}
	return nil
}

// insertAnnotationIfAbsent is insertAnnotation's idempotent counterpart for
// seeding: a strategy_id collision is treated as "already seeded," not an
// error.
func insertAnnotationIfAbsent(ctx context.Context, tx *sql.Tx, sessionID string, p *domain.StrategyPrediction) error {
	var originalCode string
	if p.OriginalCode != nil {
		originalCode = string(*p.OriginalCode)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO annotations (
			strategy_id, session_id, code, confidence, evidence,
			target_offsets, source_offsets, origin, status, original_code,
			comment, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.StrategyID, sessionID, string(p.Code), p.Confidence, marshalStrings(p.Evidence),
		marshalOffsets(p.TargetOffsets), marshalOffsets(p.SourceOffsets), string(p.Origin), string(p.Status), originalCode,
		p.Comment, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("seed annotation %s: %w", p.StrategyID, err)
	}
	return nil
}

func insertAuditEntry(ctx context.Context, tx *sql.Tx, sessionID string, e *domain.AuditEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (
			session_id, strategy_id, action, from_status, to_status,
			from_code, to_code, from_offsets, to_offsets, comment, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		sessionID, e.StrategyID, string(e.Action), string(e.FromStatus), string(e.ToStatus),
		string(e.FromCode), string(e.ToCode), marshalOffsets(e.FromOffsets), marshalOffsets(e.ToOffsets),
		e.Comment, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry for %s: %w", e.StrategyID, err)
	}
	return nil
}

func scanAnnotation(row interface {
	Scan(dest ...any) error
}) (*domain.StrategyPrediction, error) {
	var p domain.StrategyPrediction
	var code, origin, status string
	var evidence, targetOffsets, sourceOffsets, originalCode string

	if err := row.Scan(
		&p.StrategyID, &code, &p.Confidence, &evidence,
		&targetOffsets, &sourceOffsets, &origin, &status, &originalCode,
		&p.Comment, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Code = domain.StrategyCode(code)
	p.Origin = domain.AnnotationOrigin(origin)
	p.Status = domain.AnnotationStatus(status)
	p.Evidence = unmarshalStrings(evidence)
	p.TargetOffsets = unmarshalOffsets(targetOffsets)
	p.SourceOffsets = unmarshalOffsets(sourceOffsets)
	if originalCode != "" {
		oc := domain.StrategyCode(originalCode)
		p.OriginalCode = &oc
	}
	return &p, nil
}

// GetAnnotation retrieves one StrategyPrediction by ID.
func (s *Store) GetAnnotation(ctx context.Context, sessionID, strategyID string) (*domain.StrategyPrediction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT strategy_id, code, confidence, evidence, target_offsets, source_offsets,
			   origin, status, original_code, comment, created_at, updated_at
		FROM annotations WHERE session_id = ? AND strategy_id = ?
	`, sessionID, strategyID)

	p, err := scanAnnotation(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAnnotationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query annotation: %w", err)
	}
	return p, nil
}

// ListAnnotations lists every StrategyPrediction in a session.
func (s *Store) ListAnnotations(ctx context.Context, sessionID string) ([]*domain.StrategyPrediction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy_id, code, confidence, evidence, target_offsets, source_offsets,
			   origin, status, original_code, comment, created_at, updated_at
		FROM annotations WHERE session_id = ? ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var predictions []*domain.StrategyPrediction
	for rows.Next() {
		p, err := scanAnnotation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// ApplyTransition validates and applies a status transition as a single
// atomic unit: the annotation row update and the audit append commit or
// roll back together.
func (s *Store) ApplyTransition(ctx context.Context, sessionID string, entry *domain.AuditEntry, updated *domain.StrategyPrediction) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		var originalCode string
		if updated.OriginalCode != nil {
			originalCode = string(*updated.OriginalCode)
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE annotations SET
				code = ?, status = ?, original_code = ?,
				target_offsets = ?, updated_at = ?
			WHERE session_id = ? AND strategy_id = ?
		`,
			string(updated.Code), string(updated.Status), originalCode,
			marshalOffsets(updated.TargetOffsets), updated.UpdatedAt,
			sessionID, updated.StrategyID,
		)
		if err != nil {
			return fmt.Errorf("update annotation: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return domain.ErrAnnotationNotFound
		}
		return insertAuditEntry(ctx, tx, sessionID, entry)
	})
}

// CreateAnnotation inserts a new, human-created StrategyPrediction.
func (s *Store) CreateAnnotation(ctx context.Context, sessionID string, prediction *domain.StrategyPrediction, entry *domain.AuditEntry) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := insertAnnotation(ctx, tx, sessionID, prediction); err != nil {
			return err
		}
		return insertAuditEntry(ctx, tx, sessionID, entry)
	})
}

// GetAuditLog retrieves the full append-only audit log for a session.
func (s *Store) GetAuditLog(ctx context.Context, sessionID string) ([]*domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy_id, action, from_status, to_status, from_code, to_code,
			   from_offsets, to_offsets, comment, timestamp
		FROM audit_log WHERE session_id = ? ORDER BY timestamp ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var action, fromStatus, toStatus, fromCode, toCode, fromOffsets, toOffsets string
		if err := rows.Scan(
			&e.StrategyID, &action, &fromStatus, &toStatus, &fromCode, &toCode,
			&fromOffsets, &toOffsets, &e.Comment, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = domain.AuditAction(action)
		e.FromStatus = domain.AnnotationStatus(fromStatus)
		e.ToStatus = domain.AnnotationStatus(toStatus)
		e.FromCode = domain.StrategyCode(fromCode)
		e.ToCode = domain.StrategyCode(toCode)
		e.FromOffsets = unmarshalOffsets(fromOffsets)
		e.ToOffsets = unmarshalOffsets(toOffsets)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
