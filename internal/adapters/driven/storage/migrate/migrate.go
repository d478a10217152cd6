// Package migrate bulk-copies filesystem-backend sessions into a SQLite
// database, modeled on the teacher's Connect+InitSchema bootstrap
// sequencing: open the destination, apply its schema, then replay every
// session found on disk through CreateSession/SeedAnnotations and copy its
// audit log rows as recorded.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/netest/netest-core/internal/adapters/driven/storage/filesystem"
	"github.com/netest/netest-core/internal/adapters/driven/storage/sqlite"
	"github.com/netest/netest-core/internal/core/domain"
)

// Result summarizes one migration run.
type Result struct {
	SessionsMigrated int
	Errors           []error
}

// FilesystemToSQLite reads every session under fsDir and inserts it into
// the SQLite database at sqlitePath, preserving annotations and audit
// history. Sessions that already exist in the destination are skipped
// rather than overwritten.
func FilesystemToSQLite(ctx context.Context, fsDir, sqlitePath string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	src, err := filesystem.NewStore(fsDir)
	if err != nil {
		return nil, fmt.Errorf("open filesystem source: %w", err)
	}
	defer src.Close()

	db, err := sqlite.Connect(ctx, sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite destination: %w", err)
	}
	defer db.Close()
	dst := sqlite.NewStore(db)

	sessions, err := src.ListSessions(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list source sessions: %w", err)
	}

	result := &Result{}
	for _, session := range sessions {
		if err := migrateOne(ctx, src, dst, db, session); err != nil {
			logger.Error("session migration failed", "session_id", session.SessionID, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("session %s: %w", session.SessionID, err))
			continue
		}
		result.SessionsMigrated++
		logger.Info("session migrated", "session_id", session.SessionID)
	}

	return result, nil
}

func migrateOne(ctx context.Context, src *filesystem.Store, dst *sqlite.Store, db *sqlite.DB, session *domain.Session) error {
	if _, err := dst.GetSession(ctx, session.SessionID); err == nil {
		return nil // already present, skip
	}

	record, err := src.GetSessionRecord(ctx, session.SessionID)
	if err != nil {
		return fmt.Errorf("read source record: %w", err)
	}

	if err := dst.CreateSession(ctx, record.Session); err != nil {
		return fmt.Errorf("create destination session: %w", err)
	}

	if len(record.Annotations) > 0 {
		if err := dst.SeedAnnotations(ctx, session.SessionID, record.Annotations); err != nil {
			return fmt.Errorf("seed annotations: %w", err)
		}
	}

	for _, e := range record.AuditLog {
		from, _ := json.Marshal(e.FromOffsets)
		to, _ := json.Marshal(e.ToOffsets)
		if _, err := db.ExecContext(ctx, `INSERT INTO audit_log (session_id, strategy_id, action, from_status, to_status,
			from_code, to_code, from_offsets, to_offsets, comment, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			session.SessionID, e.StrategyID, string(e.Action), string(e.FromStatus), string(e.ToStatus),
			string(e.FromCode), string(e.ToCode), string(from), string(to), e.Comment, e.Timestamp); err != nil {
			return fmt.Errorf("copy audit entry for %s: %w", e.StrategyID, err)
		}
	}

	return nil
}
