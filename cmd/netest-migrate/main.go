// Command netest-migrate bulk-copies sessions from the filesystem
// AnnotationStore backend into SQLite, for operators moving off the
// default zero-dependency persistence.backend onto something queryable.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/netest/netest-core/internal/adapters/driven/storage/migrate"
)

func main() {
	fsDir := flag.String("fs-dir", "./data/sessions", "filesystem store directory to migrate from")
	sqlitePath := flag.String("sqlite-path", "./data/netest.db", "destination SQLite database file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	result, err := migrate.FilesystemToSQLite(context.Background(), *fsDir, *sqlitePath, logger)
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	logger.Info("migration complete", "sessions_migrated", result.SessionsMigrated, "errors", len(result.Errors))
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
