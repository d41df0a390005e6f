// Package sqlite implements store.Registry and store.AuditLog on top of an
// embedded, single-writer SQLite database opened in WAL (journaling) mode.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"storeplane/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaFS embed.FS

// DB wraps the shared *sql.DB used by both the Registry and the AuditLog.
// A single *sql.DB is intentional: SQLite in WAL mode allows one writer and
// many concurrent readers, matching the control plane's single-writer design.
type DB struct {
	conn *sql.DB
}

// Open creates (if necessary) the parent directory and opens the database
// file. It does not apply the schema: call Migrate explicitly, typically
// gated behind a -migrate startup flag, before using the returned handle
// against a fresh database.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows only one writer; cap the pool so database/sql never hands
	// out a second concurrent write connection.
	conn.SetMaxOpenConns(1)

	return &DB{conn: conn}, nil
}

// Migrate applies schema.sql. Every statement in it is idempotent
// (CREATE TABLE/INDEX IF NOT EXISTS), so running it against an
// already-migrated database is a no-op.
func (db *DB) Migrate() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(string(schema))
	return err
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Registry returns a store.Registry backed by this database. audit receives
// best-effort writes for every mutation; a nil audit disables them. log may
// be nil, in which case a default logger is used to report audit-append
// failures.
func (db *DB) Registry(audit store.AuditLog, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{conn: db.conn, audit: audit, log: log}
}

// AuditLog returns a store.AuditLog backed by this database.
func (db *DB) AuditLog() *AuditLog {
	return &AuditLog{conn: db.conn}
}
