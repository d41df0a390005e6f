package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storeplane/internal/store"
)

// AuditLog is the SQLite-backed implementation of store.AuditLog.
// Entries are append-only: no update or delete path is exposed.
type AuditLog struct {
	conn *sql.DB
}

// Append records an event. storeID may be nil for store-independent events.
func (a *AuditLog) Append(ctx context.Context, storeID *string, action store.AuditAction, details string) error {
	query := `INSERT INTO audit_log (store_id, action, details, created_at) VALUES (?, ?, ?, ?)`
	_, err := a.conn.ExecContext(ctx, query, storeID, action, details, iso(time.Now()))
	if err != nil {
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first, bounded to limit.
func (a *AuditLog) List(ctx context.Context, limit int) ([]*store.AuditEntry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}

	query := `SELECT id, store_id, action, details, created_at FROM audit_log ORDER BY id DESC LIMIT ?`
	rows, err := a.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

// ListFor returns all entries for a given store, newest first.
func (a *AuditLog) ListFor(ctx context.Context, storeID string) ([]*store.AuditEntry, error) {
	query := `SELECT id, store_id, action, details, created_at FROM audit_log WHERE store_id = ? ORDER BY id DESC`
	rows, err := a.conn.QueryContext(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list audit for store: %w", err)
	}
	defer rows.Close()

	return scanAuditRows(rows)
}

func scanAuditRows(rows *sql.Rows) ([]*store.AuditEntry, error) {
	var entries []*store.AuditEntry
	for rows.Next() {
		var e store.AuditEntry
		var storeID sql.NullString
		var createdStr string

		if err := rows.Scan(&e.ID, &storeID, &e.Action, &e.Details, &createdStr); err != nil {
			return nil, err
		}
		if storeID.Valid {
			e.StoreID = &storeID.String
		}
		e.CreatedAt = parseTime(createdStr)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
