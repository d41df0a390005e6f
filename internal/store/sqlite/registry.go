package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"storeplane/internal/store"
)

// Registry is the SQLite-backed implementation of store.Registry.
type Registry struct {
	conn  *sql.DB
	audit store.AuditLog
	log   *slog.Logger
}

// ErrNotFound is returned by Get when no store matches the given id.
var ErrNotFound = store.ErrNotFound

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Create inserts a store at status Queued.
func (r *Registry) Create(ctx context.Context, fields store.CreateFields) (*store.Store, error) {
	now := time.Now().UTC()
	s := &store.Store{
		ID:          fields.ID,
		Name:        fields.Name,
		Engine:      fields.Engine,
		Status:      store.StatusQueued,
		Namespace:   fields.ID,
		HelmRelease: fields.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO stores (id, name, engine, status, namespace, helm_release, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.conn.ExecContext(ctx, query,
		s.ID, s.Name, s.Engine, s.Status, s.Namespace, s.HelmRelease, iso(now), iso(now),
	); err != nil {
		return nil, fmt.Errorf("insert store: %w", err)
	}

	r.appendAudit(ctx, &s.ID, store.AuditCreate, fmt.Sprintf("name=%s engine=%s", s.Name, s.Engine))

	return s, nil
}

// Get returns a store by id.
func (r *Registry) Get(ctx context.Context, id string) (*store.Store, error) {
	query := `
		SELECT id, name, engine, status, store_url, admin_url, error_message,
		       namespace, helm_release, created_at, updated_at
		FROM stores WHERE id = ?
	`
	row := r.conn.QueryRowContext(ctx, query, id)
	s, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns all stores, newest first.
func (r *Registry) List(ctx context.Context) ([]*store.Store, error) {
	query := `
		SELECT id, name, engine, status, store_url, admin_url, error_message,
		       namespace, helm_release, created_at, updated_at
		FROM stores ORDER BY created_at DESC
	`
	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []*store.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// ActiveCount returns the number of stores not in {deleted, failed}.
func (r *Registry) ActiveCount(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM stores WHERE status NOT IN (?, ?)`
	var count int64
	err := r.conn.QueryRowContext(ctx, query, store.StatusDeleted, store.StatusFailed).Scan(&count)
	return count, err
}

// UpdateStatus transitions a store's status and optional error message.
func (r *Registry) UpdateStatus(ctx context.Context, id string, status store.Status, errMsg *string) error {
	now := iso(time.Now())
	query := `UPDATE stores SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, query, status, errMsg, now, id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	details := fmt.Sprintf("status=%s", status)
	if errMsg != nil {
		details = fmt.Sprintf("%s error=%s", details, *errMsg)
	}
	r.appendAudit(ctx, &id, store.AuditStatusChange, details)
	return nil
}

// MarkReady clears any error, sets URLs, and transitions to Ready.
func (r *Registry) MarkReady(ctx context.Context, id, storeURL, adminURL string) error {
	now := iso(time.Now())
	query := `
		UPDATE stores
		SET status = ?, store_url = ?, admin_url = ?, error_message = NULL, updated_at = ?
		WHERE id = ?
	`
	res, err := r.conn.ExecContext(ctx, query, store.StatusReady, storeURL, adminURL, now, id)
	if err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	r.appendAudit(ctx, &id, store.AuditStatusChange, fmt.Sprintf("status=%s store_url=%s", store.StatusReady, storeURL))
	return nil
}

// MarkDeleted transitions a store to Deleted.
func (r *Registry) MarkDeleted(ctx context.Context, id string) error {
	now := iso(time.Now())
	query := `UPDATE stores SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.conn.ExecContext(ctx, query, store.StatusDeleted, now, id)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	r.appendAudit(ctx, &id, store.AuditDelete, "status=deleted")
	return nil
}

// RecentFailures returns the n most recently failed stores.
func (r *Registry) RecentFailures(ctx context.Context, n int) ([]*store.Store, error) {
	query := `
		SELECT id, name, engine, status, store_url, admin_url, error_message,
		       namespace, helm_release, created_at, updated_at
		FROM stores WHERE status = ? ORDER BY updated_at DESC LIMIT ?
	`
	rows, err := r.conn.QueryContext(ctx, query, store.StatusFailed, n)
	if err != nil {
		return nil, fmt.Errorf("recent failures: %w", err)
	}
	defer rows.Close()

	var stores []*store.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// StatusHistogram counts stores grouped by status.
func (r *Registry) StatusHistogram(ctx context.Context) (store.StatusHistogram, error) {
	query := `SELECT status, COUNT(*) FROM stores GROUP BY status`
	rows, err := r.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("status histogram: %w", err)
	}
	defer rows.Close()

	hist := store.StatusHistogram{}
	for rows.Next() {
		var status store.Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		hist[status] = count
	}
	return hist, rows.Err()
}

// ProvisioningStats summarizes updated_at-created_at across ready stores.
func (r *Registry) ProvisioningStats(ctx context.Context) (*store.ProvisioningStats, error) {
	query := `SELECT created_at, updated_at FROM stores WHERE status = ?`
	rows, err := r.conn.QueryContext(ctx, query, store.StatusReady)
	if err != nil {
		return nil, fmt.Errorf("provisioning stats: %w", err)
	}
	defer rows.Close()

	stats := &store.ProvisioningStats{}
	var total float64
	first := true
	for rows.Next() {
		var createdStr, updatedStr string
		if err := rows.Scan(&createdStr, &updatedStr); err != nil {
			return nil, err
		}
		dur := parseTime(updatedStr).Sub(parseTime(createdStr)).Seconds()
		stats.Count++
		total += dur
		if first || dur < stats.MinDurationSecs {
			stats.MinDurationSecs = dur
		}
		if first || dur > stats.MaxDurationSecs {
			stats.MaxDurationSecs = dur
		}
		first = false
	}
	if stats.Count > 0 {
		stats.AvgDurationSecs = total / float64(stats.Count)
	}
	return stats, rows.Err()
}

// Ping verifies the connection is alive.
func (r *Registry) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}

func (r *Registry) appendAudit(ctx context.Context, storeID *string, action store.AuditAction, details string) {
	if r.audit == nil {
		return
	}
	// Audit is best-effort write-through: a failure here must not roll back
	// the mutation that already committed above, but it is logged so the
	// gap is visible.
	if err := r.audit.Append(ctx, storeID, action, details); err != nil {
		id := ""
		if storeID != nil {
			id = *storeID
		}
		r.log.Error("append audit failed", "store_id", id, "action", action, "err", err)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStore(row rowScanner) (*store.Store, error) {
	var s store.Store
	var storeURL, adminURL, errMsg sql.NullString
	var createdStr, updatedStr string

	err := row.Scan(
		&s.ID, &s.Name, &s.Engine, &s.Status, &storeURL, &adminURL, &errMsg,
		&s.Namespace, &s.HelmRelease, &createdStr, &updatedStr,
	)
	if err != nil {
		return nil, err
	}

	if storeURL.Valid {
		s.StoreURL = &storeURL.String
	}
	if adminURL.Valid {
		s.AdminURL = &adminURL.String
	}
	if errMsg.Valid {
		s.ErrorMessage = &errMsg.String
	}
	s.CreatedAt = parseTime(createdStr)
	s.UpdatedAt = parseTime(updatedStr)

	return &s, nil
}
