package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Registry.Get (and related lookups) when no
// store matches the given id.
var ErrNotFound = errors.New("store not found")

// CreateFields is the set of fields supplied by the API when creating a store.
// Status, timestamps, namespace, and helm release are assigned by the Registry.
type CreateFields struct {
	ID     string
	Name   string
	Engine Engine
}

// Registry is the durable store of Store records. Implementations must be a
// single-writer embedded database (see internal/store/sqlite).
type Registry interface {
	// Create inserts a store at status Queued and emits an audit "create" entry.
	Create(ctx context.Context, fields CreateFields) (*Store, error)

	// Get returns a store by id.
	Get(ctx context.Context, id string) (*Store, error)

	// List returns all stores, newest first.
	List(ctx context.Context) ([]*Store, error)

	// ActiveCount returns the number of stores not in {deleted, failed}.
	ActiveCount(ctx context.Context) (int64, error)

	// UpdateStatus transitions a store's status, optionally recording an error
	// message, and emits an audit "status_change" entry.
	UpdateStatus(ctx context.Context, id string, status Status, errMsg *string) error

	// MarkReady clears any error, sets URLs, and transitions to Ready.
	MarkReady(ctx context.Context, id, storeURL, adminURL string) error

	// MarkDeleted transitions a store to Deleted and emits an audit "delete" entry.
	MarkDeleted(ctx context.Context, id string) error

	// RecentFailures returns the n most recently failed stores.
	RecentFailures(ctx context.Context, n int) ([]*Store, error)

	// StatusHistogram counts stores grouped by status.
	StatusHistogram(ctx context.Context) (StatusHistogram, error)

	// ProvisioningStats summarizes updated_at-created_at across ready stores.
	ProvisioningStats(ctx context.Context) (*ProvisioningStats, error)

	// Ping verifies the database connection is alive.
	Ping(ctx context.Context) error
}

// AuditLog is the append-only event log. Failures to append must never roll
// back the triggering mutation (best-effort, at-least-once write-through).
type AuditLog interface {
	// Append records an event. storeID may be nil for store-independent events.
	Append(ctx context.Context, storeID *string, action AuditAction, details string) error

	// List returns the most recent entries, newest first, bounded to limit.
	List(ctx context.Context, limit int) ([]*AuditEntry, error)

	// ListFor returns all entries for a given store, newest first.
	ListFor(ctx context.Context, storeID string) ([]*AuditEntry, error)
}
