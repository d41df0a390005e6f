// Package reconciler converges persisted store state with cluster reality
// once at process startup, recovering from a crash mid-provision.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"storeplane/internal/clusterinspect"
	"storeplane/internal/engine"
	"storeplane/internal/store"
)

// Reconciler runs the startup recovery pass described in the component
// design: any store left in queued or provisioning when the process died
// is resolved to either ready or failed, never resumed automatically.
type Reconciler struct {
	registry  store.Registry
	audit     store.AuditLog
	engines   *engine.Registry
	inspector clusterinspect.Inspector
	log       *slog.Logger
}

// New builds a Reconciler.
func New(registry store.Registry, audit store.AuditLog, engines *engine.Registry, inspector clusterinspect.Inspector, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{registry: registry, audit: audit, engines: engines, inspector: inspector, log: log}
}

// Run lists every store and resolves those left mid-flight. It never
// returns an error: a single store's recovery failure is recorded on that
// store and reconciliation continues for the rest.
func (r *Reconciler) Run(ctx context.Context) error {
	stores, err := r.registry.List(ctx)
	if err != nil {
		return fmt.Errorf("reconciler: list stores: %w", err)
	}

	for _, s := range stores {
		if s.Status != store.StatusProvisioning && s.Status != store.StatusQueued {
			continue
		}
		r.recover(ctx, s)
	}
	return nil
}

func (r *Reconciler) recover(ctx context.Context, s *store.Store) {
	log := r.log.With("store_id", s.ID, "status", s.Status)

	ready, err := r.inspector.AllPodsReady(ctx, s.Namespace)
	if err != nil {
		reason := fmt.Sprintf("Recovery failed: %s", err)
		r.markFailed(ctx, s.ID, reason, log)
		return
	}

	if !ready {
		r.markFailed(ctx, s.ID, "API restarted during provisioning. Click retry to re-attempt.", log)
		return
	}

	eng, ok := r.engines.Resolve(string(s.Engine))
	if !ok {
		r.markFailed(ctx, s.ID, fmt.Sprintf("Recovery failed: unknown engine %s", s.Engine), log)
		return
	}
	storeURL, adminURL := eng.URLs(s.ID)

	if err := r.registry.MarkReady(ctx, s.ID, storeURL, adminURL); err != nil {
		log.Error("reconciler: failed to mark ready", "err", err)
		return
	}
	r.appendAudit(ctx, s.ID, "marked_ready")
	log.Info("reconciler: recovered store as ready")
}

func (r *Reconciler) markFailed(ctx context.Context, id, reason string, log *slog.Logger) {
	if err := r.registry.UpdateStatus(ctx, id, store.StatusFailed, &reason); err != nil {
		log.Error("reconciler: failed to record failure", "err", err)
		return
	}
	r.appendAudit(ctx, id, "marked_failed")
	log.Warn("reconciler: recovered store as failed", "reason", reason)
}

func (r *Reconciler) appendAudit(ctx context.Context, id, result string) {
	if r.audit == nil {
		return
	}
	_ = r.audit.Append(ctx, &id, store.AuditRecovery, fmt.Sprintf("result=%s", result))
}
