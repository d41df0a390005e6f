// Package provisioner drives a store through the create-provision-ready
// and delete lifecycles, coordinating the registry, the engine strategy,
// the chart deployer, the cluster inspector, and the operation lock.
package provisioner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storeplane/internal/chartdeploy"
	"storeplane/internal/clusterinspect"
	"storeplane/internal/engine"
	"storeplane/internal/lock"
	"storeplane/internal/observability"
	"storeplane/internal/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storeplane/provisioner")

const (
	kindProvisioning = "provisioning"
	kindDeleting     = "deleting"

	maxReadinessAttempts = 60
	pollInterval         = 5 * time.Second
	defaultTimeout       = 600 * time.Second
)

// Provisioner orchestrates store lifecycle workflows.
type Provisioner struct {
	registry  store.Registry
	engines   *engine.Registry
	deployer  chartdeploy.Deployer
	inspector clusterinspect.Inspector
	lock      *lock.StoreLock
	log       *slog.Logger

	// Timeout bounds a single provision workflow end to end. Zero means
	// the 600s default.
	Timeout time.Duration
}

// New builds a Provisioner. log may be nil, in which case a discard logger
// is used.
func New(
	registry store.Registry,
	engines *engine.Registry,
	deployer chartdeploy.Deployer,
	inspector clusterinspect.Inspector,
	storeLock *lock.StoreLock,
	log *slog.Logger,
) *Provisioner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return &Provisioner{
		registry:  registry,
		engines:   engines,
		deployer:  deployer,
		inspector: inspector,
		lock:      storeLock,
		log:       log,
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func (p *Provisioner) timeout() time.Duration {
	if p.Timeout <= 0 {
		return defaultTimeout
	}
	return p.Timeout
}

// OperationStatus returns the kind currently held for a store id, or
// ("", false) if no operation is in flight.
func (p *Provisioner) OperationStatus(storeID string) (string, bool) {
	return p.lock.Kind(storeID)
}

// Provision runs the create-provision-ready workflow for storeID. If an
// operation is already in flight for this id, it returns quietly: this is
// the idempotent fire-and-forget path invoked after create and retry.
func (p *Provisioner) Provision(ctx context.Context, storeID string) {
	if !p.lock.TryAcquire(storeID, kindProvisioning) {
		return
	}
	defer p.lock.Release(storeID)

	ctx, span := tracer.Start(ctx, "provision", trace.WithAttributes(attribute.String("store.id", storeID)))
	start := time.Now()
	engineTag, outcome := "unknown", "failed"
	defer func() {
		observability.ProvisionDuration.Record(context.Background(), time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("engine", engineTag), attribute.String("outcome", outcome)))
		span.End()
	}()

	workCtx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	log := p.log.With("store_id", storeID, "op", kindProvisioning)

	s, err := p.registry.Get(workCtx, storeID)
	if err != nil {
		log.Error("provision: failed to load store", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	engineTag = string(s.Engine)
	span.SetAttributes(attribute.String("store.engine", engineTag))

	eng, ok := p.engines.Resolve(string(s.Engine))
	if !ok {
		reason := fmt.Sprintf("unknown engine: %s", s.Engine)
		p.fail(ctx, storeID, reason, log)
		span.SetStatus(codes.Error, reason)
		return
	}
	if res := eng.Validate(); !res.Valid {
		p.fail(ctx, storeID, res.Error, log)
		span.SetStatus(codes.Error, res.Error)
		return
	}

	if err := p.registry.UpdateStatus(ctx, storeID, store.StatusProvisioning, nil); err != nil {
		log.Error("provision: failed to mark provisioning", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	exists, err := p.deployer.ReleaseExists(workCtx, storeID, storeID)
	if err != nil {
		reason := fmt.Sprintf("Helm command failed: %s", err)
		p.fail(ctx, storeID, reason, log)
		span.SetStatus(codes.Error, reason)
		return
	}
	if !exists {
		if err := p.deployer.Install(workCtx, storeID, storeID, eng.ChartPath(), eng.Values(storeID)); err != nil {
			if workCtx.Err() != nil {
				p.fail(ctx, storeID, "Provisioning timed out", log)
				span.SetStatus(codes.Error, "timed out")
				return
			}
			reason := fmt.Sprintf("Helm command failed: %s", err)
			p.fail(ctx, storeID, reason, log)
			span.SetStatus(codes.Error, reason)
			return
		}
	}

	if err := p.pollUntilReady(ctx, workCtx, storeID, eng, log); err != nil {
		p.fail(ctx, storeID, err.Error(), log)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	outcome = "success"
}

// pollUntilReady runs the readiness loop described in §4.5 step 6. ctx is
// the detached outer context used to persist the final result; workCtx
// carries the overall provisioning deadline.
func (p *Provisioner) pollUntilReady(ctx context.Context, workCtx context.Context, storeID string, eng engine.Engine, log *slog.Logger) error {
	for attempt := 1; attempt <= maxReadinessAttempts; attempt++ {
		if workCtx.Err() != nil {
			return errTimeout{}
		}

		attemptCtx, attemptSpan := tracer.Start(workCtx, "readiness_poll_attempt", trace.WithAttributes(
			attribute.String("store.id", storeID),
			attribute.String("store.engine", eng.Name()),
			attribute.Int("attempt", attempt),
		))

		failed, podName, reason, err := p.inspector.AnyPodFailed(attemptCtx, storeID)
		if err != nil {
			log.Warn("provision: pod status check failed", "err", err)
		} else if failed {
			events, _ := p.inspector.Events(attemptCtx, storeID, 5)
			attemptSpan.SetStatus(codes.Error, "pod failed")
			attemptSpan.End()
			return fmt.Errorf("Pods failed: %s (%s). Events: %s", podName, reason, strings.Join(events, "; "))
		}

		ready, err := p.inspector.AllPodsReady(attemptCtx, storeID)
		if err != nil {
			log.Warn("provision: readiness check failed", "err", err)
		} else if ready {
			attemptSpan.SetAttributes(attribute.Bool("ready", true))
			attemptSpan.End()
			storeURL, adminURL := eng.URLs(storeID)
			if err := p.registry.MarkReady(ctx, storeID, storeURL, adminURL); err != nil {
				return fmt.Errorf("failed to mark ready: %w", err)
			}
			return nil
		}
		attemptSpan.End()

		if attempt == maxReadinessAttempts {
			break
		}

		select {
		case <-time.After(pollInterval):
		case <-workCtx.Done():
			return errTimeout{}
		}
	}
	return errTimeout{}
}

type errTimeout struct{}

func (errTimeout) Error() string { return "Provisioning timed out" }

func (p *Provisioner) fail(ctx context.Context, storeID, reason string, log *slog.Logger) {
	log.Warn("provision: failed", "reason", reason)
	if err := p.registry.UpdateStatus(ctx, storeID, store.StatusFailed, &reason); err != nil {
		log.Error("provision: failed to record failure", "err", err)
	}
}

// Delete synchronously claims the operation lock, returning an error if an
// operation is already in flight. On success it spawns the actual teardown
// workflow in the background and returns immediately so the caller (the
// API handler) can respond before teardown completes.
func (p *Provisioner) Delete(ctx context.Context, storeID string) error {
	if !p.lock.TryAcquire(storeID, kindDeleting) {
		return errOperationInProgress{}
	}

	go p.runDelete(context.WithoutCancel(ctx), storeID)
	return nil
}

// errOperationInProgress reports that an operation is already in flight.
type errOperationInProgress struct{}

func (errOperationInProgress) Error() string { return "operation already in progress" }

// IsOperationInProgress reports whether err is the in-progress sentinel
// returned by Delete.
func IsOperationInProgress(err error) bool {
	_, ok := err.(errOperationInProgress)
	return ok
}

func (p *Provisioner) runDelete(ctx context.Context, storeID string) {
	defer p.lock.Release(storeID)

	ctx, span := tracer.Start(ctx, "delete", trace.WithAttributes(attribute.String("store.id", storeID)))
	defer span.End()
	if s, err := p.registry.Get(ctx, storeID); err == nil {
		span.SetAttributes(attribute.String("store.engine", string(s.Engine)))
	}

	log := p.log.With("store_id", storeID, "op", kindDeleting)

	if err := p.registry.UpdateStatus(ctx, storeID, store.StatusDeleting, nil); err != nil {
		log.Error("delete: failed to mark deleting", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}

	if err := p.deployer.Uninstall(ctx, storeID, storeID); err != nil {
		log.Warn("delete: helm uninstall failed, continuing to namespace delete", "err", err)
	}

	if err := p.inspector.DeleteNamespace(ctx, storeID); err != nil {
		reason := fmt.Sprintf("Delete failed: %s", err)
		if uerr := p.registry.UpdateStatus(ctx, storeID, store.StatusFailed, &reason); uerr != nil {
			log.Error("delete: failed to record failure", "err", uerr)
		}
		span.SetStatus(codes.Error, reason)
		return
	}

	if err := p.registry.MarkDeleted(ctx, storeID); err != nil {
		log.Error("delete: failed to mark deleted", "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
