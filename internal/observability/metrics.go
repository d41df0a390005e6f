// Package observability provides OpenTelemetry instrumentation for tracing and metrics.
package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// meter is bound lazily: the otel package's default delegates to a no-op
// implementation until the first otel.SetMeterProvider call (from
// InitMetrics) and forwards to that first provider afterwards, so
// instrument creation at package init time is safe even though it runs
// before main() wires the real provider.
var meter = otel.Meter("storeplane")

// LockContentions counts StoreLock.TryAcquire calls that found an operation
// already in flight for the target store.
var LockContentions metric.Int64Counter

// ProvisionDuration records the end-to-end wall time of a completed
// Provision call, in seconds, labeled by engine and outcome.
var ProvisionDuration metric.Float64Histogram

func init() {
	var err error
	LockContentions, err = meter.Int64Counter(
		"storeplane.lock.contended_total",
		metric.WithDescription("operation lock acquisitions rejected because another operation was already in flight"),
	)
	if err != nil {
		panic("observability: failed to create lock.contended_total counter: " + err.Error())
	}

	ProvisionDuration, err = meter.Float64Histogram(
		"storeplane.provision.duration",
		metric.WithDescription("wall time of a completed provision workflow, in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic("observability: failed to create provision.duration histogram: " + err.Error())
	}
}

// InitMetrics initializes the OpenTelemetry metrics provider with a Prometheus exporter.
// It returns the HTTP handler for the /metrics endpoint and a shutdown function.
// The shutdown function should be called on application exit for graceful cleanup.
func InitMetrics() (http.Handler, func(context.Context) error, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)

	otel.SetMeterProvider(provider)

	return promhttp.Handler(), provider.Shutdown, nil
}

// RegisterActiveCountGauge wires storeplane.active_count as an observable
// gauge that calls countFn on every collection. It must be called after
// InitMetrics has set the real MeterProvider.
func RegisterActiveCountGauge(countFn func(context.Context) (int64, error)) error {
	_, err := otel.Meter("storeplane").Int64ObservableGauge(
		"storeplane.active_count",
		metric.WithDescription("current number of stores not in {deleted, failed}"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			n, err := countFn(ctx)
			if err != nil {
				return err
			}
			o.Observe(n)
			return nil
		}),
	)
	return err
}
