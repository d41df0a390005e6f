// Package main is the entry point for the storeplane controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storeplane/internal/chartdeploy"
	"storeplane/internal/clusterinspect"
	"storeplane/internal/config"
	"storeplane/internal/controller"
	"storeplane/internal/controller/handlers"
	"storeplane/internal/controller/middleware"
	"storeplane/internal/engine"
	"storeplane/internal/lock"
	"storeplane/internal/logger"
	"storeplane/internal/observability"
	"storeplane/internal/provisioner"
	"storeplane/internal/reconciler"
	"storeplane/internal/store/sqlite"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Apply the database schema before starting")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New()
	ctx := context.Background()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Error("Failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if *migrateFlag {
		log.Info("applying database schema")
		if err := db.Migrate(); err != nil {
			log.Error("Failed to migrate database", "err", err)
			os.Exit(1)
		}
	}

	audit := db.AuditLog()
	registry := db.Registry(audit, log)

	engines := engine.NewDefaultRegistry(engine.Config{
		ChartPath:  cfg.HelmChartPath,
		BaseDomain: cfg.BaseDomain,
		AdminUser:  cfg.WPAdminUser,
		AdminEmail: cfg.WPAdminEmail,
	})

	deployer := chartdeploy.NewHelmDeployer(cfg.ProvisionTimeout)
	inspector, err := clusterinspect.NewKubernetesInspector(cfg.Kubeconfig)
	if err != nil {
		log.Error("Failed to build cluster inspector", "err", err)
		os.Exit(1)
	}

	storeLock := lock.NewStoreLock()
	prov := provisioner.New(registry, engines, deployer, inspector, storeLock, log)
	prov.Timeout = cfg.ProvisionTimeout

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "storeplane-controller", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		log.Error("Failed to init tracing", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("Failed to shutdown tracer", "err", err)
		}
	}()

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Error("Failed to init metrics", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn("Failed to shutdown metrics", "err", err)
		}
	}()
	if err := observability.RegisterActiveCountGauge(registry.ActiveCount); err != nil {
		log.Error("Failed to register active_count gauge", "err", err)
		os.Exit(1)
	}

	h := handlers.New(registry, audit, engines, prov, cfg.MaxStores, cfg.NodeEnv, log)
	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMaxRequests, cfg.RateLimitMaxCreates)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, h, limiter, log, cfg.NodeEnv)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{Addr: ":9090", Handler: metricsMux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", "err", err)
		}
	}()
	defer metricsSrv.Shutdown(context.Background())

	go func() {
		log.Info("storeplane controller starting", "addr", addr)
		if err := srv.Run(ctx); err != nil {
			log.Error("server stopped", "err", err)
		}
	}()

	// Reconcile any store left mid-flight by a previous crash. The HTTP
	// server goroutine is already started, so /healthz can answer while
	// this runs; requests served before it finishes may still see stores
	// in their unreconciled state.
	rec := reconciler.New(registry, audit, engines, inspector, log)
	if err := rec.Run(ctx); err != nil {
		log.Error("reconciler run failed", "err", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down controller")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
		os.Exit(1)
	}
	log.Info("server exited properly")
}
