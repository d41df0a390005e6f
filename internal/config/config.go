// Package config handles environment variable loading for ports, database
// paths, cluster access, and tunables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the controller process.
type Config struct {
	// HTTP server port
	HTTPPort int

	// "production" or "development"; governs error response verbosity
	NodeEnv string

	// Path to the SQLite database file
	DBPath string

	// Filesystem path to the Helm chart directory
	HelmChartPath string

	// Path to a kubeconfig file; empty means in-cluster config
	Kubeconfig string

	// Domain suffix store hostnames are provisioned under
	BaseDomain string

	// Maximum number of non-terminal, non-failed stores allowed at once
	MaxStores int

	// Upper bound on a single provision workflow, end to end
	ProvisionTimeout time.Duration

	// Rate limiter window
	RateLimitWindow time.Duration

	// General API requests allowed per window per client IP
	RateLimitMaxRequests int

	// Store-creation requests allowed per window per client IP
	RateLimitMaxCreates int

	// WordPress admin username seeded into every provisioned store
	WPAdminUser string

	// WordPress admin email seeded into every provisioned store
	WPAdminEmail string
}

// IsProduction reports whether NodeEnv is "production".
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// Load reads configuration from environment variables, applying the
// defaults described in the external-interfaces contract.
func Load() (*Config, error) {
	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}

	nodeEnv := os.Getenv("NODE_ENV")
	if nodeEnv == "" {
		nodeEnv = "development"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./storeplane.db"
	}

	helmChartPath := os.Getenv("HELM_CHART_PATH")
	if helmChartPath == "" {
		helmChartPath = "./charts/woocommerce"
	}

	baseDomain := os.Getenv("BASE_DOMAIN")
	if baseDomain == "" {
		baseDomain = "127.0.0.1.nip.io"
	}

	maxStores, err := intEnv("MAX_STORES", 10)
	if err != nil {
		return nil, err
	}

	provisionTimeoutMs, err := intEnv("PROVISION_TIMEOUT_MS", 600_000)
	if err != nil {
		return nil, err
	}

	rateLimitWindowMs, err := intEnv("RATE_LIMIT_WINDOW_MS", 60_000)
	if err != nil {
		return nil, err
	}

	rateLimitMaxRequests, err := intEnv("RATE_LIMIT_MAX_REQUESTS", 30)
	if err != nil {
		return nil, err
	}

	rateLimitMaxCreates, err := intEnv("RATE_LIMIT_MAX_CREATES", 5)
	if err != nil {
		return nil, err
	}

	wpAdminUser := os.Getenv("WP_ADMIN_USER")
	if wpAdminUser == "" {
		wpAdminUser = "admin"
	}

	wpAdminEmail := os.Getenv("WP_ADMIN_EMAIL")
	if wpAdminEmail == "" {
		wpAdminEmail = "admin@example.com"
	}

	return &Config{
		HTTPPort:              port,
		NodeEnv:               nodeEnv,
		DBPath:                dbPath,
		HelmChartPath:         helmChartPath,
		Kubeconfig:            os.Getenv("KUBECONFIG"),
		BaseDomain:            baseDomain,
		MaxStores:             maxStores,
		ProvisionTimeout:      time.Duration(provisionTimeoutMs) * time.Millisecond,
		RateLimitWindow:       time.Duration(rateLimitWindowMs) * time.Millisecond,
		RateLimitMaxRequests:  rateLimitMaxRequests,
		RateLimitMaxCreates:   rateLimitMaxCreates,
		WPAdminUser:           wpAdminUser,
		WPAdminEmail:          wpAdminEmail,
	}, nil
}

func intEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return n, nil
}
