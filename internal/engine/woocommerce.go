package engine

import "fmt"

// WooCommerce provisions a WordPress+WooCommerce+MySQL stack via the
// woocommerce Helm chart.
type WooCommerce struct {
	chartPath  string
	baseDomain string
	adminUser  string
	adminEmail string
}

// NewWooCommerce builds the WooCommerce engine. chartPath points at the
// Helm chart on disk; baseDomain is the cluster's ingress suffix
// (store.id + "." + baseDomain forms the storefront host).
func NewWooCommerce(chartPath, baseDomain, adminUser, adminEmail string) *WooCommerce {
	return &WooCommerce{
		chartPath:  chartPath,
		baseDomain: baseDomain,
		adminUser:  adminUser,
		adminEmail: adminEmail,
	}
}

func (w *WooCommerce) Name() string      { return "woocommerce" }
func (w *WooCommerce) ChartPath() string { return w.chartPath }

// Values returns the chart values for a store. Fresh MySQL and WordPress
// admin passwords are minted on every call; callers provision exactly once
// per store.id so this never regenerates credentials for a live store.
func (w *WooCommerce) Values(storeID string) map[string]string {
	host := w.host(storeID)
	return map[string]string{
		"global.storeId":           storeID,
		"wordpress.ingress.host":   host,
		"wordpress.ingress.class":  "nginx",
		"wordpress.siteTitle":      storeID,
		"wordpress.admin.user":     w.adminUser,
		"wordpress.admin.email":    w.adminEmail,
		"wordpress.admin.password": generateSecret(12),
		"mysql.auth.rootPassword":  generateSecret(16),
		"mysql.auth.database":      "wordpress",
		"mysql.auth.username":      "wordpress",
		"mysql.auth.password":      generateSecret(16),
	}
}

// URLs returns the storefront and wp-admin URLs.
func (w *WooCommerce) URLs(storeID string) (storeURL, adminURL string) {
	storeURL = fmt.Sprintf("http://%s", w.host(storeID))
	return storeURL, storeURL + "/wp-admin"
}

// Validate reports WooCommerce as always available: it is the engine this
// control plane was built to run.
func (w *WooCommerce) Validate() ValidationResult {
	return ValidationResult{Valid: true}
}

func (w *WooCommerce) host(storeID string) string {
	return fmt.Sprintf("%s.%s", storeID, w.baseDomain)
}
