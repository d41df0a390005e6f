package engine

// Config carries the values needed to construct the built-in engines.
type Config struct {
	ChartPath  string
	BaseDomain string
	AdminUser  string
	AdminEmail string
}

// NewDefaultRegistry builds the Registry the controller wires at startup:
// WooCommerce fully implemented, Medusa registered but unavailable.
func NewDefaultRegistry(cfg Config) *Registry {
	return NewRegistry(
		NewWooCommerce(cfg.ChartPath, cfg.BaseDomain, cfg.AdminUser, cfg.AdminEmail),
		NewMedusa(),
	)
}
