package engine

// Medusa is a placeholder strategy for the Medusa commerce engine. The
// chart is not yet published, so Validate always fails; callers surface
// this as ENGINE_UNAVAILABLE rather than attempting a doomed provision.
type Medusa struct{}

// NewMedusa builds the Medusa engine stub.
func NewMedusa() *Medusa { return &Medusa{} }

func (m *Medusa) Name() string      { return "medusa" }
func (m *Medusa) ChartPath() string { return "" }

func (m *Medusa) Values(storeID string) map[string]string { return nil }

func (m *Medusa) URLs(storeID string) (storeURL, adminURL string) { return "", "" }

func (m *Medusa) Validate() ValidationResult {
	return ValidationResult{Valid: false, Error: "medusa engine is not yet available"}
}
