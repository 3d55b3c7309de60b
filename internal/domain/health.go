package domain

// HealthStatus is the outcome of one doctor check.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

// Doctor check names, in the order the report lists them.
const (
	CheckConfigFile   = "Config file"
	CheckConfigValues = "Config values"
	CheckPlatforms    = "Platforms"
	CheckProvider     = "Provider"
	CheckBrowser      = "Browser"
)

// HealthCheck is one line of the doctor report: whether the config loads and validates,
// whether the platform adapters are usable, whether the chosen provider can be reached,
// or whether a Chromium binary is available for browse.
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport is the full doctor output.
type HealthReport struct {
	Checks []HealthCheck
}

// Worst returns the most severe status in the report. An empty report is ok.
func (r HealthReport) Worst() HealthStatus {
	worst := HealthOK
	for _, c := range r.Checks {
		switch c.Status {
		case HealthError:
			return HealthError
		case HealthWarn:
			worst = HealthWarn
		}
	}
	return worst
}
