// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the interception pipeline and external
// adapters (infrastructure). The pipeline talks to the page, the risk providers, the
// decision surface and the configuration only through the interfaces declared here, so
// the same orchestrator runs against a live browser, a scripted in-memory page, a REST
// backend or a local heuristic.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., RiskProvider, Document, DecisionSurface)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/sns-guardian/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.sns-guardian/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// SettingsSource hands out the settings snapshot a pipeline run captures at start.
type SettingsSource interface {
	Settings() domain.Settings
}

// RiskProvider produces advanced risk analysis and pattern detection results.
// Each implementation wraps one backend: the local heuristic, a REST API or the LLM bridge.
type RiskProvider interface {
	Name() string
	Analyze(context.Context, domain.AnalysisRequest) (domain.AnalysisResult, error)
	DetectPattern(context.Context, domain.PatternRequest) (domain.PatternResult, error)
}

// ProviderFactory builds the provider selected by a run's settings snapshot.
type ProviderFactory interface {
	ForSettings(domain.PageSettings) (RiskProvider, error)
}

// ClickEvent is the capture-phase view of a click on a bound control.
type ClickEvent interface {
	PreventDefault()
	StopPropagation()
}

// Element is a node in the page. Key is stable for the node's lifetime and is what
// the binding table is keyed on.
type Element interface {
	Key() string
	Text() string
	// OnCapture registers a capture-phase click listener. The listener runs on the page loop.
	OnCapture(func(ClickEvent))
	// Click re-dispatches a native click, running the page's own handlers.
	Click()
}

// Document is the page the pipeline is attached to.
type Document interface {
	Hostname() string
	QueryAll(selector string) []Element
	// Observe calls notify on every subtree mutation until stop is called.
	Observe(notify func()) (stop func())
}

// ContentSource reads the pending post and its reply target from the page.
type ContentSource interface {
	Capture(context.Context) (domain.Capture, error)
}

// DecisionSurface renders a review and returns the user's choice exactly once.
type DecisionSurface interface {
	Decide(context.Context, domain.Review) (bool, error)
}

// ProgressIndicator shows that a run is in flight.
type ProgressIndicator interface {
	Start(message string) (stop func())
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
