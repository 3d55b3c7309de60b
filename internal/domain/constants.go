package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for files that may hold credentials (rw-------)
	SecureFilePermissions = 0o600
)

// Timing defaults for the interception pipeline.
const (
	// DefaultDebounce is the quiet period after the last DOM mutation before a rebind scan.
	DefaultDebounce = 500 * time.Millisecond
	// DefaultCooldown is how long a control lets replayed clicks through after approval.
	DefaultCooldown = 200 * time.Millisecond
	// DefaultBridgeTimeout bounds how long the page side waits for a bridge response.
	DefaultBridgeTimeout = 15 * time.Second
	// DefaultHTTPClientTimeout is the timeout for REST provider requests
	DefaultHTTPClientTimeout = 20 * time.Second
)

// Settings defaults, taken from the desktop client.
const (
	DefaultAPIURL     = "http://localhost:8000/api/v1"
	DefaultLLMModel   = "gemini-1.5-flash-latest"
	DefaultLLMBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultServerAddr = ":8000"
	DefaultStartURL   = "https://x.com"
)

// Heuristic scoring constants.
const (
	BaseRiskScore       = 0.08
	LongTextThreshold   = 240
	LongTextIncrement   = 0.12
	ToneIncrement       = 0.12
	HostileIncrement    = 0.20
	ReplyIncrement      = 0.08
	LinkIncrement       = 0.05
	LowRiskCeiling      = 0.25
	MediumRiskCeiling   = 0.45
	PatternBaseConf     = 0.35
	PatternStepConf     = 0.12
	PatternMaxConf      = 0.85
	PatternNoneConf     = 0.10
	TimestampFormat     = time.RFC3339
)
