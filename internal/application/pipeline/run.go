package pipeline

import (
	"github.com/google/uuid"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// State is a node of the orchestrator's state machine.
type State int

const (
	StateCapture State = iota
	StateLocalAnalyze
	StateRemoteAnalyze
	StatePatternDetect
	StateDecision
	StateReplay
	StateAbort
)

var stateNames = [...]string{"capture", "local_analyze", "remote_analyze", "pattern_detect", "decision", "replay", "abort"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether the machine stops at s.
func (s State) Terminal() bool {
	return s == StateReplay || s == StateAbort
}

// Run is the per-run context passed through every step. It replaces any shared state:
// two runs never see each other's data.
type Run struct {
	ID       string
	Platform string
	Settings domain.PageSettings
	Source   ports.ContentSource
	Trail    *domain.Trail

	Capture  domain.Capture
	Baseline domain.AnalysisResult
	Analysis domain.AnalysisResult
	Pattern  *domain.PatternResult
	Verdict  domain.Verdict
	History  []State

	provider ports.RiskProvider
}

// NewRun snapshots settings and starts a fresh trail.
func NewRun(platform string, settings domain.PageSettings, source ports.ContentSource) *Run {
	return &Run{
		ID:       uuid.NewString(),
		Platform: platform,
		Settings: settings,
		Source:   source,
		Trail:    domain.NewTrail(),
	}
}

// Review builds what the decision surface shows.
func (r *Run) Review() domain.Review {
	return domain.Review{
		Platform: r.Platform,
		Text:     r.Capture.Text,
		Analysis: r.Analysis,
		Pattern:  r.Pattern,
		Steps:    r.Trail.Steps(),
	}
}
