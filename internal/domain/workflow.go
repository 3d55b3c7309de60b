package domain

import "time"

// StepID names one of the fixed workflow steps.
type StepID string

const (
	StepCapture  StepID = "capture"
	StepAnalysis StepID = "analysis"
	StepPattern  StepID = "pattern"
	StepReview   StepID = "review"
)

// StepStatus is the progress of a workflow step.
type StepStatus string

const (
	StatusPending StepStatus = "pending"
	StatusDone    StepStatus = "done"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// WorkflowStep is one row of the trail shown to the user.
type WorkflowStep struct {
	ID     StepID
	Label  string
	Status StepStatus
	Detail string
}

// TrailEntry is a single append-only record of a step transition.
type TrailEntry struct {
	Step   StepID
	Status StepStatus
	Detail string
	At     time.Time
}

var stepLabels = []struct {
	id    StepID
	label string
}{
	{StepCapture, "Capture input and reply target"},
	{StepAnalysis, "Risk analysis"},
	{StepPattern, "Discussion pattern detection"},
	{StepReview, "Review"},
}

// Trail tracks the workflow steps of a single run. It is not safe for concurrent use;
// a run owns its trail.
type Trail struct {
	steps   []WorkflowStep
	entries []TrailEntry
	now     func() time.Time
}

// NewTrail returns a trail with every step pending.
func NewTrail() *Trail {
	steps := make([]WorkflowStep, 0, len(stepLabels))
	for _, s := range stepLabels {
		steps = append(steps, WorkflowStep{ID: s.id, Label: s.label, Status: StatusPending})
	}
	return &Trail{steps: steps, now: time.Now}
}

// Mark moves a pending step to status. A step leaves pending only once;
// later marks return false and change nothing.
func (t *Trail) Mark(id StepID, status StepStatus, detail string) bool {
	for i := range t.steps {
		if t.steps[i].ID != id {
			continue
		}
		if t.steps[i].Status != StatusPending || status == StatusPending {
			return false
		}
		t.steps[i].Status = status
		t.steps[i].Detail = detail
		t.entries = append(t.entries, TrailEntry{Step: id, Status: status, Detail: detail, At: t.now()})
		return true
	}
	return false
}

// Step returns the current state of id.
func (t *Trail) Step(id StepID) (WorkflowStep, bool) {
	for _, step := range t.steps {
		if step.ID == id {
			return step, true
		}
	}
	return WorkflowStep{}, false
}

// Steps returns a copy of the steps in fixed order.
func (t *Trail) Steps() []WorkflowStep {
	return append([]WorkflowStep(nil), t.steps...)
}

// Entries returns a copy of the transition log.
func (t *Trail) Entries() []TrailEntry {
	return append([]TrailEntry(nil), t.entries...)
}

// Review is what the decision surface renders.
type Review struct {
	Platform string
	Text     string
	Analysis AnalysisResult
	Pattern  *PatternResult
	Steps    []WorkflowStep
}

// Verdict is the single outcome of a run.
type Verdict string

const (
	VerdictContinue Verdict = "continue"
	VerdictCancel   Verdict = "cancel"
)
