package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Baseline is the local scorer every run starts from.
type Baseline interface {
	Analyze(domain.AnalysisRequest) domain.AnalysisResult
	DetectPattern(domain.PatternRequest) domain.PatternResult
}

// Orchestrator drives one run through capture, analysis, pattern detection and review.
// Remote failures degrade to the local baseline; only the user's cancel stops a post.
type Orchestrator struct {
	Baseline  Baseline
	Providers ports.ProviderFactory
	Surface   ports.DecisionSurface
	Progress  ports.ProgressIndicator
	Logger    ports.Logger
}

// Run executes the state machine until Replay or Abort and returns the verdict.
func (o *Orchestrator) Run(ctx context.Context, run *Run) (domain.Verdict, error) {
	if o.Baseline == nil || o.Providers == nil || o.Surface == nil || o.Logger == nil {
		return domain.VerdictCancel, errors.New("pipeline.Orchestrator dependencies not satisfied")
	}
	if run == nil || run.Source == nil || run.Trail == nil {
		return domain.VerdictCancel, errors.New("pipeline.Run incomplete")
	}

	stopProgress := func() {}
	if o.Progress != nil {
		stopProgress = o.Progress.Start("Analyzing...")
	}
	defer func() { stopProgress() }()

	for state := StateCapture; ; {
		run.History = append(run.History, state)
		if state.Terminal() {
			break
		}
		if state == StateDecision {
			stopProgress()
			stopProgress = func() {}
		}
		state = o.step(ctx, run, state)
	}

	o.Logger.Info("run finished", map[string]interface{}{
		"run":      run.ID,
		"platform": run.Platform,
		"verdict":  run.Verdict,
		"score":    run.Analysis.RiskScore,
	})
	return run.Verdict, nil
}

func (o *Orchestrator) step(ctx context.Context, run *Run, state State) State {
	switch state {
	case StateCapture:
		o.capture(ctx, run)
		return StateLocalAnalyze
	case StateLocalAnalyze:
		run.Baseline = o.Baseline.Analyze(run.analysisRequest())
		run.Analysis = run.Baseline
		return StateRemoteAnalyze
	case StateRemoteAnalyze:
		o.remoteAnalyze(ctx, run)
		return StatePatternDetect
	case StatePatternDetect:
		o.detectPattern(ctx, run)
		return StateDecision
	case StateDecision:
		if o.decide(ctx, run) {
			run.Verdict = domain.VerdictContinue
			return StateReplay
		}
		run.Verdict = domain.VerdictCancel
		return StateAbort
	default:
		return StateAbort
	}
}

func (o *Orchestrator) capture(ctx context.Context, run *Run) {
	captured, err := run.Source.Capture(ctx)
	if err != nil {
		o.Logger.Warn("capture failed", map[string]interface{}{"run": run.ID, "error": err.Error()})
		run.Capture = domain.Capture{Platform: run.Platform}
		run.Trail.Mark(domain.StepCapture, domain.StatusFailed, "unreadable")
		return
	}
	if captured.Platform == "" {
		captured.Platform = run.Platform
	}
	run.Capture = captured

	detail := "captured"
	if strings.TrimSpace(captured.Text) == "" {
		detail = "no input"
	} else if captured.HasContext() {
		detail = "captured with reply"
	}
	run.Trail.Mark(domain.StepCapture, domain.StatusDone, detail)
}

func (o *Orchestrator) remoteAnalyze(ctx context.Context, run *Run) {
	if !run.Settings.RemoteEnabled() {
		run.Analysis = run.Baseline.WithFactor(domain.FactorLocalOnly)
		run.Trail.Mark(domain.StepAnalysis, domain.StatusDone, run.Analysis.Summary())
		return
	}

	advanced, err := o.analyzeRemote(ctx, run)
	if err != nil {
		o.Logger.Warn("remote analysis failed, using local baseline", map[string]interface{}{
			"run":   run.ID,
			"kind":  domain.ClassifyError(err),
			"error": err.Error(),
		})
		run.Analysis = run.Baseline.WithFactor(domain.FactorDegraded)
		run.Trail.Mark(domain.StepAnalysis, domain.StatusFailed, run.Analysis.Summary()+", "+string(domain.ClassifyError(err)))
		return
	}
	run.Analysis = domain.Combine(run.Baseline, advanced)
	run.Trail.Mark(domain.StepAnalysis, domain.StatusDone, run.Analysis.Summary())
}

func (o *Orchestrator) analyzeRemote(ctx context.Context, run *Run) (domain.AnalysisResult, error) {
	provider, err := o.provider(run)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return provider.Analyze(ctx, run.analysisRequest())
}

func (o *Orchestrator) detectPattern(ctx context.Context, run *Run) {
	if !run.Capture.HasContext() {
		run.Trail.Mark(domain.StepPattern, domain.StatusSkipped, "no reply context")
		return
	}

	req := domain.PatternRequest{Text: run.Capture.Text, Context: run.Capture.ReplyingTo, Platform: run.Capture.Platform}
	baseline := o.Baseline.DetectPattern(req)

	if !run.Settings.RemotePatternEnabled() {
		run.Pattern = &baseline
		run.Trail.Mark(domain.StepPattern, domain.StatusDone, baseline.Summary())
		return
	}

	remote, err := o.detectRemote(ctx, run, req)
	if err != nil {
		o.Logger.Warn("remote pattern detection failed, using local baseline", map[string]interface{}{
			"run":   run.ID,
			"kind":  domain.ClassifyError(err),
			"error": err.Error(),
		})
		run.Pattern = &baseline
		run.Analysis = run.Analysis.WithFactor(domain.FactorPatternDegraded)
		run.Trail.Mark(domain.StepPattern, domain.StatusFailed, baseline.Summary()+", "+string(domain.ClassifyError(err)))
		return
	}
	remote = remote.Normalize()
	run.Pattern = &remote
	run.Trail.Mark(domain.StepPattern, domain.StatusDone, remote.Summary())
}

func (o *Orchestrator) detectRemote(ctx context.Context, run *Run, req domain.PatternRequest) (domain.PatternResult, error) {
	provider, err := o.provider(run)
	if err != nil {
		return domain.PatternResult{}, err
	}
	return provider.DetectPattern(ctx, req)
}

func (o *Orchestrator) decide(ctx context.Context, run *Run) bool {
	allow, err := o.Surface.Decide(ctx, run.Review())
	if err != nil {
		o.Logger.Error("decision surface failed, cancelling", err, map[string]interface{}{"run": run.ID})
		allow = false
	}
	verdict := "cancel"
	if allow {
		verdict = "continue"
	}
	run.Trail.Mark(domain.StepReview, domain.StatusDone, verdict)
	return allow
}

// provider resolves the run's provider once; both remote steps share it.
func (o *Orchestrator) provider(run *Run) (ports.RiskProvider, error) {
	if run.provider != nil {
		return run.provider, nil
	}
	provider, err := o.Providers.ForSettings(run.Settings)
	if err != nil {
		return nil, err
	}
	run.provider = provider
	return provider, nil
}

func (r *Run) analysisRequest() domain.AnalysisRequest {
	return domain.AnalysisRequest{
		Text:       r.Capture.Text,
		Platform:   r.Capture.Platform,
		ReplyingTo: r.Capture.ReplyingTo,
	}
}
