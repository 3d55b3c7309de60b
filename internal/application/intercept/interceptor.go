package intercept

import (
	"context"
	"time"

	"github.com/doeshing/sns-guardian/internal/application/pipeline"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/platform"
	"github.com/doeshing/sns-guardian/internal/pkg/eventloop"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Runner executes one pipeline run to a verdict.
type Runner interface {
	Run(context.Context, *pipeline.Run) (domain.Verdict, error)
}

// BindingState is the interceptor's record for one submit control.
type BindingState struct {
	Bound   bool
	Bypass  bool
	Running bool
}

// Interceptor binds submit controls and gates their native action behind a pipeline run.
// The binding table is touched only from the loop goroutine.
type Interceptor struct {
	ctx      context.Context
	loop     *eventloop.Loop
	doc      ports.Document
	adapter  domain.PlatformAdapter
	runner   Runner
	settings ports.SettingsSource
	cooldown time.Duration
	logger   ports.Logger

	bindings map[string]*BindingState
}

// NewInterceptor builds an interceptor for doc. Runs inherit ctx; cancelling it only
// bounds provider calls, a run already at the decision surface still resolves.
func NewInterceptor(ctx context.Context, loop *eventloop.Loop, doc ports.Document, adapter domain.PlatformAdapter,
	runner Runner, settings ports.SettingsSource, cooldown time.Duration, logger ports.Logger) *Interceptor {
	if cooldown <= 0 {
		cooldown = domain.DefaultCooldown
	}
	return &Interceptor{
		ctx:      ctx,
		loop:     loop,
		doc:      doc,
		adapter:  adapter,
		runner:   runner,
		settings: settings,
		cooldown: cooldown,
		logger:   logger,
		bindings: make(map[string]*BindingState),
	}
}

// Scan binds every submit control not yet bound and returns how many were new.
// It must run on the loop.
func (i *Interceptor) Scan() int {
	bound := 0
	for _, selector := range i.adapter.SubmitSelectors {
		for _, el := range i.doc.QueryAll(selector) {
			key := el.Key()
			if _, ok := i.bindings[key]; ok {
				continue
			}
			state := &BindingState{Bound: true}
			i.bindings[key] = state
			el.OnCapture(func(ev ports.ClickEvent) { i.onClick(el, state, ev) })
			bound++
		}
	}
	if bound > 0 {
		i.logger.Debug("bound submit controls", map[string]interface{}{
			"platform": i.adapter.Name,
			"new":      bound,
			"total":    len(i.bindings),
		})
	}
	return bound
}

// Binding returns a copy of the state for key. It must run on the loop.
func (i *Interceptor) Binding(key string) (BindingState, bool) {
	state, ok := i.bindings[key]
	if !ok {
		return BindingState{}, false
	}
	return *state, true
}

func (i *Interceptor) onClick(el ports.Element, state *BindingState, ev ports.ClickEvent) {
	if state.Bypass {
		return
	}
	ev.PreventDefault()
	ev.StopPropagation()
	if state.Running {
		i.logger.Debug("click ignored, run in flight", map[string]interface{}{"control": el.Key()})
		return
	}
	state.Running = true

	run := pipeline.NewRun(i.adapter.Name, i.settings.Settings().ForPage(), &pageSource{
		loop:    i.loop,
		doc:     i.doc,
		adapter: i.adapter,
	})
	i.logger.Info("submit intercepted", map[string]interface{}{
		"run":      run.ID,
		"platform": i.adapter.Name,
		"provider": run.Settings.Provider,
	})

	go func() {
		verdict, err := i.runner.Run(i.ctx, run)
		if err != nil {
			i.logger.Error("run failed, cancelling", err, map[string]interface{}{"run": run.ID})
			verdict = domain.VerdictCancel
		}
		i.loop.Post(func() { i.resolve(el, state, verdict) })
	}()
}

func (i *Interceptor) resolve(el ports.Element, state *BindingState, verdict domain.Verdict) {
	state.Running = false
	if verdict != domain.VerdictContinue {
		return
	}
	state.Bypass = true
	el.Click()
	i.loop.AfterFunc(i.cooldown, func() { state.Bypass = false })
}

// pageSource reads the compose box and reply target on the loop.
type pageSource struct {
	loop    *eventloop.Loop
	doc     ports.Document
	adapter domain.PlatformAdapter
}

func (s *pageSource) Capture(ctx context.Context) (domain.Capture, error) {
	var captured domain.Capture
	err := s.loop.Do(ctx, func() {
		captured = domain.Capture{
			Text:       platform.FirstText(s.doc, s.adapter.ComposeSelectors),
			ReplyingTo: platform.FirstText(s.doc, s.adapter.ContextSelectors),
			Platform:   s.adapter.Name,
		}
	})
	return captured, err
}
