package intercept

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/doeshing/sns-guardian/internal/application/pipeline"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/dom"
	"github.com/doeshing/sns-guardian/internal/infrastructure/platform"
	"github.com/doeshing/sns-guardian/internal/pkg/eventloop"
	"github.com/doeshing/sns-guardian/internal/pkg/logger"
)

const (
	submitSel  = `div[data-testid="tweetButtonInline"]`
	composeSel = `div[data-testid="tweetTextarea_0"]`
)

type staticSettings struct{ s domain.Settings }

func (s staticSettings) Settings() domain.Settings { return s.s }

// scriptedRunner answers each run with the next verdict from verdicts.
type scriptedRunner struct {
	verdicts chan domain.Verdict
	runs     int32
	mu       sync.Mutex
	captured []domain.Capture
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{verdicts: make(chan domain.Verdict, 8)}
}

func (r *scriptedRunner) Run(ctx context.Context, run *pipeline.Run) (domain.Verdict, error) {
	atomic.AddInt32(&r.runs, 1)
	captured, err := run.Source.Capture(ctx)
	if err != nil {
		return domain.VerdictCancel, err
	}
	r.mu.Lock()
	r.captured = append(r.captured, captured)
	r.mu.Unlock()
	return <-r.verdicts, nil
}

type fixture struct {
	loop   *eventloop.Loop
	doc    *dom.Document
	guard  *Guard
	runner *scriptedRunner
}

func newFixture(t *testing.T, debounce, cooldown time.Duration) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	loop := eventloop.New()
	go loop.Run(ctx)

	registry, err := platform.NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	doc := dom.NewDocument("x.com")
	runner := newScriptedRunner()

	guard, err := Attach(ctx, Options{
		Loop:     loop,
		Document: doc,
		Detector: registry,
		Runner:   runner,
		Settings: staticSettings{domain.Settings{Provider: domain.ProviderLocal}},
		Debounce: debounce,
		Cooldown: cooldown,
		Logger:   logger.Nop(),
	})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	t.Cleanup(guard.Detach)
	return &fixture{loop: loop, doc: doc, guard: guard, runner: runner}
}

func (f *fixture) onLoop(t *testing.T, fn func()) {
	t.Helper()
	if err := f.loop.Do(context.Background(), fn); err != nil {
		t.Fatalf("loop.Do() error = %v", err)
	}
}

func (f *fixture) binding(t *testing.T, key string) BindingState {
	t.Helper()
	var state BindingState
	f.onLoop(t, func() { state, _ = f.guard.Interceptor.Binding(key) })
	return state
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestControlBoundOnceUnderRepeatedScans(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond, 50*time.Millisecond)
	button := f.doc.Add("Post", submitSel)

	for i := 0; i < 20; i++ {
		f.doc.Mutate()
		f.onLoop(t, func() { f.guard.Interceptor.Scan() })
	}
	time.Sleep(40 * time.Millisecond)
	f.onLoop(t, func() {})

	if got := button.ListenerCount(); got != 1 {
		t.Fatalf("listeners = %d, want 1", got)
	}
	if state := f.binding(t, button.Key()); !state.Bound {
		t.Fatalf("binding = %+v", state)
	}
}

func TestContinueReplaysWithBypassThenClears(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond, 80*time.Millisecond)
	f.doc.Add("draft text", composeSel)
	button := f.doc.Add("Post", submitSel)
	eventually(t, func() bool { return button.ListenerCount() == 1 }, "button never bound")

	bypassDuringReplay := make(chan bool, 1)
	button.OnNative(func() {
		state, _ := f.guard.Interceptor.Binding(button.Key())
		bypassDuringReplay <- state.Bypass
	})

	var passed bool
	f.onLoop(t, func() { passed = button.UserClick() })
	if passed {
		t.Fatal("user click was not suppressed")
	}

	f.runner.verdicts <- domain.VerdictContinue

	select {
	case bypass := <-bypassDuringReplay:
		if !bypass {
			t.Fatal("bypass not set during replay")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("native action never replayed")
	}
	if button.NativeCount() != 1 {
		t.Fatalf("native count = %d, want 1", button.NativeCount())
	}

	time.Sleep(150 * time.Millisecond)
	if state := f.binding(t, button.Key()); state.Bypass || state.Running {
		t.Fatalf("binding after cool-down = %+v", state)
	}
	if got := f.runner.captured[0].Text; got != "draft text" {
		t.Fatalf("captured text = %q", got)
	}
}

func TestCancelLeavesControlArmed(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond, 50*time.Millisecond)
	button := f.doc.Add("Post", submitSel)
	eventually(t, func() bool { return button.ListenerCount() == 1 }, "button never bound")

	f.onLoop(t, func() { button.UserClick() })
	f.runner.verdicts <- domain.VerdictCancel
	eventually(t, func() bool { return !f.binding(t, button.Key()).Running }, "run never resolved")

	if button.NativeCount() != 0 {
		t.Fatalf("native action ran after cancel")
	}

	f.onLoop(t, func() { button.UserClick() })
	f.runner.verdicts <- domain.VerdictCancel
	eventually(t, func() bool { return atomic.LoadInt32(&f.runner.runs) == 2 }, "second attempt not intercepted")
}

func TestClickWhileRunningIsSuppressed(t *testing.T) {
	f := newFixture(t, 10*time.Millisecond, 50*time.Millisecond)
	button := f.doc.Add("Post", submitSel)
	eventually(t, func() bool { return button.ListenerCount() == 1 }, "button never bound")

	f.onLoop(t, func() { button.UserClick() })
	var second bool
	f.onLoop(t, func() { second = button.UserClick() })
	if second {
		t.Fatal("second click passed through while running")
	}

	f.runner.verdicts <- domain.VerdictCancel
	eventually(t, func() bool { return !f.binding(t, button.Key()).Running }, "run never resolved")
	if got := atomic.LoadInt32(&f.runner.runs); got != 1 {
		t.Fatalf("runs = %d, want 1", got)
	}
}

func TestAttachUnsupportedHost(t *testing.T) {
	registry, err := platform.NewRegistry("")
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	_, err = Attach(context.Background(), Options{
		Loop:     eventloop.New(),
		Document: dom.NewDocument("example.com"),
		Detector: registry,
		Logger:   logger.Nop(),
	})
	if !errors.Is(err, domain.ErrPlatformUnsupported) {
		t.Fatalf("Attach() error = %v, want unsupported", err)
	}
}

func TestWatcherCoalescesBursts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := eventloop.New()
	go loop.Run(ctx)

	doc := dom.NewDocument("x.com")
	var scans int32
	w := NewWatcher(loop, doc, 30*time.Millisecond, func() { atomic.AddInt32(&scans, 1) })
	w.Start()
	defer w.Stop()

	eventually(t, func() bool { return atomic.LoadInt32(&scans) == 1 }, "initial scan missing")

	for i := 0; i < 10; i++ {
		doc.Mutate()
		time.Sleep(5 * time.Millisecond)
	}
	eventually(t, func() bool { return atomic.LoadInt32(&scans) == 2 }, "burst never scanned")

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&scans); got != 2 {
		t.Fatalf("scans = %d, want 2", got)
	}
}

func TestWatcherQueuesNotificationsDuringScan(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	loop := eventloop.New()
	go loop.Run(ctx)

	doc := dom.NewDocument("x.com")
	var scans int32
	w := NewWatcher(loop, doc, 10*time.Millisecond, func() {
		if atomic.AddInt32(&scans, 1) == 1 {
			// The first scan edits the page itself.
			doc.Mutate()
			doc.Mutate()
		}
	})
	w.Start()
	defer w.Stop()

	eventually(t, func() bool { return atomic.LoadInt32(&scans) == 2 }, "queued rescan missing")
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&scans); got != 2 {
		t.Fatalf("scans = %d, want 2", got)
	}
}
