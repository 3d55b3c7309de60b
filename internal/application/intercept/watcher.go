package intercept

import (
	"sync"
	"time"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/pkg/eventloop"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Watcher coalesces bursts of DOM mutations into a single rescan. Every notification
// restarts the quiet-period timer; notifications that arrive while a scan runs are folded
// into one follow-up scan.
type Watcher struct {
	loop  *eventloop.Loop
	doc   ports.Document
	quiet time.Duration
	scan  func()

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	scanning bool
	queued   bool
	stopped  bool
	stopObs  func()
}

// NewWatcher builds a watcher that runs scan on loop.
func NewWatcher(loop *eventloop.Loop, doc ports.Document, quiet time.Duration, scan func()) *Watcher {
	if quiet <= 0 {
		quiet = domain.DefaultDebounce
	}
	return &Watcher{loop: loop, doc: doc, quiet: quiet, scan: scan}
}

// Start runs an initial scan and subscribes to mutations.
func (w *Watcher) Start() {
	stop := w.doc.Observe(w.notify)

	w.mu.Lock()
	w.stopObs = stop
	w.mu.Unlock()

	w.loop.Post(w.runScan)
}

// Stop unsubscribes and discards any pending scan.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.stopObs != nil {
		w.stopObs()
		w.stopObs = nil
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.scanning {
		w.queued = true
		return
	}
	w.arm()
}

// arm restarts the quiet-period timer. Callers hold mu.
func (w *Watcher) arm() {
	w.gen++
	gen := w.gen
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.quiet, func() { w.fire(gen) })
}

func (w *Watcher) fire(gen uint64) {
	w.mu.Lock()
	current := gen == w.gen && !w.stopped
	w.mu.Unlock()
	if current {
		w.loop.Post(w.runScan)
	}
}

func (w *Watcher) runScan() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.scanning = true
	w.mu.Unlock()

	w.scan()

	w.mu.Lock()
	w.scanning = false
	if w.queued && !w.stopped {
		w.queued = false
		w.arm()
	}
	w.mu.Unlock()
}
