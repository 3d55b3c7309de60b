package dom

import (
	"sync"

	"github.com/doeshing/sns-guardian/internal/ports"
)

// Element is a scripted node. A user click runs capture listeners first and performs the
// native action only when none of them called PreventDefault.
type Element struct {
	mu        sync.Mutex
	key       string
	text      string
	listeners []func(ports.ClickEvent)
	onNative  func()
	native    int
}

// Key implements ports.Element.
func (e *Element) Key() string {
	return e.key
}

// Text implements ports.Element.
func (e *Element) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// SetText replaces the node text, as typing into a compose box would.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	e.text = text
	e.mu.Unlock()
}

// OnCapture implements ports.Element.
func (e *Element) OnCapture(fn func(ports.ClickEvent)) {
	e.mu.Lock()
	e.listeners = append(e.listeners, fn)
	e.mu.Unlock()
}

// OnNative registers the page's own action, run whenever a click is not prevented.
func (e *Element) OnNative(fn func()) {
	e.mu.Lock()
	e.onNative = fn
	e.mu.Unlock()
}

// Click implements ports.Element. Replayed clicks go through the same listeners as user clicks.
func (e *Element) Click() {
	e.dispatch()
}

// UserClick simulates a person pressing the control. It reports whether the native action ran.
func (e *Element) UserClick() bool {
	return e.dispatch()
}

// NativeCount is how many times the native action has run.
func (e *Element) NativeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.native
}

// ListenerCount is how many capture listeners are attached.
func (e *Element) ListenerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.listeners)
}

func (e *Element) dispatch() bool {
	e.mu.Lock()
	listeners := append(([]func(ports.ClickEvent))(nil), e.listeners...)
	e.mu.Unlock()

	ev := &event{}
	for _, fn := range listeners {
		fn(ev)
		if ev.stopped {
			break
		}
	}
	if ev.prevented {
		return false
	}

	e.mu.Lock()
	e.native++
	native := e.onNative
	e.mu.Unlock()
	if native != nil {
		native()
	}
	return true
}

type event struct {
	prevented bool
	stopped   bool
}

func (ev *event) PreventDefault()  { ev.prevented = true }
func (ev *event) StopPropagation() { ev.stopped = true }

var _ ports.Element = (*Element)(nil)
