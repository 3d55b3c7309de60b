// Package dom is an in-memory page used by the check command and by tests. Elements are
// registered against the selectors they should answer to, so no CSS engine is needed.
package dom

import (
	"fmt"
	"sync"

	"github.com/doeshing/sns-guardian/internal/ports"
)

// Document is a scripted page. Listener callbacks run on whatever goroutine calls Click
// or Mutate; callers that need loop affinity dispatch through the event loop.
type Document struct {
	mu        sync.Mutex
	hostname  string
	order     []*Element
	selectors map[string][]*Element
	observers map[int]func()
	nextObs   int
	nextKey   int
}

// NewDocument creates an empty page served from hostname.
func NewDocument(hostname string) *Document {
	return &Document{
		hostname:  hostname,
		selectors: make(map[string][]*Element),
		observers: make(map[int]func()),
	}
}

// Hostname implements ports.Document.
func (d *Document) Hostname() string {
	return d.hostname
}

// Add inserts a new element matching selectors and notifies observers.
func (d *Document) Add(text string, selectors ...string) *Element {
	d.mu.Lock()
	d.nextKey++
	el := &Element{key: fmt.Sprintf("el-%d", d.nextKey), text: text}
	d.order = append(d.order, el)
	for _, s := range selectors {
		d.selectors[s] = append(d.selectors[s], el)
	}
	d.mu.Unlock()

	d.Mutate()
	return el
}

// Remove detaches el from every selector and notifies observers.
func (d *Document) Remove(el *Element) {
	d.mu.Lock()
	for s, list := range d.selectors {
		d.selectors[s] = without(list, el)
	}
	d.order = without(d.order, el)
	d.mu.Unlock()

	d.Mutate()
}

// Mutate notifies observers of a subtree change.
func (d *Document) Mutate() {
	d.mu.Lock()
	observers := make([]func(), 0, len(d.observers))
	for _, fn := range d.observers {
		observers = append(observers, fn)
	}
	d.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

// QueryAll implements ports.Document.
func (d *Document) QueryAll(selector string) []ports.Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	matches := d.selectors[selector]
	out := make([]ports.Element, 0, len(matches))
	for _, el := range matches {
		out = append(out, el)
	}
	return out
}

// Observe implements ports.Document.
func (d *Document) Observe(notify func()) func() {
	d.mu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = notify
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

func without(list []*Element, target *Element) []*Element {
	out := list[:0:0]
	for _, el := range list {
		if el != target {
			out = append(out, el)
		}
	}
	return out
}

var _ ports.Document = (*Document)(nil)
