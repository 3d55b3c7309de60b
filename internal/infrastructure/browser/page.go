// Package browser adapts a live Chromium page, driven through go-rod, to ports.Document.
//
// The page side installs one capture-phase click listener on the document. A click on a
// bound control is always stopped in the page and forwarded to Go through an exposed
// binding; Go runs the listeners on the page loop and, if none of them prevented the
// click, replays it with a one-shot pass flag the page listener lets through.
package browser

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/doeshing/sns-guardian/internal/ports"
)

const (
	clickBinding    = "__guardianClick"
	mutationBinding = "__guardianMutated"
)

const installJS = `() => {
	if (window.__guardianInstalled) return true;
	window.__guardianInstalled = true;
	window.__guardianDoc = Math.random().toString(36).slice(2, 10);
	window.__guardianSeq = 0;

	document.addEventListener('click', (ev) => {
		const target = ev.target && ev.target.closest ? ev.target.closest('[data-guardian-bound]') : null;
		if (!target) return;
		if (target.dataset.guardianPass) {
			delete target.dataset.guardianPass;
			return;
		}
		ev.preventDefault();
		ev.stopImmediatePropagation();
		window.__guardianClick(target.dataset.guardianKey);
	}, true);

	const observe = () => {
		new MutationObserver(() => window.__guardianMutated(null))
			.observe(document.documentElement, { childList: true, subtree: true, characterData: true });
	};
	if (document.documentElement) observe();
	else document.addEventListener('DOMContentLoaded', observe);
	return true;
}`

const keyJS = `function () {
	if (!this.dataset.guardianKey) {
		window.__guardianSeq = (window.__guardianSeq || 0) + 1;
		this.dataset.guardianKey = (window.__guardianDoc || 'doc') + '-' + window.__guardianSeq;
	}
	return this.dataset.guardianKey;
}`

const textJS = `function () {
	if (this.tagName === 'TEXTAREA' || this.tagName === 'INPUT') return this.value || '';
	return this.innerText || '';
}`

const bindJS = `function () { this.dataset.guardianBound = '1'; }`

const replayJS = `function () { this.dataset.guardianPass = '1'; this.click(); }`

// Page is a ports.Document over a rod page. QueryAll, Text, OnCapture and Click must run on
// the loop that post feeds.
type Page struct {
	page   *rod.Page
	post   func(func()) bool
	logger ports.Logger

	elements  map[string]*Element
	listeners map[string][]func(ports.ClickEvent)

	mu        sync.Mutex
	url       string
	observers map[int]func()
	nextObs   int
}

// NewPage installs the click and mutation hooks on page. Hooks survive navigation.
// post hands work to the page loop.
func NewPage(page *rod.Page, post func(func()) bool, logger ports.Logger) (*Page, error) {
	p := &Page{
		page:      page,
		post:      post,
		logger:    logger,
		elements:  make(map[string]*Element),
		listeners: make(map[string][]func(ports.ClickEvent)),
		observers: make(map[int]func()),
	}

	if _, err := page.Expose(clickBinding, func(arg gson.JSON) (interface{}, error) {
		key := arg.Str()
		p.post(func() { p.dispatch(key) })
		return nil, nil
	}); err != nil {
		return nil, fmt.Errorf("expose click binding: %w", err)
	}
	if _, err := page.Expose(mutationBinding, func(gson.JSON) (interface{}, error) {
		p.notify()
		return nil, nil
	}); err != nil {
		return nil, fmt.Errorf("expose mutation binding: %w", err)
	}

	if _, err := page.EvalOnNewDocument("(" + installJS + ")()"); err != nil {
		return nil, fmt.Errorf("install page hooks: %w", err)
	}
	if _, err := page.Eval(installJS); err != nil {
		return nil, fmt.Errorf("install page hooks: %w", err)
	}
	return p, nil
}

// SetURL records the URL of a top-frame navigation ahead of the target info catching up.
func (p *Page) SetURL(raw string) {
	p.mu.Lock()
	p.url = raw
	p.mu.Unlock()
}

// Hostname is the host of the page's current URL, or "" when it cannot be read.
func (p *Page) Hostname() string {
	p.mu.Lock()
	raw := p.url
	p.mu.Unlock()

	if raw == "" {
		info, err := p.page.Info()
		if err != nil {
			p.logger.Warn("page info unavailable", map[string]interface{}{"err": err.Error()})
			return ""
		}
		raw = info.URL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// QueryAll returns the elements matching selector, tagging each with a stable key.
func (p *Page) QueryAll(selector string) []ports.Element {
	found, err := p.page.Elements(selector)
	if err != nil {
		p.logger.Debug("query failed", map[string]interface{}{"selector": selector, "err": err.Error()})
		return nil
	}
	out := make([]ports.Element, 0, len(found))
	for _, el := range found {
		res, err := el.Eval(keyJS)
		if err != nil {
			continue
		}
		key := res.Value.Str()
		wrapped, ok := p.elements[key]
		if !ok {
			wrapped = &Element{page: p, el: el, key: key}
			p.elements[key] = wrapped
		}
		out = append(out, wrapped)
	}
	return out
}

// Observe subscribes notify to subtree mutations.
func (p *Page) Observe(notify func()) func() {
	p.mu.Lock()
	id := p.nextObs
	p.nextObs++
	p.observers[id] = notify
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.observers, id)
		p.mu.Unlock()
	}
}

// Reset forgets every element seen so far. Call it on the loop after a full navigation.
func (p *Page) Reset() {
	p.elements = make(map[string]*Element)
	p.listeners = make(map[string][]func(ports.ClickEvent))
}

func (p *Page) notify() {
	p.mu.Lock()
	observers := make([]func(), 0, len(p.observers))
	for _, fn := range p.observers {
		observers = append(observers, fn)
	}
	p.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

func (p *Page) dispatch(key string) {
	el, ok := p.elements[key]
	if !ok {
		return
	}
	ev := &clickEvent{}
	for _, fn := range p.listeners[key] {
		fn(ev)
		if ev.stopped {
			break
		}
	}
	if !ev.prevented {
		el.Click()
	}
}

type clickEvent struct {
	prevented bool
	stopped   bool
}

func (e *clickEvent) PreventDefault()  { e.prevented = true }
func (e *clickEvent) StopPropagation() { e.stopped = true }

// Element is a tagged node in a Page.
type Element struct {
	page *Page
	el   *rod.Element
	key  string
}

func (e *Element) Key() string { return e.key }

func (e *Element) Text() string {
	res, err := e.el.Eval(textJS)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (e *Element) OnCapture(fn func(ports.ClickEvent)) {
	if len(e.page.listeners[e.key]) == 0 {
		if _, err := e.el.Eval(bindJS); err != nil {
			e.page.logger.Warn("bind control failed", map[string]interface{}{"control": e.key, "err": err.Error()})
			return
		}
	}
	e.page.listeners[e.key] = append(e.page.listeners[e.key], fn)
}

// Click replays a native click that the page hook lets through once.
func (e *Element) Click() {
	if _, err := e.el.Eval(replayJS); err != nil {
		e.page.logger.Warn("replay click failed", map[string]interface{}{"control": e.key, "err": err.Error()})
	}
}
