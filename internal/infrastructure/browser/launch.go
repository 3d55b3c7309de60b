package browser

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/doeshing/sns-guardian/internal/pkg/filesystem"
)

// ErrBrowserNotFound is returned by Locate when no Chromium binary can be found.
var ErrBrowserNotFound = errors.New("no chromium-based browser found")

// Options configure a launched browser.
type Options struct {
	Bin      string
	Headless bool
}

// Session is a launched browser with one tab.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
}

// Locator finds the browser binary to launch.
type Locator struct{}

// Locate returns configured when it names an existing file, and otherwise the first
// browser found on the system.
func (Locator) Locate(configured string) (string, error) {
	if configured != "" {
		path := filesystem.ExpandPath(configured)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("browser.bin %s: %w", configured, err)
		}
		return path, nil
	}
	if path, ok := launcher.LookPath(); ok {
		return path, nil
	}
	return "", ErrBrowserNotFound
}

// Launch starts a browser and opens a blank tab. Navigate after the page hooks are
// installed so they apply to the first document.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		bin, err := Locator{}.Locate(opts.Bin)
		if err != nil {
			return nil, err
		}
		l = l.Bin(bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}
	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return &Session{browser: b, page: page}, nil
}

// Page returns the session's tab.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Navigate loads url in the tab and waits for the load event.
func (s *Session) Navigate(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return s.page.WaitLoad()
}

// OnNavigate calls fn with the new URL whenever the top frame navigates, until ctx is done.
func (s *Session) OnNavigate(ctx context.Context, fn func(url string)) {
	wait := s.page.Context(ctx).EachEvent(func(ev *proto.PageFrameNavigated) {
		if ev.Frame.ParentID == "" {
			fn(ev.Frame.URL)
		}
	})
	go wait()
}

// Closed is closed when the tab goes away.
func (s *Session) Closed(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	wait := s.browser.Context(ctx).EachEvent(func(ev *proto.TargetTargetDestroyed) bool {
		return ev.TargetID == s.page.TargetID
	})
	go func() {
		wait()
		close(done)
	}()
	return done
}

// Close shuts the browser down.
func (s *Session) Close() error {
	return s.browser.Close()
}
