// Package intercept attaches the guardian to a page: it finds submit controls, keeps them
// bound as the page changes and routes every click through a pipeline run.
package intercept

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/pkg/eventloop"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Detector resolves a host to its platform adapter.
type Detector interface {
	Detect(hostname string) (domain.PlatformAdapter, error)
}

// Options carries everything Attach needs.
type Options struct {
	Loop     *eventloop.Loop
	Document ports.Document
	Detector Detector
	Runner   Runner
	Settings ports.SettingsSource
	Debounce time.Duration
	Cooldown time.Duration
	Logger   ports.Logger
}

// Guard is an attached interceptor and its watcher.
type Guard struct {
	Platform    domain.PlatformAdapter
	Interceptor *Interceptor
	Watcher     *Watcher
}

// Attach detects the platform and starts watching the page. An unsupported host yields an
// error wrapping domain.ErrPlatformUnsupported and nothing is bound.
func Attach(ctx context.Context, opts Options) (*Guard, error) {
	adapter, err := opts.Detector.Detect(opts.Document.Hostname())
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	interceptor := NewInterceptor(ctx, opts.Loop, opts.Document, adapter, opts.Runner, opts.Settings, opts.Cooldown, opts.Logger)
	watcher := NewWatcher(opts.Loop, opts.Document, opts.Debounce, func() { interceptor.Scan() })
	watcher.Start()

	opts.Logger.Info("guardian attached", map[string]interface{}{
		"platform": adapter.Name,
		"host":     opts.Document.Hostname(),
	})
	return &Guard{Platform: adapter, Interceptor: interceptor, Watcher: watcher}, nil
}

// Detach stops the watcher. Bound controls stay bound.
func (g *Guard) Detach() {
	g.Watcher.Stop()
}
