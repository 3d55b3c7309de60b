package commands

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/doeshing/sns-guardian/internal/app"
	"github.com/doeshing/sns-guardian/internal/application/intercept"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/browser"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// NewBrowseCommand creates the browse command: a live browser with the guardian attached to
// every supported page the tab navigates to.
func NewBrowseCommand(container *app.Container, surface ports.DecisionSurface, progress ports.ProgressIndicator) *cobra.Command {
	var headless bool

	cmd := &cobra.Command{
		Use:   "browse [url]",
		Short: "Open a browser with the guardian attached",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := container.Config.Config()
			target := cfg.Browser.StartURL
			if len(args) == 1 {
				target = args[0]
			}
			opts := browser.Options{Bin: cfg.Browser.Bin, Headless: cfg.Browser.Headless}
			if cmd.Flags().Changed("headless") {
				opts.Headless = headless
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			container.Start(ctx)

			return runBrowse(ctx, container, surface, progress, opts, NormalizeURL(target))
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")
	return cmd
}

func runBrowse(ctx context.Context, container *app.Container, surface ports.DecisionSurface, progress ports.ProgressIndicator, opts browser.Options, target string) error {
	session, err := browser.Launch(ctx, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	page, err := browser.NewPage(session.Page(), container.Loop.Post, container.Logger)
	if err != nil {
		return err
	}

	orchestrator := container.Orchestrator(surface, progress)
	var (
		mu    sync.Mutex
		guard *intercept.Guard
	)
	attach := func(url string) {
		mu.Lock()
		defer mu.Unlock()
		if guard != nil {
			guard.Detach()
			guard = nil
		}
		page.SetURL(url)
		container.Loop.Post(page.Reset)

		g, err := intercept.Attach(ctx, container.AttachOptions(page, orchestrator))
		if err != nil {
			if errors.Is(err, domain.ErrPlatformUnsupported) {
				container.Logger.Info("page not guarded", map[string]interface{}{"url": url})
				return
			}
			container.Logger.Error("attach failed", err, map[string]interface{}{"url": url})
			return
		}
		guard = g
	}
	session.OnNavigate(ctx, attach)

	if err := session.Navigate(target); err != nil {
		return err
	}
	container.Logger.Info("browsing", map[string]interface{}{"url": target})

	select {
	case <-session.Closed(ctx):
	case <-ctx.Done():
	}

	mu.Lock()
	if guard != nil {
		guard.Detach()
	}
	mu.Unlock()
	return nil
}

// NormalizeURL adds a scheme when missing and falls back to the default start page.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.DefaultStartURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}
