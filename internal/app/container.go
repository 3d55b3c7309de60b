package app

import (
	"context"
	"net/http"

	appconfig "github.com/doeshing/sns-guardian/internal/application/config"
	"github.com/doeshing/sns-guardian/internal/application/doctor"
	"github.com/doeshing/sns-guardian/internal/application/intercept"
	"github.com/doeshing/sns-guardian/internal/application/pipeline"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/bridge"
	"github.com/doeshing/sns-guardian/internal/infrastructure/browser"
	"github.com/doeshing/sns-guardian/internal/infrastructure/config"
	"github.com/doeshing/sns-guardian/internal/infrastructure/heuristic"
	"github.com/doeshing/sns-guardian/internal/infrastructure/platform"
	"github.com/doeshing/sns-guardian/internal/infrastructure/provider"
	"github.com/doeshing/sns-guardian/internal/pkg/eventloop"
	"github.com/doeshing/sns-guardian/internal/pkg/logger"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Config         *config.Store
	Timing         appconfig.Timing
	Logger         ports.Logger
	Loop           *eventloop.Loop
	Scorer         *heuristic.Scorer
	Platforms      *platform.Registry
	BridgeHost     *bridge.Host
	BridgeClient   *bridge.Client
	Providers      *provider.Factory
	DoctorService  *doctor.Service
	HTTPClient     *http.Client

	completers *settingsCompleters
}

// BuildContainer constructs the dependency graph. Nothing runs until Start.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		return nil, err
	}
	timing, err := appconfig.ParseTiming(cfg.Interception)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	store := config.NewStore(cfg)
	httpClient := &http.Client{Timeout: domain.DefaultHTTPClientTimeout}

	registry, err := platform.NewRegistry(cfg.PlatformsFile)
	if err != nil {
		log.Warn("platforms file unusable, using built-in adapters", map[string]interface{}{
			"path": cfg.PlatformsFile,
			"err":  err.Error(),
		})
		if registry, err = platform.NewRegistry(""); err != nil {
			return nil, err
		}
	}

	loop := eventloop.New()
	completers := newSettingsCompleters(store)

	// The host answers on its own goroutines; responses reach the client through the loop.
	var client *bridge.Client
	host := bridge.NewHost(completers, func(resp bridge.Response) {
		loop.Post(func() { client.Resolve(resp) })
	}, log)
	client = bridge.NewClient(host.Submit, timing.BridgeTimeout, log)

	scorer := heuristic.New(cfg.Heuristics)

	doctorService := &doctor.Service{
		ConfigProvider: cfgLoader,
		Platforms:      registry,
		Browser:        browser.Locator{},
		HTTPClient:     httpClient,
	}

	return &Container{
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Config:         store,
		Timing:         timing,
		Logger:         log,
		Loop:           loop,
		Scorer:         scorer,
		Platforms:      registry,
		BridgeHost:     host,
		BridgeClient:   client,
		Providers:      provider.NewFactory(httpClient, scorer, client),
		DoctorService:  doctorService,
		HTTPClient:     httpClient,
		completers:     completers,
	}, nil
}

// Start runs the page loop, the bridge host and the config watcher until ctx is done.
func (c *Container) Start(ctx context.Context) {
	go c.Loop.Run(ctx)
	go c.BridgeHost.Run(ctx)

	watcher, err := config.NewWatcher(c.ConfigLoader, c.Config, appconfig.Validate, c.Logger)
	if err != nil {
		c.Logger.Warn("config hot reload disabled", map[string]interface{}{"err": err.Error()})
		return
	}
	go func() {
		if err := watcher.Run(ctx); err != nil {
			c.Logger.Error("config watcher stopped", err, nil)
		}
	}()
}

// Orchestrator builds the pipeline driver for the given surface.
func (c *Container) Orchestrator(surface ports.DecisionSurface, progress ports.ProgressIndicator) *pipeline.Orchestrator {
	return &pipeline.Orchestrator{
		Baseline:  c.Scorer,
		Providers: c.Providers,
		Surface:   surface,
		Progress:  progress,
		Logger:    c.Logger,
	}
}

// AttachOptions fills intercept.Options for doc.
func (c *Container) AttachOptions(doc ports.Document, runner intercept.Runner) intercept.Options {
	return intercept.Options{
		Loop:     c.Loop,
		Document: doc,
		Detector: c.Platforms,
		Runner:   runner,
		Settings: c.Config,
		Debounce: c.Timing.Debounce,
		Cooldown: c.Timing.Cooldown,
		Logger:   c.Logger,
	}
}

// ServerProvider is the engine behind the reference REST backend: the LLM when a
// credential is configured, the local heuristic otherwise.
func (c *Container) ServerProvider() ports.RiskProvider {
	if c.Config.Settings().ForPage().LLMConfigured {
		return provider.NewDirect(latestCompleter{completers: c.completers})
	}
	return provider.NewLocal(c.Scorer)
}
