package doctor

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	appconfig "github.com/doeshing/sns-guardian/internal/application/config"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// PlatformCatalog lists the platforms the registry knows.
type PlatformCatalog interface {
	Names() []string
}

// BrowserLocator finds a browser binary for live sessions.
type BrowserLocator interface {
	Locate(configured string) (string, error)
}

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Platforms      PlatformCatalog
	Browser        BrowserLocator
	HTTPClient     *http.Client
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail(domain.CheckConfigFile, fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok(domain.CheckConfigFile, fmt.Sprintf("loaded format %s", cfg.ConfigFormatVersion)))

	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail(domain.CheckConfigValues, err.Error()))
	} else {
		checks = append(checks, ok(domain.CheckConfigValues, "valid"))
	}

	if s.Platforms != nil {
		names := s.Platforms.Names()
		if len(names) == 0 {
			checks = append(checks, fail(domain.CheckPlatforms, "no adapters loaded"))
		} else {
			checks = append(checks, ok(domain.CheckPlatforms, strings.Join(names, ", ")))
		}
	} else {
		checks = append(checks, warn(domain.CheckPlatforms, "registry not initialized"))
	}

	checks = append(checks, s.providerCheck(ctx, cfg.Settings))

	if s.Browser != nil {
		if path, err := s.Browser.Locate(cfg.Browser.Bin); err != nil {
			checks = append(checks, warn(domain.CheckBrowser, err.Error()))
		} else {
			checks = append(checks, ok(domain.CheckBrowser, path))
		}
	}

	return domain.HealthReport{Checks: checks}, nil
}

func (s *Service) providerCheck(ctx context.Context, settings domain.Settings) domain.HealthCheck {
	const name = domain.CheckProvider
	switch settings.Provider {
	case domain.ProviderLocal:
		return ok(name, "local heuristic (offline)")
	case domain.ProviderLLM:
		if !settings.ForPage().LLMConfigured {
			return warn(name, "llm selected but SNS_GUARDIAN_LLM_API_KEY missing; runs will use the local check")
		}
		return ok(name, fmt.Sprintf("llm %s via bridge", settings.LLMModel))
	case domain.ProviderAPI:
		return s.apiCheck(ctx, settings.APIURL)
	default:
		return fail(name, fmt.Sprintf("unknown provider %q", settings.Provider))
	}
}

func (s *Service) apiCheck(ctx context.Context, apiURL string) domain.HealthCheck {
	const name = domain.CheckProvider
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	endpoint := strings.TrimRight(apiURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fail(name, err.Error())
	}
	resp, err := client.Do(req)
	if err != nil {
		return warn(name, fmt.Sprintf("api unreachable at %s: %v", endpoint, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return warn(name, fmt.Sprintf("api health returned %s", resp.Status))
	}
	return ok(name, "api reachable at "+apiURL)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
