package doctor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doeshing/sns-guardian/internal/domain"
)

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) { return s.cfg, s.err }

type stubPlatforms []string

func (s stubPlatforms) Names() []string { return s }

type stubBrowser struct{ err error }

func (s stubBrowser) Locate(string) (string, error) { return "/usr/bin/chromium", s.err }

func find(report domain.HealthReport, name string) domain.HealthCheck {
	for _, c := range report.Checks {
		if c.Name == name {
			return c
		}
	}
	return domain.HealthCheck{}
}

func baseConfig(provider domain.ProviderKind, apiURL string) domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Settings:            domain.Settings{Provider: provider, APIURL: apiURL},
		Server:              domain.ServerSettings{Addr: ":8000"},
	}
}

func TestDoctorReportsHealthyAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := &Service{
		ConfigProvider: stubConfig{cfg: baseConfig(domain.ProviderAPI, srv.URL+"/api/v1")},
		Platforms:      stubPlatforms{"x", "mastodon"},
		Browser:        stubBrowser{},
		HTTPClient:     srv.Client(),
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, name := range []string{domain.CheckConfigFile, domain.CheckConfigValues, domain.CheckPlatforms, domain.CheckProvider, domain.CheckBrowser} {
		if got := find(report, name); got.Status != domain.HealthOK {
			t.Fatalf("%s = %+v", name, got)
		}
	}
	if report.Worst() != domain.HealthOK {
		t.Fatalf("Worst() = %s", report.Worst())
	}
}

func TestDoctorWarnsOnMissingLLMKey(t *testing.T) {
	svc := &Service{
		ConfigProvider: stubConfig{cfg: baseConfig(domain.ProviderLLM, domain.DefaultAPIURL)},
		Browser:        stubBrowser{err: errors.New("no browser found")},
	}
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := find(report, "Provider"); got.Status != domain.HealthWarn {
		t.Fatalf("Provider = %+v", got)
	}
	if got := find(report, "Browser"); got.Status != domain.HealthWarn {
		t.Fatalf("Browser = %+v", got)
	}
	if got := find(report, "Platforms"); got.Status != domain.HealthWarn {
		t.Fatalf("Platforms = %+v", got)
	}
	if report.Worst() != domain.HealthWarn {
		t.Fatalf("Worst() = %s, want warn", report.Worst())
	}
}

func TestDoctorStopsOnConfigError(t *testing.T) {
	svc := &Service{ConfigProvider: stubConfig{err: errors.New("denied")}}
	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if len(report.Checks) != 1 || report.Checks[0].Status != domain.HealthError {
		t.Fatalf("report = %+v", report)
	}
}
