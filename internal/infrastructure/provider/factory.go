package provider

import (
	"fmt"
	"net/http"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/bridge"
	"github.com/doeshing/sns-guardian/internal/infrastructure/heuristic"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// Factory builds the provider a run's settings ask for.
type Factory struct {
	httpClient *http.Client
	scorer     *heuristic.Scorer
	bridge     *bridge.Client
}

// NewFactory wires the shared HTTP client, scorer and bridge client. bridgeClient may be nil,
// in which case the LLM provider reports domain.ErrConfig.
func NewFactory(httpClient *http.Client, scorer *heuristic.Scorer, bridgeClient *bridge.Client) *Factory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: domain.DefaultHTTPClientTimeout}
	}
	return &Factory{httpClient: httpClient, scorer: scorer, bridge: bridgeClient}
}

// ForSettings implements ports.ProviderFactory. Every call returns a fresh provider, so an
// LLM provider's bridge session belongs to exactly one run.
func (f *Factory) ForSettings(settings domain.PageSettings) (ports.RiskProvider, error) {
	switch settings.Provider {
	case domain.ProviderLocal:
		return NewLocal(f.scorer), nil
	case domain.ProviderAPI:
		return NewREST(settings.APIURL, settings.APIToken, f.httpClient)
	case domain.ProviderLLM:
		var session *bridge.Session
		if f.bridge != nil {
			session = bridge.NewSession(f.bridge, settings.Revision)
		}
		return NewLLM(settings.LLMConfigured, session), nil
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", domain.ErrConfig, settings.Provider)
	}
}

var _ ports.ProviderFactory = (*Factory)(nil)
