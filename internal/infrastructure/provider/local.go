package provider

import (
	"context"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/heuristic"
	"github.com/doeshing/sns-guardian/internal/ports"
)

type localProvider struct {
	scorer *heuristic.Scorer
}

// NewLocal returns the offline provider. It never fails.
func NewLocal(scorer *heuristic.Scorer) ports.RiskProvider {
	if scorer == nil {
		scorer = heuristic.New(domain.HeuristicSettings{})
	}
	return &localProvider{scorer: scorer}
}

func (p *localProvider) Name() string {
	return string(domain.ProviderLocal)
}

func (p *localProvider) Analyze(_ context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	return p.scorer.Analyze(req), nil
}

func (p *localProvider) DetectPattern(_ context.Context, req domain.PatternRequest) (domain.PatternResult, error) {
	return p.scorer.DetectPattern(req), nil
}
