package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/bridge"
	"github.com/doeshing/sns-guardian/internal/ports"
)

type llmProvider struct {
	configured bool
	session    *bridge.Session
}

// NewLLM returns the provider that reaches the LLM through the bridge. The page side only
// knows whether a credential exists; when it does not, calls fail before touching the bridge.
func NewLLM(configured bool, session *bridge.Session) ports.RiskProvider {
	return &llmProvider{configured: configured, session: session}
}

func (p *llmProvider) Name() string {
	return string(domain.ProviderLLM)
}

func (p *llmProvider) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	if err := p.ready(); err != nil {
		return domain.AnalysisResult{}, err
	}
	return p.session.Analyze(ctx, req)
}

func (p *llmProvider) DetectPattern(ctx context.Context, req domain.PatternRequest) (domain.PatternResult, error) {
	if err := p.ready(); err != nil {
		return domain.PatternResult{}, err
	}
	return p.session.DetectPattern(ctx, req)
}

func (p *llmProvider) ready() error {
	if !p.configured {
		return fmt.Errorf("%w: llm api key not set", domain.ErrConfig)
	}
	if p.session == nil {
		return fmt.Errorf("%w: bridge unavailable", domain.ErrConfig)
	}
	return nil
}

type directProvider struct {
	completer bridge.Completer
}

// NewDirect returns an LLM provider that calls completer in-process. The analysis server
// uses it; it holds the credential itself, so there is no bridge in between.
func NewDirect(completer bridge.Completer) ports.RiskProvider {
	return &directProvider{completer: completer}
}

func (p *directProvider) Name() string {
	return string(domain.ProviderLLM)
}

func (p *directProvider) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	out, err := p.completer.Analysis(ctx, req.Text, req.ReplyingTo)
	if err != nil {
		return domain.AnalysisResult{}, err
	}
	return bridge.DecodeAnalysis(quote(out))
}

func (p *directProvider) DetectPattern(ctx context.Context, req domain.PatternRequest) (domain.PatternResult, error) {
	out, err := p.completer.Pattern(ctx, req.Text, req.Context, req.Platform)
	if err != nil {
		return domain.PatternResult{}, err
	}
	return bridge.DecodePattern(quote(out))
}

// quote wraps model text as a JSON string unless it already is valid JSON.
func quote(out string) []byte {
	if json.Valid([]byte(out)) {
		return []byte(out)
	}
	b, _ := json.Marshal(out)
	return b
}
