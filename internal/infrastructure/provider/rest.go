package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

const (
	analysisPath = "/analysis/tweet"
	patternPath  = "/analysis/discussion-pattern"
	maxBodyBytes = 1 << 20
)

type restProvider struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewREST returns the provider backed by the analysis REST API rooted at baseURL.
func NewREST(baseURL, token string, client *http.Client) (ports.RiskProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: api_url not set", domain.ErrConfig)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: api_url invalid: %v", domain.ErrConfig, err)
	}
	return &restProvider{baseURL: baseURL, token: token, httpClient: client}, nil
}

func (p *restProvider) Name() string {
	return string(domain.ProviderAPI)
}

type analysisBody struct {
	RiskLevel   domain.RiskLevel `json:"risk_level"`
	RiskScore   *float64         `json:"risk_score"`
	RiskFactors []string         `json:"risk_factors"`
	Suggestions []string         `json:"suggestions"`
}

type patternBody struct {
	HasPattern  *bool    `json:"has_pattern"`
	PatternType string   `json:"pattern_type"`
	Confidence  *float64 `json:"confidence"`
	Explanation string   `json:"explanation"`
}

func (p *restProvider) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	var body analysisBody
	if err := p.post(ctx, analysisPath, req, &body); err != nil {
		return domain.AnalysisResult{}, err
	}
	if body.RiskLevel == "" && body.RiskScore == nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: risk_level missing", domain.ErrParse)
	}
	return domain.AnalysisResult{
		RiskLevel:   body.RiskLevel,
		RiskScore:   scoreOf(body.RiskLevel, body.RiskScore),
		RiskFactors: body.RiskFactors,
		Suggestions: body.Suggestions,
		Provenance:  domain.ProvenanceAPI,
	}.Normalize(), nil
}

func (p *restProvider) DetectPattern(ctx context.Context, req domain.PatternRequest) (domain.PatternResult, error) {
	var body patternBody
	if err := p.post(ctx, patternPath, req, &body); err != nil {
		return domain.PatternResult{}, err
	}
	if body.HasPattern == nil {
		return domain.PatternResult{}, fmt.Errorf("%w: has_pattern missing", domain.ErrParse)
	}
	result := domain.PatternResult{
		HasPattern:  *body.HasPattern,
		PatternType: body.PatternType,
		Explanation: body.Explanation,
		Provenance:  domain.ProvenanceAPI,
	}
	if body.Confidence != nil {
		result.Confidence = *body.Confidence
	}
	return result.Normalize(), nil
}

func (p *restProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", domain.ErrTransport, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if p.token != "" {
		httpReq.Header.Set("authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTransport, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s: %s", domain.ErrTransport, path, resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrTransport, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return nil
}

// scoreOf falls back to the level's band when the reply carries no score.
func scoreOf(level domain.RiskLevel, score *float64) float64 {
	if score == nil {
		return domain.ScoreForLevel(level)
	}
	return *score
}
