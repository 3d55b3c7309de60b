package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/provider"
	"github.com/doeshing/sns-guardian/internal/pkg/logger"
)

type failingProvider struct{ err error }

func (f failingProvider) Name() string { return "failing" }

func (f failingProvider) Analyze(context.Context, domain.AnalysisRequest) (domain.AnalysisResult, error) {
	return domain.AnalysisResult{}, f.err
}

func (f failingProvider) DetectPattern(context.Context, domain.PatternRequest) (domain.PatternResult, error) {
	return domain.PatternResult{}, f.err
}

func TestRESTProviderAgainstRouter(t *testing.T) {
	srv := httptest.NewServer(NewRouter(provider.NewLocal(nil), []string{"https://x.com"}, logger.Nop()))
	defer srv.Close()

	p, err := provider.NewREST(srv.URL+"/api/v1", "", srv.Client())
	require.NoError(t, err)

	analysis, err := p.Analyze(context.Background(), domain.AnalysisRequest{Text: "最低 http://a", Platform: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskMedium, analysis.RiskLevel)

	pattern, err := p.DetectPattern(context.Background(), domain.PatternRequest{Text: "lol", Context: "fake", Platform: "x"})
	require.NoError(t, err)
	assert.True(t, pattern.HasPattern)
}

func TestPatternRequiresContext(t *testing.T) {
	handler := NewRouter(provider.NewLocal(nil), nil, logger.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/discussion-pattern", strings.NewReader(`{"text":"a"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuotaMapsTo429(t *testing.T) {
	handler := NewRouter(failingProvider{err: fmt.Errorf("%w: upstream", domain.ErrQuotaExceeded)}, nil, logger.Nop())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/tweet", strings.NewReader(`{"text":"a"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":429`)
}

func TestCORSPreflight(t *testing.T) {
	handler := NewRouter(provider.NewLocal(nil), []string{"https://x.com"}, logger.Nop())
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analysis/tweet", nil)
	req.Header.Set("Origin", "https://x.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "https://x.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	handler := NewRouter(provider.NewLocal(nil), nil, logger.Nop())
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
