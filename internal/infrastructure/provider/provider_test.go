package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/infrastructure/heuristic"
)

func newREST(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestRESTAnalyzeSendsContract(t *testing.T) {
	srv := newREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/analysis/tweet", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])
		assert.Equal(t, "x", body["platform"])
		assert.Equal(t, "parent", body["replying_to"])

		_, _ = w.Write([]byte(`{"risk_level":"high","risk_score":0.7,"risk_factors":["tone"],"suggestions":["wait"]}`))
	})

	p, err := NewREST(srv.URL+"/api/v1/", "tok", srv.Client())
	require.NoError(t, err)

	got, err := p.Analyze(context.Background(), domain.AnalysisRequest{Text: "hello", Platform: "x", ReplyingTo: "parent"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, got.RiskLevel)
	assert.Equal(t, 0.7, got.RiskScore)
	assert.Equal(t, domain.ProvenanceAPI, got.Provenance)
}

func TestRESTOmitsEmptyReply(t *testing.T) {
	srv := newREST(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["replying_to"]
		assert.False(t, present)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"risk_score":0.1}`))
	})

	p, err := NewREST(srv.URL, "", srv.Client())
	require.NoError(t, err)
	got, err := p.Analyze(context.Background(), domain.AnalysisRequest{Text: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, got.RiskLevel)
}

func TestRESTErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"quota", http.StatusTooManyRequests, `{}`, domain.ErrQuotaExceeded},
		{"server error", http.StatusInternalServerError, `{}`, domain.ErrTransport},
		{"bad json", http.StatusOK, `not json`, domain.ErrParse},
		{"missing field", http.StatusOK, `{"pattern_type":"x"}`, domain.ErrParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newREST(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/analysis/discussion-pattern", r.URL.Path)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			p, err := NewREST(srv.URL, "", srv.Client())
			require.NoError(t, err)

			_, err = p.DetectPattern(context.Background(), domain.PatternRequest{Text: "a", Context: "b", Platform: "x"})
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestRESTTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p, err := NewREST(url, "", http.DefaultClient)
	require.NoError(t, err)
	_, err = p.Analyze(context.Background(), domain.AnalysisRequest{Text: "a"})
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestNewRESTRequiresURL(t *testing.T) {
	_, err := NewREST(" ", "", nil)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLLMWithoutCredentialFailsFast(t *testing.T) {
	p := NewLLM(false, nil)
	_, err := p.Analyze(context.Background(), domain.AnalysisRequest{Text: "a"})
	assert.ErrorIs(t, err, domain.ErrConfig)
	_, err = p.DetectPattern(context.Background(), domain.PatternRequest{Text: "a"})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestFactorySelectsProvider(t *testing.T) {
	f := NewFactory(nil, heuristic.New(domain.HeuristicSettings{}), nil)

	cases := map[domain.ProviderKind]string{
		domain.ProviderLocal: "local",
		domain.ProviderAPI:   "api",
		domain.ProviderLLM:   "llm",
	}
	for kind, want := range cases {
		p, err := f.ForSettings(domain.PageSettings{Provider: kind, APIURL: domain.DefaultAPIURL})
		require.NoError(t, err)
		assert.Equal(t, want, p.Name())
	}

	_, err := f.ForSettings(domain.PageSettings{Provider: "carrier-pigeon"})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLocalNeverFails(t *testing.T) {
	p := NewLocal(nil)
	got, err := p.Analyze(context.Background(), domain.AnalysisRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceLocal, got.Provenance)
}

type fencedCompleter struct{}

func (fencedCompleter) Analysis(context.Context, string, string) (string, error) {
	return "```json\n{\"risk_level\":\"high\",\"risk_score\":0.8}\n```", nil
}

func (fencedCompleter) Pattern(context.Context, string, string, string) (string, error) {
	return "", errors.New("boom")
}

func TestDirectDecodesFencedReply(t *testing.T) {
	p := NewDirect(fencedCompleter{})
	got, err := p.Analyze(context.Background(), domain.AnalysisRequest{Text: "a"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, got.RiskLevel)
	assert.Equal(t, domain.ProvenanceLLM, got.Provenance)

	_, err = p.DetectPattern(context.Background(), domain.PatternRequest{Text: "a"})
	assert.Error(t, err)
}
