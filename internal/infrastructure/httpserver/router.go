// Package httpserver is the reference analysis backend the REST provider talks to.
package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

const maxRequestBytes = 64 << 10

var errBadRequest = errors.New("bad request")

// Router serves /api/v1/analysis/*.
type Router struct {
	provider ports.RiskProvider
	logger   ports.Logger
}

// NewRouter builds the handler. Page-side fetches come from the social sites themselves,
// so allowedOrigins usually lists those sites.
func NewRouter(provider ports.RiskProvider, allowedOrigins []string, logger ports.Logger) http.Handler {
	r := &Router{provider: provider, logger: logger}
	mux := chi.NewRouter()

	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)
	mux.Use(requestLogger(logger))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	health := func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}
	mux.Get("/health", health)

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Get("/health", health)
		rt.Post("/analysis/tweet", r.wrap(r.handleAnalysis))
		rt.Post("/analysis/discussion-pattern", r.wrap(r.handlePattern))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, errBadRequest):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, domain.ErrQuotaExceeded):
				writeError(w, http.StatusTooManyRequests, "quota exceeded")
			case errors.Is(err, domain.ErrTimeout):
				writeError(w, http.StatusGatewayTimeout, "analysis timed out")
			case errors.Is(err, domain.ErrConfig):
				writeError(w, http.StatusServiceUnavailable, "analysis engine not configured")
			default:
				r.logger.Error("analysis failed", err, nil)
				writeError(w, http.StatusBadGateway, "analysis failed")
			}
		}
	}
}

// POST /api/v1/analysis/tweet
// Body: {"text": "...", "platform": "x", "replying_to": "..."}
func (r *Router) handleAnalysis(w http.ResponseWriter, req *http.Request) error {
	var body domain.AnalysisRequest
	if err := decode(w, req, &body); err != nil {
		return err
	}
	result, err := r.provider.Analyze(req.Context(), body)
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}

// POST /api/v1/analysis/discussion-pattern
// Body: {"text": "...", "context": "...", "platform": "x"}
func (r *Router) handlePattern(w http.ResponseWriter, req *http.Request) error {
	var body domain.PatternRequest
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if strings.TrimSpace(body.Context) == "" {
		return fmt.Errorf("%w: context is required", errBadRequest)
	}
	result, err := r.provider.DetectPattern(req.Context(), body)
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}

func decode(w http.ResponseWriter, req *http.Request, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": status, "message": message},
	})
}
