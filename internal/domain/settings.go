package domain

import "strings"

// ProviderKind selects which risk provider backs the advanced analysis.
type ProviderKind string

const (
	ProviderAPI   ProviderKind = "api"
	ProviderLLM   ProviderKind = "llm"
	ProviderLocal ProviderKind = "local"
)

// ParseProviderKind maps user input to a ProviderKind. Unknown values fall back to local,
// the only provider that never needs network access.
func ParseProviderKind(value string) ProviderKind {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "api", "rest":
		return ProviderAPI
	case "llm", "gemini", "openai":
		return ProviderLLM
	default:
		return ProviderLocal
	}
}

// Valid reports whether k is one of the known provider kinds.
func (k ProviderKind) Valid() bool {
	switch k {
	case ProviderAPI, ProviderLLM, ProviderLocal:
		return true
	default:
		return false
	}
}

// Settings is the user-editable configuration consumed by a pipeline run.
// It is replaced wholesale on edit and never mutated in place.
type Settings struct {
	APIURL         string       `yaml:"api_url"`
	APIToken       string       `yaml:"api_token,omitempty"`
	Provider       ProviderKind `yaml:"provider"`
	LLMAPIKey      string       `yaml:"llm_api_key,omitempty"`
	LLMModel       string       `yaml:"llm_model"`
	LLMBaseURL     string       `yaml:"llm_base_url,omitempty"`
	EnableAnalysis bool         `yaml:"enable_analysis"`
	EnablePattern  bool         `yaml:"enable_pattern"`

	// Revision is assigned by the settings store on every replace. Zero means unstored.
	Revision uint64 `yaml:"-"`
}

// PageSettings is the snapshot handed to the page-facing side. It never carries the LLM credential.
type PageSettings struct {
	APIURL         string
	APIToken       string
	Provider       ProviderKind
	LLMModel       string
	LLMConfigured  bool
	EnableAnalysis bool
	EnablePattern  bool
	Revision       uint64
}

// ForPage strips the secret credential and records only whether one is present.
func (s Settings) ForPage() PageSettings {
	return PageSettings{
		APIURL:         s.APIURL,
		APIToken:       s.APIToken,
		Provider:       s.Provider,
		LLMModel:       s.LLMModel,
		LLMConfigured:  strings.TrimSpace(s.LLMAPIKey) != "",
		EnableAnalysis: s.EnableAnalysis,
		EnablePattern:  s.EnablePattern,
		Revision:       s.Revision,
	}
}

// Masked returns a copy safe to print.
func (s Settings) Masked() Settings {
	s.LLMAPIKey = maskSecret(s.LLMAPIKey)
	s.APIToken = maskSecret(s.APIToken)
	return s
}

// RemoteEnabled reports whether the advanced analysis step should call a remote provider.
func (p PageSettings) RemoteEnabled() bool {
	return p.EnableAnalysis && p.Provider != ProviderLocal
}

// RemotePatternEnabled reports whether pattern detection should call a remote provider.
func (p PageSettings) RemotePatternEnabled() bool {
	return p.EnablePattern && p.Provider != ProviderLocal
}

func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
