package config

import (
	"strings"

	"github.com/doeshing/sns-guardian/internal/domain"
)

// Environment variables layered over the file.
const (
	EnvAPIURL         = "SNS_GUARDIAN_API_URL"
	EnvAPIToken       = "SNS_GUARDIAN_API_TOKEN"
	EnvProvider       = "SNS_GUARDIAN_PROVIDER"
	EnvLLMAPIKey      = "SNS_GUARDIAN_LLM_API_KEY"
	EnvLLMModel       = "SNS_GUARDIAN_LLM_MODEL"
	EnvLLMBaseURL     = "SNS_GUARDIAN_LLM_BASE_URL"
	EnvEnableAnalysis = "SNS_GUARDIAN_ENABLE_ANALYSIS"
	EnvEnablePattern  = "SNS_GUARDIAN_ENABLE_PATTERN"
	EnvDebug          = "SNS_GUARDIAN_DEBUG"

	legacyGeminiAPIKey = "SNS_GUARDIAN_GEMINI_API_KEY"
	legacyGeminiModel  = "SNS_GUARDIAN_GEMINI_MODEL"
)

// ApplyEnv overrides settings from the environment. Unset or empty variables leave the
// file value alone; unparseable booleans are ignored.
func ApplyEnv(cfg domain.Config, lookup func(string) (string, bool)) domain.Config {
	get := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v), true
			}
		}
		return "", false
	}

	s := cfg.Settings
	if v, ok := get(EnvAPIURL); ok {
		s.APIURL = v
	}
	if v, ok := get(EnvAPIToken); ok {
		s.APIToken = v
	}
	if v, ok := get(EnvProvider); ok {
		s.Provider = domain.ParseProviderKind(v)
	}
	if v, ok := get(EnvLLMAPIKey, legacyGeminiAPIKey); ok {
		s.LLMAPIKey = v
	}
	if v, ok := get(EnvLLMModel, legacyGeminiModel); ok {
		s.LLMModel = v
	}
	if v, ok := get(EnvLLMBaseURL); ok {
		s.LLMBaseURL = v
	}
	if v, ok := get(EnvEnableAnalysis); ok {
		if b, valid := ParseBool(v); valid {
			s.EnableAnalysis = b
		}
	}
	if v, ok := get(EnvEnablePattern); ok {
		if b, valid := ParseBool(v); valid {
			s.EnablePattern = b
		}
	}
	cfg.Settings = s
	return cfg
}

// ParseBool accepts 1/true/yes/on and 0/false/no/off, case-insensitively.
func ParseBool(v string) (value bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
