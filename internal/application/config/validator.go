package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/doeshing/sns-guardian/internal/domain"
)

// Timing is the parsed form of the interception section.
type Timing struct {
	Debounce      time.Duration
	Cooldown      time.Duration
	BridgeTimeout time.Duration
}

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateSettings(cfg.Settings); err != nil {
		return err
	}
	if _, err := ParseTiming(cfg.Interception); err != nil {
		return err
	}
	if err := validateServer(cfg.Server); err != nil {
		return err
	}
	if cfg.Browser.StartURL != "" {
		if _, err := url.Parse(cfg.Browser.StartURL); err != nil {
			return fmt.Errorf("browser.start_url invalid: %w", err)
		}
	}
	return nil
}

// ParseTiming converts the interception durations, applying defaults for empty values.
func ParseTiming(in domain.InterceptionSettings) (Timing, error) {
	debounce, err := parseDuration("interception.debounce", in.Debounce, domain.DefaultDebounce)
	if err != nil {
		return Timing{}, err
	}
	cooldown, err := parseDuration("interception.cooldown", in.Cooldown, domain.DefaultCooldown)
	if err != nil {
		return Timing{}, err
	}
	timeout, err := parseDuration("interception.bridge_timeout", in.BridgeTimeout, domain.DefaultBridgeTimeout)
	if err != nil {
		return Timing{}, err
	}
	return Timing{Debounce: debounce, Cooldown: cooldown, BridgeTimeout: timeout}, nil
}

func validateSettings(s domain.Settings) error {
	if !s.Provider.Valid() {
		return fmt.Errorf("settings.provider must be api|llm|local, got %q", s.Provider)
	}
	if s.Provider == domain.ProviderAPI {
		if strings.TrimSpace(s.APIURL) == "" {
			return errors.New("settings.api_url must be set when provider is api")
		}
		if err := absoluteURL(s.APIURL); err != nil {
			return fmt.Errorf("settings.api_url invalid: %w", err)
		}
	}
	if s.LLMBaseURL != "" {
		if err := absoluteURL(s.LLMBaseURL); err != nil {
			return fmt.Errorf("settings.llm_base_url invalid: %w", err)
		}
	}
	return nil
}

func validateServer(server domain.ServerSettings) error {
	if server.Addr == "" {
		return errors.New("server.addr must be set")
	}
	for _, origin := range server.AllowedOrigins {
		if origin != "*" {
			if err := absoluteURL(origin); err != nil {
				return fmt.Errorf("server.allowed_origins entry %q invalid: %w", origin, err)
			}
		}
	}
	return nil
}

func parseDuration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s invalid: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be > 0", field)
	}
	return d, nil
}

func absoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("host missing")
	}
	return nil
}
