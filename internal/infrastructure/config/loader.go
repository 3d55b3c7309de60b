package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/sns-guardian/assets"
	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/pkg/filesystem"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "SNS_GUARDIAN_CONFIG"

// FileLoader loads YAML configuration from ~/.sns-guardian/config.yaml (overridable via
// SNS_GUARDIAN_CONFIG) and layers SNS_GUARDIAN_* environment overrides on top.
type FileLoader struct {
	overridePath string
	lookupEnv    func(string) (string, bool)
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, lookupEnv: os.LookupEnv}
}

// WithEnv replaces the environment lookup, for tests.
func (l *FileLoader) WithEnv(lookup func(string) (string, bool)) *FileLoader {
	l.lookupEnv = lookup
	return l
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	cfg, err := l.LoadFile()
	if err != nil {
		return domain.Config{}, err
	}
	return ApplyEnv(cfg, l.lookupEnv), nil
}

// LoadFile reads the file without environment overrides, writing defaults when missing.
func (l *FileLoader) LoadFile() (domain.Config, error) {
	path := l.Path()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg, err := DefaultConfig()
			if err != nil {
				return domain.Config{}, err
			}
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return hydrateDefaults(cfg), nil
}

// Path is the resolved config file location.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom, ok := l.lookupEnv(EnvConfigPath); ok && custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".sns-guardian", "config.yaml")
}

// DefaultConfig parses the embedded default configuration.
func DefaultConfig() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse embedded defaults: %w", err)
	}
	return hydrateDefaults(cfg), nil
}

func ensureConfigDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Settings.APIURL == "" {
		cfg.Settings.APIURL = domain.DefaultAPIURL
	}
	if cfg.Settings.Provider == "" {
		cfg.Settings.Provider = domain.ProviderLocal
	}
	if cfg.Settings.LLMModel == "" {
		cfg.Settings.LLMModel = domain.DefaultLLMModel
	}
	if cfg.Settings.LLMBaseURL == "" {
		cfg.Settings.LLMBaseURL = domain.DefaultLLMBaseURL
	}
	if cfg.Interception.Debounce == "" {
		cfg.Interception.Debounce = domain.DefaultDebounce.String()
	}
	if cfg.Interception.Cooldown == "" {
		cfg.Interception.Cooldown = domain.DefaultCooldown.String()
	}
	if cfg.Interception.BridgeTimeout == "" {
		cfg.Interception.BridgeTimeout = domain.DefaultBridgeTimeout.String()
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServerAddr
	}
	if cfg.Browser.StartURL == "" {
		cfg.Browser.StartURL = domain.DefaultStartURL
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
