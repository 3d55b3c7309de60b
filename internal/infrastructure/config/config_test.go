package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/pkg/logger"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path).WithEnv(envMap(nil))

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderLocal, cfg.Settings.Provider)
	assert.Equal(t, domain.DefaultAPIURL, cfg.Settings.APIURL)
	assert.True(t, cfg.Settings.EnableAnalysis)
	assert.Equal(t, "500ms", cfg.Interception.Debounce)
	assert.NotEmpty(t, cfg.Heuristics.HostileWords)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(domain.SecureFilePermissions), info.Mode().Perm())
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  provider: api\n  enable_pattern: true\n"), 0o600))

	loader := NewFileLoader(path).WithEnv(envMap(map[string]string{
		EnvProvider:        "gemini",
		legacyGeminiAPIKey: "legacy-key",
		EnvLLMModel:        "gemini-2.0-flash",
		EnvEnablePattern:   "off",
		EnvEnableAnalysis:  "maybe",
	}))

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderLLM, cfg.Settings.Provider)
	assert.Equal(t, "legacy-key", cfg.Settings.LLMAPIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.Settings.LLMModel)
	assert.False(t, cfg.Settings.EnablePattern)
	assert.False(t, cfg.Settings.EnableAnalysis, "unparseable bool leaves file value")
	assert.Equal(t, domain.DefaultLLMBaseURL, cfg.Settings.LLMBaseURL)
}

func TestNewKeyWinsOverLegacy(t *testing.T) {
	cfg := ApplyEnv(domain.Config{}, envMap(map[string]string{
		EnvLLMAPIKey:       "new",
		legacyGeminiAPIKey: "old",
	}))
	assert.Equal(t, "new", cfg.Settings.LLMAPIKey)
}

func TestConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	loader := NewFileLoader("").WithEnv(envMap(map[string]string{EnvConfigPath: filepath.Join(dir, "c.yaml")}))
	assert.Equal(t, filepath.Join(dir, "c.yaml"), loader.Path())
}

func TestParseBool(t *testing.T) {
	for _, in := range []string{"1", "TRUE", "yes", "On"} {
		v, ok := ParseBool(in)
		assert.True(t, ok && v, in)
	}
	for _, in := range []string{"0", "false", "NO", "off"} {
		v, ok := ParseBool(in)
		assert.True(t, ok && !v, in)
	}
	_, ok := ParseBool("sometimes")
	assert.False(t, ok)
}

func TestStoreReplaceIsWholesale(t *testing.T) {
	store := NewStore(domain.Config{Settings: domain.Settings{Provider: domain.ProviderAPI}})
	snapshot := store.Settings()

	store.Replace(domain.Config{Settings: domain.Settings{Provider: domain.ProviderLLM}})

	assert.Equal(t, domain.ProviderAPI, snapshot.Provider)
	assert.Equal(t, domain.ProviderLLM, store.Settings().Provider)
	assert.Greater(t, store.Settings().Revision, snapshot.Revision)
}

func TestStoreKeepsRecentRevisions(t *testing.T) {
	store := NewStore(domain.Config{Settings: domain.Settings{LLMModel: "m1"}})
	first := store.Settings().Revision

	store.Replace(domain.Config{Settings: domain.Settings{LLMModel: "m2"}})

	old, ok := store.SettingsAt(first)
	require.True(t, ok)
	assert.Equal(t, "m1", old.LLMModel)
	assert.Equal(t, first, old.Revision)

	for i := 0; i < revisionHistory; i++ {
		store.Replace(domain.Config{Settings: domain.Settings{LLMModel: "later"}})
	}
	_, ok = store.SettingsAt(first)
	assert.False(t, ok, "revision older than the history window should be gone")

	latest, ok := store.SettingsAt(store.Settings().Revision)
	require.True(t, ok)
	assert.Equal(t, "later", latest.LLMModel)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path).WithEnv(envMap(nil))
	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	store := NewStore(cfg)

	w, err := NewWatcher(loader, store, nil, logger.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	cfg.Settings.Provider = domain.ProviderAPI
	require.NoError(t, writeDefault(path, cfg))

	assert.Eventually(t, func() bool {
		return store.Settings().Provider == domain.ProviderAPI
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcherKeepsSettingsWhenInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path).WithEnv(envMap(nil))
	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	store := NewStore(cfg)

	reject := func(domain.Config) error { return errors.New("nope") }
	w, err := NewWatcher(loader, store, reject, logger.Nop())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	changed := cfg
	changed.Settings.Provider = domain.ProviderAPI
	require.NoError(t, writeDefault(path, changed))

	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, domain.ProviderLocal, store.Settings().Provider)
}
