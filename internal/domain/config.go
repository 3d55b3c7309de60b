package domain

// Config mirrors ~/.sns-guardian/config.yaml.
type Config struct {
	ConfigFormatVersion string               `yaml:"config_format_version"`
	Settings            Settings             `yaml:"settings"`
	Interception        InterceptionSettings `yaml:"interception"`
	Heuristics          HeuristicSettings    `yaml:"heuristics"`
	Server              ServerSettings       `yaml:"server"`
	Browser             BrowserSettings      `yaml:"browser"`
	PlatformsFile       string               `yaml:"platforms_file,omitempty"`
}

// InterceptionSettings tunes the watcher, interceptor and bridge timers.
// Durations use Go duration syntax ("500ms", "15s").
type InterceptionSettings struct {
	Debounce      string `yaml:"debounce"`
	Cooldown      string `yaml:"cooldown"`
	BridgeTimeout string `yaml:"bridge_timeout"`
}

// HeuristicSettings holds the word lists used by the local scorer.
type HeuristicSettings struct {
	HostileWords []string `yaml:"hostile_words"`
	DenialWords  []string `yaml:"denial_words"`
	MockeryWords []string `yaml:"mockery_words"`
	InsultWords  []string `yaml:"insult_words"`
}

// ServerSettings configures the reference analysis backend.
type ServerSettings struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// BrowserSettings configures the live browser session.
type BrowserSettings struct {
	StartURL string `yaml:"start_url"`
	Headless bool   `yaml:"headless"`
	Bin      string `yaml:"bin,omitempty"`
}
