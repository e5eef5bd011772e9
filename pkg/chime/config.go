package chime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/harunnryd/chime/pkg/broker"
	"github.com/harunnryd/chime/pkg/configutil"
	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/events"
	"github.com/harunnryd/chime/pkg/voicepack"
)

// ConfigFileName is the project-local config looked up in the working
// directory before falling back to the user config.
const ConfigFileName = "chime.json"

type Config struct {
	TTS               TTSConfig                     `mapstructure:"tts"`
	Volume            float64                       `mapstructure:"volume"`
	Events            map[string]broker.EventConfig `mapstructure:"events"`
	SpokenCharsBudget int                           `mapstructure:"spoken_chars_budget"`
	CacheDir          string                        `mapstructure:"cache_dir"`
	CacheMaxMB        int                           `mapstructure:"cache_max_mb"`
	CacheMaxEntries   int                           `mapstructure:"cache_max_entries"`
	EarconsDir        string                        `mapstructure:"earcons_dir"`
	VoicePack         VoicePackConfig               `mapstructure:"voicepack"`
	LogLevel          string                        `mapstructure:"log_level"`
	RedactSummaries   bool                          `mapstructure:"redact_summaries"`
	Metrics           MetricsConfig                 `mapstructure:"metrics"`
}

type TTSConfig struct {
	Backend         string         `mapstructure:"backend"`
	FallbackBackend string         `mapstructure:"fallback_backend"`
	Voice           string         `mapstructure:"voice"`
	Instruct        string         `mapstructure:"instruct"`
	TimeoutSeconds  float64        `mapstructure:"timeout_seconds"`
	AllowDownloads  bool           `mapstructure:"allow_downloads"`
	PocketTTS       map[string]any `mapstructure:"pocket_tts"`
	Qwen3TTS        map[string]any `mapstructure:"qwen3_tts"`
	Deepgram        map[string]any `mapstructure:"deepgram"`
	Say             map[string]any `mapstructure:"say"`
	Mock            map[string]any `mapstructure:"mock"`
}

type VoicePackConfig struct {
	Enabled      bool              `mapstructure:"enabled"`
	ManifestPath string            `mapstructure:"manifest_path"`
	Routes       []voicepack.Route `mapstructure:"routes"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SettingsFor returns the settings map of the named backend.
func (t TTSConfig) SettingsFor(backend string) map[string]any {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "pocket-tts", "pocket_tts", "pocket":
		return t.PocketTTS
	case "qwen3-tts", "qwen3_tts", "qwen3":
		return t.Qwen3TTS
	case "deepgram":
		return t.Deepgram
	case "say":
		return t.Say
	case "mock":
		return t.Mock
	default:
		return nil
	}
}

// LoadConfig reads the configuration. An explicit path wins outright;
// otherwise the project-local chime.json wins over the user config
// under ~/.config/chime/. Files do not merge: the first one found is
// the whole configuration over the defaults.
func LoadConfig(explicitPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("CHIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := explicitPath
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errorsx.Wrap(fmt.Errorf("read config %s: %w", path, err), errorsx.ReasonConfigLoad)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorsx.Wrap(fmt.Errorf("unmarshal config: %w", err), errorsx.ReasonConfigLoad)
	}

	expandEnvStrings(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the built-in defaults. notify falls back to
// them when the config file is unreadable, so a bad edit cannot mute
// the agent entirely.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tts.backend", "pocket-tts")
	v.SetDefault("tts.fallback_backend", "say")
	v.SetDefault("tts.timeout_seconds", 10.0)
	v.SetDefault("tts.allow_downloads", true)
	v.SetDefault("volume", 0.8)
	v.SetDefault("spoken_chars_budget", broker.DefaultSpokenCharsBudget)
	v.SetDefault("cache_max_mb", 100)
	v.SetDefault("cache_max_entries", 1000)
	v.SetDefault("log_level", "info")
	v.SetDefault("redact_summaries", true)
	v.SetDefault("voicepack.enabled", false)
	v.SetDefault("voicepack.manifest_path", filepath.Join("voicepack", "manifest.json"))
	v.SetDefault("metrics.enabled", false)

	v.SetDefault("events.agent_yield.enabled", true)
	v.SetDefault("events.agent_yield.mode", "tts")
	v.SetDefault("events.decision_required.enabled", true)
	v.SetDefault("events.decision_required.mode", "tts")
	v.SetDefault("events.error_retry.enabled", true)
	v.SetDefault("events.error_retry.mode", "earcon")
}

// DiscoverConfigFile reports which config file an empty-path load
// would read, or "" when only defaults apply.
func DiscoverConfigFile() string {
	return findConfigFile()
}

func findConfigFile() string {
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		user := filepath.Join(home, ".config", "chime", "config.json")
		if _, err := os.Stat(user); err == nil {
			return user
		}
	}
	return ""
}

func (c *Config) Validate() error {
	fail := func(msg string, args ...any) error {
		return errorsx.Wrap(fmt.Errorf(msg, args...), errorsx.ReasonConfigValidate)
	}

	if strings.TrimSpace(c.TTS.Backend) == "" {
		return fail("tts.backend is required")
	}
	known := make(map[string]bool)
	for _, name := range DefaultRegistry().Names() {
		known[name] = true
	}
	if !known[normalizeBackendName(c.TTS.Backend)] {
		return fail("tts.backend: unknown backend %q", c.TTS.Backend)
	}
	if fb := c.TTS.FallbackBackend; fb != "" && !known[normalizeBackendName(fb)] {
		return fail("tts.fallback_backend: unknown backend %q", fb)
	}
	for name, settings := range map[string]map[string]any{
		"pocket-tts": c.TTS.PocketTTS,
		"qwen3-tts":  c.TTS.Qwen3TTS,
		"deepgram":   c.TTS.Deepgram,
		"say":        c.TTS.Say,
		"mock":       c.TTS.Mock,
	} {
		if len(settings) == 0 {
			continue
		}
		schema, err := configutil.BackendSchema(name)
		if err != nil {
			continue
		}
		if err := configutil.ValidateSettings(settings, schema); err != nil {
			return fail("tts.%s settings: %v", strings.ReplaceAll(name, "-", "_"), err)
		}
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fail("volume must be within 0.0..1.0, got %v", c.Volume)
	}
	if c.TTS.TimeoutSeconds < 0 {
		return fail("tts.timeout_seconds must not be negative")
	}
	if c.CacheMaxMB < 0 || c.CacheMaxEntries < 0 {
		return fail("cache bounds must not be negative")
	}
	for name, ec := range c.Events {
		if _, err := events.ParseType(name); err != nil {
			return fail("events.%s: unknown event type", name)
		}
		switch ec.Mode {
		case broker.ModeTTS, broker.ModeEarcon, broker.ModeSilent, "":
		default:
			return fail("events.%s.mode must be tts, earcon or silent", name)
		}
	}
	if c.VoicePack.Enabled {
		if strings.TrimSpace(c.VoicePack.ManifestPath) == "" {
			return fail("voicepack.manifest_path is required when voicepack.enabled")
		}
		if _, err := os.Stat(c.VoicePack.ManifestPath); err != nil {
			return fail("voicepack.manifest_path: %v", err)
		}
		if err := voicepack.ValidateRoutes(c.VoicePack.Routes); err != nil {
			return fail("voicepack.routes: %v", err)
		}
	}
	return nil
}

// Policy translates the event map into the broker's typed view.
func (c *Config) Policy() broker.Policy {
	policy := broker.Policy{
		Events:            make(map[events.Type]broker.EventConfig, len(c.Events)),
		SpokenCharsBudget: c.SpokenCharsBudget,
	}
	for name, ec := range c.Events {
		t, err := events.ParseType(name)
		if err != nil {
			continue
		}
		if ec.Mode == "" {
			ec.Mode = broker.ModeTTS
		}
		policy.Events[t] = ec
	}
	return policy
}

// ResolvedCacheDir applies the default location under the user cache
// directory when cache_dir is unset.
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "chime", "tts")
	}
	return filepath.Join(os.TempDir(), "chime-tts")
}

// ResolvedMetricsPath applies the default sink location under the
// cache directory when metrics.path is unset.
func (c *Config) ResolvedMetricsPath() string {
	if c.Metrics.Path != "" {
		return c.Metrics.Path
	}
	return filepath.Join(c.ResolvedCacheDir(), "metrics.jsonl")
}

func expandEnvStrings(cfg *Config) {
	cfg.CacheDir = os.ExpandEnv(cfg.CacheDir)
	cfg.EarconsDir = os.ExpandEnv(cfg.EarconsDir)
	cfg.VoicePack.ManifestPath = os.ExpandEnv(cfg.VoicePack.ManifestPath)
	cfg.Metrics.Path = os.ExpandEnv(cfg.Metrics.Path)
	cfg.TTS.PocketTTS = expandSettings(cfg.TTS.PocketTTS)
	cfg.TTS.Qwen3TTS = expandSettings(cfg.TTS.Qwen3TTS)
	cfg.TTS.Deepgram = expandSettings(cfg.TTS.Deepgram)
	cfg.TTS.Say = expandSettings(cfg.TTS.Say)
	cfg.TTS.Mock = expandSettings(cfg.TTS.Mock)
}

func expandSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	for k, v := range settings {
		settings[k] = expandAny(v)
	}
	return settings
}

func expandAny(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandAny(val[i])
		}
		return val
	case map[string]any:
		for k, v := range val {
			val[k] = expandAny(v)
		}
		return val
	default:
		return v
	}
}
