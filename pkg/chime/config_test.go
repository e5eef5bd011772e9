package chime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harunnryd/chime/pkg/broker"
	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/events"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chime.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestDefaultsWithoutConfigFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "pocket-tts", cfg.TTS.Backend)
	require.Equal(t, "say", cfg.TTS.FallbackBackend)
	require.Equal(t, 10.0, cfg.TTS.TimeoutSeconds)
	require.Equal(t, 0.8, cfg.Volume)
	require.Equal(t, 100, cfg.CacheMaxMB)
	require.Equal(t, 1000, cfg.CacheMaxEntries)
	require.Equal(t, broker.DefaultSpokenCharsBudget, cfg.SpokenCharsBudget)
	require.True(t, cfg.RedactSummaries)

	policy := cfg.Policy()
	require.Equal(t, broker.ModeTTS, policy.Events[events.AgentYield].Mode)
	require.Equal(t, broker.ModeEarcon, policy.Events[events.ErrorRetry].Mode)
	require.True(t, policy.Events[events.DecisionRequired].Enabled)
}

func TestExplicitFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"tts": {
			"backend": "qwen3-tts",
			"voice": "Chelsie",
			"timeout_seconds": 3.5,
			"qwen3_tts": {"endpoint": "ws://10.0.0.5:8124/synthesize"}
		},
		"volume": 0.4,
		"events": {
			"agent_yield": {"enabled": false, "mode": "tts"}
		}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "qwen3-tts", cfg.TTS.Backend)
	require.Equal(t, "Chelsie", cfg.TTS.Voice)
	require.Equal(t, 3.5, cfg.TTS.TimeoutSeconds)
	require.Equal(t, 0.4, cfg.Volume)
	require.Equal(t, "ws://10.0.0.5:8124/synthesize", cfg.TTS.SettingsFor("qwen3-tts")["endpoint"])
	require.False(t, cfg.Policy().Events[events.AgentYield].Enabled)
}

func TestMissingExplicitFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	require.True(t, errorsx.HasReason(err, errorsx.ReasonConfigLoad))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"volume out of range": `{"volume": 1.5}`,
		"negative timeout":    `{"tts": {"timeout_seconds": -1}}`,
		"unknown event type":  `{"events": {"agent_sleep": {"enabled": true}}}`,
		"bad mode":            `{"events": {"agent_yield": {"enabled": true, "mode": "shout"}}}`,
		"voicepack no path":   `{"voicepack": {"enabled": true, "manifest_path": ""}}`,
		"missing manifest":    `{"voicepack": {"enabled": true, "manifest_path": "/nowhere/manifest.json"}}`,
		"unknown backend":     `{"tts": {"backend": "no-such-backend"}}`,
		"unknown fallback":    `{"tts": {"fallback_backend": "bogus"}}`,
		"settings typo":       `{"tts": {"pocket_tts": {"endpont": "x"}}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			require.Error(t, err)
			require.True(t, errorsx.HasReason(err, errorsx.ReasonConfigValidate))
		})
	}
}

func TestValidateChecksBackendAgainstRegistry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTS.Backend = "no-such-backend"
	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, errorsx.HasReason(err, errorsx.ReasonConfigValidate))

	// Name folding matches the registry's: underscores and case fold.
	cfg.TTS.Backend = "POCKET_TTS"
	require.NoError(t, cfg.Validate())
}

func TestProjectFileWinsOverDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{"volume": 0.2}`), 0o644))
	chdir(t, dir)
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, 0.2, cfg.Volume)
	// Untouched keys keep their defaults.
	require.Equal(t, "pocket-tts", cfg.TTS.Backend)
}

func TestEnvExpansionInSettings(t *testing.T) {
	t.Setenv("CHIME_TEST_ENDPOINT", "http://10.1.1.1:8123")
	path := writeConfig(t, `{
		"tts": {"pocket_tts": {"endpoint": "${CHIME_TEST_ENDPOINT}"}},
		"cache_dir": "${CHIME_TEST_ENDPOINT}"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "http://10.1.1.1:8123", cfg.TTS.PocketTTS["endpoint"])
	require.Equal(t, "http://10.1.1.1:8123", cfg.CacheDir)
}

func TestSettingsForFoldsNameStyles(t *testing.T) {
	cfg := Config{TTS: TTSConfig{PocketTTS: map[string]any{"voice": "alba"}}}
	require.NotNil(t, cfg.TTS.SettingsFor("pocket_tts"))
	require.NotNil(t, cfg.TTS.SettingsFor("POCKET-TTS"))
	require.Nil(t, cfg.TTS.SettingsFor("unknown"))
}
