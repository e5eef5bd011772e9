package chime

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/harunnryd/chime/pkg/providers/deepgram"
	"github.com/harunnryd/chime/pkg/providers/mock"
	"github.com/harunnryd/chime/pkg/providers/pocket"
	"github.com/harunnryd/chime/pkg/providers/qwen3"
	"github.com/harunnryd/chime/pkg/providers/say"
	"github.com/harunnryd/chime/pkg/synth"
)

// BackendFactory builds a backend from its settings map.
type BackendFactory func(settings map[string]any, logger *slog.Logger) (synth.Backend, error)

// BackendRegistry maps backend names to factories. Names are matched
// case-insensitively with underscores and hyphens folded together.
type BackendRegistry struct {
	factories map[string]BackendFactory
}

func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{factories: make(map[string]BackendFactory)}
}

func (r *BackendRegistry) Register(name string, factory BackendFactory) {
	r.factories[normalizeBackendName(name)] = factory
}

// Names returns the registered backend names, unordered.
func (r *BackendRegistry) Names() []string {
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	return out
}

// Build constructs the named backend using its settings from cfg.
func (r *BackendRegistry) Build(name string, cfg Config, logger *slog.Logger) (synth.Backend, error) {
	factory := r.factories[normalizeBackendName(name)]
	if factory == nil {
		return nil, fmt.Errorf("backend not registered: %s", name)
	}
	return factory(cfg.TTS.SettingsFor(name), logger)
}

func normalizeBackendName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, "_", "-")
}

// DefaultRegistry registers every built-in backend.
func DefaultRegistry() *BackendRegistry {
	r := NewBackendRegistry()
	r.Register("pocket-tts", func(settings map[string]any, logger *slog.Logger) (synth.Backend, error) {
		return pocket.New(settings, logger)
	})
	r.Register("qwen3-tts", func(settings map[string]any, logger *slog.Logger) (synth.Backend, error) {
		return qwen3.New(settings, logger)
	})
	r.Register("deepgram", func(settings map[string]any, logger *slog.Logger) (synth.Backend, error) {
		return deepgram.New(settings, logger)
	})
	r.Register("say", func(settings map[string]any, logger *slog.Logger) (synth.Backend, error) {
		return say.New(settings, logger)
	})
	r.Register("mock", func(settings map[string]any, logger *slog.Logger) (synth.Backend, error) {
		return mock.New(settings)
	})
	return r
}
