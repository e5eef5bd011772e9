// Package chime wires configuration, backends, broker and renderer
// into the notify driver behind the CLI.
package chime

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/harunnryd/chime/pkg/broker"
	"github.com/harunnryd/chime/pkg/cache"
	"github.com/harunnryd/chime/pkg/errorsx"
	"github.com/harunnryd/chime/pkg/events"
	"github.com/harunnryd/chime/pkg/logging"
	"github.com/harunnryd/chime/pkg/metrics"
	"github.com/harunnryd/chime/pkg/redact"
	"github.com/harunnryd/chime/pkg/renderer"
	"github.com/harunnryd/chime/pkg/resilience"
	"github.com/harunnryd/chime/pkg/synth"
	"github.com/harunnryd/chime/pkg/voicepack"
)

// Notifier runs one notification end to end. A notification that
// cannot sound is logged and dropped; the agent's hook must never see
// a failure for an audio problem.
type Notifier struct {
	Config   Config
	Registry *BackendRegistry
	Observer metrics.Observer
	Renderer *renderer.Renderer
	Logger   *slog.Logger

	rng *rand.Rand
}

func NewNotifier(cfg Config, registry *BackendRegistry, observer metrics.Observer, base *slog.Logger) *Notifier {
	if observer == nil {
		observer = metrics.NoopObserver{}
	}
	logger := logging.NewComponentLogger(base, "notify")
	return &Notifier{
		Config:   cfg,
		Registry: registry,
		Observer: observer,
		Renderer: renderer.New(cfg.Volume, cfg.EarconsDir, observer, logger),
		Logger:   logger,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run resolves and plays one event. Only a broken setup (an unknown
// backend name) is an error; synthesis and playback failures degrade
// down to an earcon or to silence.
func (n *Notifier) Run(ctx context.Context, event *events.Event) error {
	redact.SetEnabled(n.Config.RedactSummaries)

	decision := broker.Resolve(event, n.Config.Policy(), n.loadPack(), n.rng)

	n.Logger.Info("event resolved",
		slog.String("event_type", string(event.Type)),
		slog.String("source", string(event.Source)),
		slog.String("decision", decision.Kind.String()),
		slog.String("summary", redact.Summary(event.Summary)))

	switch decision.Kind {
	case broker.DecisionSilent:
		n.Logger.Debug("staying silent", slog.String("reason", decision.Reason))
		return nil

	case broker.DecisionVoicePack:
		n.takeover()
		if err := n.Renderer.PlayFile(ctx, decision.PhrasePath); err != nil {
			n.Logger.Warn("voicepack playback failed",
				slog.String("path", decision.PhrasePath),
				slog.String("error", err.Error()))
		}
		return nil

	case broker.DecisionEarcon:
		n.takeover()
		n.playEarcon(ctx, event.Type)
		return nil

	case broker.DecisionSynthesize:
		chain, err := n.buildChain()
		if err != nil {
			return err
		}
		req := synth.Request{
			Text:     decision.Text,
			Voice:    n.Config.TTS.Voice,
			Instruct: n.Config.TTS.Instruct,
		}
		audio, err := chain.Synthesize(ctx, req)
		if err != nil {
			n.Logger.Warn("synthesis failed, degrading to earcon",
				slog.String("backend", n.Config.TTS.Backend),
				slog.String("class", string(errorsx.ClassOf(err))),
				slog.String("error", err.Error()))
			metrics.Record(n.Observer, metrics.EventEarconDegrade, 1,
				map[string]string{"event_type": string(event.Type)})
			n.takeover()
			n.playEarcon(ctx, event.Type)
			return nil
		}
		n.takeover()
		if err := n.Renderer.PlayBytes(ctx, audio); err != nil {
			n.Logger.Warn("playback failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return nil
}

func (n *Notifier) buildChain() (*synth.Chain, error) {
	primary, err := n.Registry.Build(n.Config.TTS.Backend, n.Config, n.Logger)
	if err != nil {
		return nil, err
	}

	var fallback synth.Backend
	if name := n.Config.TTS.FallbackBackend; name != "" && normalizeBackendName(name) != normalizeBackendName(n.Config.TTS.Backend) {
		fallback, err = n.Registry.Build(name, n.Config, n.Logger)
		if err != nil {
			n.Logger.Warn("fallback backend unavailable",
				slog.String("backend", name),
				slog.String("error", err.Error()))
			fallback = nil
		}
	}

	audioCache := cache.New(
		n.Config.ResolvedCacheDir(),
		int64(n.Config.CacheMaxMB)*1024*1024,
		n.Config.CacheMaxEntries,
	)

	return &synth.Chain{
		Primary:  primary,
		Fallback: fallback,
		Budget:   resilience.NewBudget(time.Duration(n.Config.TTS.TimeoutSeconds * float64(time.Second))),
		Cache:    audioCache,
		Observer: n.Observer,
		Logger:   n.Logger,
	}, nil
}

func (n *Notifier) loadPack() *voicepack.Pack {
	if !n.Config.VoicePack.Enabled {
		return nil
	}
	pack, err := voicepack.Load(n.Config.VoicePack.ManifestPath, n.Config.VoicePack.Routes)
	if err != nil {
		n.Logger.Warn("voicepack unavailable",
			slog.String("manifest", n.Config.VoicePack.ManifestPath),
			slog.String("error", err.Error()))
		return nil
	}
	return pack
}

func (n *Notifier) playEarcon(ctx context.Context, t events.Type) {
	if err := n.Renderer.PlayEarcon(ctx, t); err != nil {
		n.Logger.Warn("earcon playback failed",
			slog.String("event_type", string(t)),
			slog.String("error", err.Error()))
	}
}

// takeover makes overlapping notifications last-writer-wins: a still
// playing sibling invocation is told to stop before this one sounds.
// The pidfile dance is best-effort; a stale or unreadable file is
// ignored.
func (n *Notifier) takeover() {
	path := pidfilePath()
	if data, err := os.ReadFile(path); err == nil {
		if pid, err := strconv.Atoi(string(data)); err == nil && pid > 0 && pid != os.Getpid() {
			if proc, err := os.FindProcess(pid); err == nil {
				_ = proc.Signal(syscall.SIGTERM)
			}
		}
	}
	_ = os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func pidfilePath() string {
	return filepath.Join(os.TempDir(), "chime.pid")
}
