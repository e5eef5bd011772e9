package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/chime"
	"github.com/harunnryd/chime/pkg/events"
	"github.com/harunnryd/chime/pkg/logging"
	"github.com/harunnryd/chime/pkg/metrics"
	"github.com/harunnryd/chime/pkg/sources"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Resolve and play one agent event",
		Long: `Reads an agent hook payload from the argument or stdin (claude,
codex) or takes an explicit --event flag (opencode and scripts), then
plays the resolved notification. Audio problems never fail the hook:
the command exits 0 unless its flags are invalid.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNotify,
	}
	cmd.Flags().String("source", "claude", "Event source: claude, codex, opencode")
	cmd.Flags().String("event", "", "Explicit event type instead of a stdin payload")
	cmd.Flags().String("summary", "", "Summary text for an explicit event")
	cmd.Flags().String("backend", "", "Override the configured TTS backend")
	return cmd
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// A broken config must not mute the agent: warn and run on
		// the built-in defaults.
		cfg = chime.DefaultConfig()
		logging.InitLogger(logging.ParseLevel(cfg.LogLevel))
		slog.Warn("config unreadable, using defaults", slog.String("error", err.Error()))
	}

	sourceName, _ := cmd.Flags().GetString("source")
	eventName, _ := cmd.Flags().GetString("event")
	summary, _ := cmd.Flags().GetString("summary")
	backend, _ := cmd.Flags().GetString("backend")

	source, err := events.ParseSource(sourceName)
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.TTS.Backend = backend
	}

	var payload io.Reader = cmd.InOrStdin()
	if len(args) > 0 {
		payload = strings.NewReader(args[0])
	}

	event, err := resolveEvent(source, eventName, summary, payload)
	if err != nil {
		// A payload chime cannot read is the agent's business, not a
		// reason to fail its hook.
		slog.Warn("ignoring event", slog.String("source", sourceName), slog.String("error", err.Error()))
		return nil
	}
	if event == nil {
		return nil
	}

	observer, closeObserver := openObserver(cfg)
	defer closeObserver()

	notifier := chime.NewNotifier(cfg, chime.DefaultRegistry(), observer, slog.Default())
	if err := notifier.Run(cmd.Context(), event); err != nil {
		slog.Error("notify failed", slog.String("error", err.Error()))
	}
	return nil
}

// resolveEvent prefers the explicit --event flag; otherwise the stdin
// payload goes through the source's adapter.
func resolveEvent(source events.Source, eventName, summary string, stdin io.Reader) (*events.Event, error) {
	if eventName != "" {
		t, err := events.ParseType(eventName)
		if err != nil {
			return nil, err
		}
		event := events.New(t, source)
		event.Summary = summary
		return event, nil
	}

	if source == events.SourceOpenCode {
		return nil, fmt.Errorf("source opencode requires --event")
	}

	payload, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin payload: %w", err)
	}
	return sources.ParseEvent(source, string(payload))
}

func openObserver(cfg chime.Config) (metrics.Observer, func()) {
	if !cfg.Metrics.Enabled {
		return metrics.NoopObserver{}, func() {}
	}
	path := cfg.ResolvedMetricsPath()
	jsonl, err := metrics.OpenJSONLFile(path)
	if err != nil {
		slog.Warn("metrics sink unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return metrics.NoopObserver{}, func() {}
	}
	return jsonl, func() {
		if err := jsonl.Close(); err != nil {
			slog.Warn("metrics close failed", slog.String("error", err.Error()))
		}
	}
}
