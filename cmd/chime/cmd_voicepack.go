package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/chime"
	"github.com/harunnryd/chime/pkg/events"
	"github.com/harunnryd/chime/pkg/metrics"
	"github.com/harunnryd/chime/pkg/resilience"
	"github.com/harunnryd/chime/pkg/synth"
	"github.com/harunnryd/chime/pkg/voicepack"
)

func newVoicepackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voicepack",
		Short: "Manage pre-generated phrase packs",
	}
	cmd.AddCommand(newVoicepackGenCmd())
	return cmd
}

func newVoicepackGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Synthesize a starter phrase pack and its manifest",
		RunE:  runVoicepackGen,
	}
	cmd.Flags().String("out", "voicepack", "Output directory")
	cmd.Flags().String("backend", "", "Backend to synthesize with instead of the configured one")
	return cmd
}

// starterPhrases is the generated pack's content: phrase key, spoken
// text, and the event types it serves.
var starterPhrases = []struct {
	Key   string
	Text  string
	Event events.Type
}{
	{"ready", "Ready.", events.AgentYield},
	{"all_done", "All done.", events.AgentYield},
	{"finished", "Finished. Back to you.", events.AgentYield},
	{"need_input", "I need your input.", events.DecisionRequired},
	{"your_call", "Your call.", events.DecisionRequired},
	{"hit_error", "I hit an error. Please review.", events.ErrorRetry},
}

func runVoicepackGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out")
	backendName, _ := cmd.Flags().GetString("backend")
	if backendName == "" {
		backendName = cfg.TTS.Backend
	}

	backend, err := chime.DefaultRegistry().Build(backendName, cfg, slog.Default())
	if err != nil {
		return err
	}
	chain := &synth.Chain{
		Primary:  backend,
		Budget:   resilience.NewBudget(time.Duration(cfg.TTS.TimeoutSeconds * float64(time.Second))),
		Observer: metrics.NoopObserver{},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	manifest := voicepack.Manifest{
		Events:  make(map[string][]string),
		Phrases: make(map[string]voicepack.Phrase),
	}

	for _, p := range starterPhrases {
		audio, err := chain.Synthesize(cmd.Context(), synth.Request{
			Text:     p.Text,
			Voice:    cfg.TTS.Voice,
			Instruct: cfg.TTS.Instruct,
		})
		if err != nil {
			return fmt.Errorf("synthesize %q: %w", p.Text, err)
		}

		file := p.Key + ".wav"
		if err := os.WriteFile(filepath.Join(outDir, file), audio, 0o644); err != nil {
			return err
		}

		manifest.Events[string(p.Event)] = append(manifest.Events[string(p.Event)], p.Key)
		manifest.Phrases[p.Key] = voicepack.Phrase{
			Text:     p.Text,
			Variants: []voicepack.Variant{{File: file}},
		}
		fmt.Fprintf(cmd.OutOrStdout(), "generated %s (%d bytes)\n", file, len(audio))
	}

	manifestPath := filepath.Join(outDir, "manifest.json")
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", manifestPath)
	return nil
}
