package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/chime"
	"github.com/harunnryd/chime/pkg/metrics"
	"github.com/harunnryd/chime/pkg/renderer"
	"github.com/harunnryd/chime/pkg/resilience"
	"github.com/harunnryd/chime/pkg/synth"
)

func newTestTTSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test-tts",
		Short: "Synthesize a phrase once, bypassing event policy",
		Long: `Runs the configured backend (or --backend) against --text and either
plays the result or writes it to --output. Unlike notify, failures here
are reported as errors so backend setup can be debugged.`,
		RunE: runTestTTS,
	}
	cmd.Flags().String("text", "Chime is working.", "Text to synthesize")
	cmd.Flags().String("backend", "", "Backend to test instead of the configured one")
	cmd.Flags().String("voice", "", "Voice override")
	cmd.Flags().String("instruct", "", "Style prompt for backends that support it")
	cmd.Flags().String("output", "", "Write audio to this file instead of playing it")
	return cmd
}

func runTestTTS(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	text, _ := cmd.Flags().GetString("text")
	backendName, _ := cmd.Flags().GetString("backend")
	voice, _ := cmd.Flags().GetString("voice")
	instruct, _ := cmd.Flags().GetString("instruct")
	output, _ := cmd.Flags().GetString("output")

	if backendName == "" {
		backendName = cfg.TTS.Backend
	}
	if voice == "" {
		voice = cfg.TTS.Voice
	}
	if instruct == "" {
		instruct = cfg.TTS.Instruct
	}

	backend, err := chime.DefaultRegistry().Build(backendName, cfg, slog.Default())
	if err != nil {
		return err
	}

	// No cache and no fallback: test-tts answers "does this backend
	// work", not "can chime make a sound somehow".
	chain := &synth.Chain{
		Primary:  backend,
		Budget:   resilience.NewBudget(time.Duration(cfg.TTS.TimeoutSeconds * float64(time.Second))),
		Observer: metrics.NoopObserver{},
	}

	fmt.Fprintf(cmd.OutOrStdout(), "backend %s, budget %s\n", backendName, synth.FormatTimeout(chain.Budget))

	start := time.Now()
	audio, err := chain.Synthesize(cmd.Context(), synth.Request{Text: text, Voice: voice, Instruct: instruct})
	if err != nil {
		return fmt.Errorf("backend %s: %w", backendName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "synthesized %d bytes in %s\n", len(audio), time.Since(start).Round(time.Millisecond))

	if output != "" {
		if err := os.WriteFile(output, audio, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
		return nil
	}
	return renderer.New(cfg.Volume, cfg.EarconsDir, metrics.NoopObserver{}, slog.Default()).PlayBytes(cmd.Context(), audio)
}
