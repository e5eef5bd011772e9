package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/cache"
	"github.com/harunnryd/chime/pkg/chime"
	"github.com/harunnryd/chime/pkg/synth"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List backends, their availability, and cache usage",
		RunE:  runModels,
	}
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry := chime.DefaultRegistry()
	names := registry.Names()
	sort.Strings(names)

	info := synth.ModelsInfo{CacheDir: cfg.ResolvedCacheDir()}
	for _, name := range names {
		backend, err := registry.Build(name, cfg, slog.Default())
		if err != nil {
			info.Backends = append(info.Backends, synth.BackendInfo{Name: name})
			continue
		}
		info.Backends = append(info.Backends, synth.Describe(backend))
	}

	audioCache := cache.New(info.CacheDir, int64(cfg.CacheMaxMB)*1024*1024, cfg.CacheMaxEntries)
	info.CacheEntries, info.CacheBytes = audioCache.Stats()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	out := cmd.OutOrStdout()
	for _, b := range info.Backends {
		marker := " "
		if b.Name == cfg.TTS.Backend {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-12s available=%-5v instruct=%v\n", marker, b.Name, b.Available, b.SupportsInstruct)
	}
	fmt.Fprintf(out, "\ncache: %s (%d entries, %.1f MB)\n",
		info.CacheDir, info.CacheEntries, float64(info.CacheBytes)/(1024*1024))
	return nil
}
