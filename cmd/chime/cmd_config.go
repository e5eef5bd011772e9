package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/chime"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or bootstrap the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flagConfig
			if path == "" {
				path = chime.DiscoverConfigFile()
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file found, using built-in defaults")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
		newConfigValidateCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		RunE:  runConfigInit,
	}
	cmd.Flags().Bool("user", false, "Write to ~/.config/chime/config.json instead of ./chime.json")
	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

const starterConfig = `{
  "tts": {
    "backend": "pocket-tts",
    "fallback_backend": "say",
    "timeout_seconds": 10,
    "pocket_tts": {
      "endpoint": "http://127.0.0.1:8123"
    }
  },
  "volume": 0.8,
  "events": {
    "agent_yield": {"enabled": true, "mode": "tts"},
    "decision_required": {"enabled": true, "mode": "tts"},
    "error_retry": {"enabled": true, "mode": "earcon"}
  }
}
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := chime.ConfigFileName
	if user, _ := cmd.Flags().GetBool("user"); user {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir := filepath.Join(home, ".config", "chime")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path = filepath.Join(dir, "config.json")
	}

	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that the configuration loads and is valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}
