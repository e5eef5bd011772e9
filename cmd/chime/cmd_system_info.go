package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/system"
)

func newSystemInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system-info",
		Short: "Show host facts and recommended backends",
		RunE:  runSystemInfo,
	}
	cmd.Flags().Bool("json", false, "Emit machine-readable JSON")
	return cmd
}

func runSystemInfo(cmd *cobra.Command, args []string) error {
	info := system.Detect()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "os:           %s/%s\n", info.OS, info.Arch)
	fmt.Fprintf(out, "cores:        %d\n", info.Cores)
	fmt.Fprintf(out, "afplay:       %v\n", info.HasAfplay)
	fmt.Fprintf(out, "say:          %v\n", info.HasSay)
	fmt.Fprintf(out, "deepgram key: %v\n", info.HasDeepgramKey)
	fmt.Fprintf(out, "recommended:  %s\n", strings.Join(info.Recommended, ", "))
	return nil
}
