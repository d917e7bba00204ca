package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weldkit/weld/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "weld %s\n", version.GetShortVersion())
		fmt.Fprintf(cmd.OutOrStdout(), "  go:       %s\n", version.GoVersion())
		fmt.Fprintf(cmd.OutOrStdout(), "  platform: %s\n", version.Platform())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
