package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weldkit/weld/internal/config"
)

var resolveCmd = &cobra.Command{
	Use:     "resolve <component>",
	Aliases: []string{"r", "bundle"},
	Short:   "Flatten a component and its imports into one bundle",
	Long: `Resolve a component by its dotted or qualified identifier and print
the flattened bundle: the component's source with every transitive
import inlined, identifiers rewritten to qualified names, and directive
lines stripped.

Examples:
  weld resolve app.Foo                 # Print bundle to stdout
  weld resolve app.Foo -o foo.js       # Write bundle to a file
  weld resolve app.Foo --compat        # Legacy containment-based dedup`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var resolveOutput string

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "write the bundle to a file instead of stdout")
	addResolverFlags(resolveCmd.Flags())
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	res, _, err := buildResolver(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	content, err := res.Resolve(args[0])
	if err != nil {
		return err
	}

	if resolveOutput != "" {
		if err := os.WriteFile(resolveOutput, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write bundle: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", resolveOutput, len(content))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}
