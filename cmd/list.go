package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weldkit/weld/internal/config"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l", "ls"},
	Short:   "List all discovered components",
	Long: `List every component registered from the configured scan paths with
its package and dependency count.

Examples:
  weld list                       # Table output
  weld list -f json               # JSON output
  weld list -f yaml               # YAML output`,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table, json, yaml)")
}

type listEntry struct {
	Name         string   `json:"name" yaml:"name"`
	Package      string   `json:"package" yaml:"package"`
	Declares     []string `json:"declares" yaml:"declares"`
	Dependencies int      `json:"dependencies" yaml:"dependencies"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger()
	res, loadResult, err := buildResolver(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	reg := res.Registry()
	entries := make([]listEntry, 0, reg.Count())
	for _, name := range reg.Names() {
		unit, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		entries = append(entries, listEntry{
			Name:         name,
			Package:      unit.PackageName(),
			Declares:     unit.LocalNames(),
			Dependencies: len(unit.Dependencies()),
		})
	}

	out := cmd.OutOrStdout()
	switch listFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case "yaml":
		return yaml.NewEncoder(out).Encode(entries)
	case "table":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPACKAGE\tDEPS")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\n", entry.Name, entry.Package, entry.Dependencies)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if len(loadResult.Skipped) > 0 {
			fmt.Fprintf(out, "\n%d source(s) skipped; run with -l debug for details\n", len(loadResult.Skipped))
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q: valid formats are table, json, yaml", listFormat)
	}
}
