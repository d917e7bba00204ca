package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/weldkit/weld/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Initialize a new weld project",
	Long: `Create a .weld.yml configuration file and a components directory with
a sample component pair demonstrating imports.

Examples:
  weld init                       # Initialize in the current directory
  weld init my-app                # Initialize in ./my-app
  weld init --force               # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

const sampleApp = `@package app
class Hello {
  @import app.shared.Button
  view() {
    return m("div", [m("h1", "Hello from weld"), m(Button)])
  }
}
`

const sampleButton = `@package app.shared
class Button {
  view() {
    return m("button", "Click me")
  }
}
`

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	if err := os.MkdirAll(filepath.Join(root, "components"), 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	configData, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default configuration: %w", err)
	}

	files := map[string][]byte{
		filepath.Join(root, ".weld.yml"):                    configData,
		filepath.Join(root, "components", "hello.mithril"):  []byte(sampleApp),
		filepath.Join(root, "components", "button.mithril"): []byte(sampleButton),
	}

	for path, data := range files {
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "skipping %s (already exists, use --force to overwrite)\n", path)
				continue
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nProject initialized. Try:\n  weld list\n  weld resolve app.Hello\n  weld serve")
	return nil
}
