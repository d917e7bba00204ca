package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var newCmd = &cobra.Command{
	Use:     "new <dotted.name>",
	Aliases: []string{"n", "generate"},
	Short:   "Scaffold a new component file",
	Long: `Create a component source file from a dotted identifier. The last
segment becomes the class name (title-cased); the leading segments
become the package.

Examples:
  weld new app.widget.card        # components/card.mithril, class Card
  weld new app.Nav --dir ./ui     # ui/nav.mithril, class Nav`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

var newDir string

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().StringVar(&newDir, "dir", "components", "directory to create the component in")
}

// scaffoldComponent derives the package, class name, and file content for
// a dotted identifier.
func scaffoldComponent(dotted string) (pkg, class, content string, err error) {
	segments := strings.Split(dotted, ".")
	for _, segment := range segments {
		if segment == "" {
			return "", "", "", fmt.Errorf("invalid component identifier %q", dotted)
		}
	}

	last := segments[len(segments)-1]
	class = cases.Title(language.English, cases.NoLower).String(last)
	pkg = strings.Join(segments[:len(segments)-1], ".")

	var b strings.Builder
	if pkg != "" {
		fmt.Fprintf(&b, "@package %s\n", pkg)
	}
	fmt.Fprintf(&b, "class %s {\n  view() {\n    return m(\"div\", %q)\n  }\n}\n", class, class)
	return pkg, class, b.String(), nil
}

func runNew(cmd *cobra.Command, args []string) error {
	pkg, class, content, err := scaffoldComponent(args[0])
	if err != nil {
		return err
	}

	if err := os.MkdirAll(newDir, 0o755); err != nil {
		return fmt.Errorf("failed to create component directory: %w", err)
	}

	path := filepath.Join(newDir, strings.ToLower(class)+".mithril")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write component: %w", err)
	}

	qualified := class
	if pkg != "" {
		qualified = pkg + "." + class
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s (resolve with: weld resolve %s)\n", path, qualified)
	return nil
}
