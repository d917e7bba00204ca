package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/weldkit/weld/internal/config"
	"github.com/weldkit/weld/internal/server"
	"github.com/weldkit/weld/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve [file.mithril ...]",
	Aliases: []string{"s"},
	Short:   "Start the development server with hot reload",
	Long: `Start the development server. Components are served as flattened
bundles under /components/, previewed under /preview/, and rebuilt
automatically when sources change.

Examples:
  weld serve                      # Serve all configured scan paths
  weld serve ui/card.mithril      # Serve specific files
  weld serve -p 3000              # Serve on another port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addServerFlags(serveCmd.Flags())
	serveCmd.Flags().Bool("no-reload", false, "disable hot reload")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.TargetFiles = args
	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.Development.HotReload = false
	}

	logger := newLogger()
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, _, err := buildResolver(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := server.New(cfg, res, logger)

	if cfg.Development.HotReload {
		fw, err := watcher.NewFileWatcher(
			time.Duration(cfg.Development.DebounceMs)*time.Millisecond, logger)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer fw.Stop()

		fw.AddFilter(watcher.MithrilFilter)
		fw.AddHandler(func(changes []watcher.ChangeEvent) error {
			logger.Info(ctx, "sources changed, rebuilding", "files", len(changes))
			rebuilt, _, err := buildResolver(ctx, cfg, logger)
			if err != nil {
				return err
			}
			srv.SetResolver(rebuilt)
			srv.NotifyReload()
			return nil
		})

		for _, path := range cfg.Components.ScanPaths {
			if err := fw.AddRecursive(path); err != nil {
				logger.Warn(ctx, err, "failed to watch path", "path", path)
			}
		}
		fw.Start(ctx)
	}

	return srv.ListenAndServe(ctx)
}
