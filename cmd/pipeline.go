package cmd

import (
	"context"

	"github.com/weldkit/weld/internal/config"
	"github.com/weldkit/weld/internal/logging"
	"github.com/weldkit/weld/internal/registry"
	"github.com/weldkit/weld/internal/resolver"
	"github.com/weldkit/weld/internal/scanner"
)

// buildResolver runs the full pipeline: load sources from the configured
// scan paths, parse them all into the registry, resolve import edges,
// and wrap the registry in a resolver. Skipped sources are logged and
// returned for commands that want to surface them.
func buildResolver(ctx context.Context, cfg *config.Config, logger logging.Logger) (*resolver.Resolver, *scanner.LoadResult, error) {
	loader := scanner.NewSourceLoader(
		scanner.WithExcludes(cfg.Components.ExcludePatterns),
		scanner.WithLogger(logger),
	)

	paths := cfg.Components.ScanPaths
	if len(cfg.TargetFiles) > 0 {
		paths = cfg.TargetFiles
	}

	result, err := loader.Load(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	for _, skipped := range result.Skipped {
		logger.Warn(ctx, skipped.Err, "source skipped", "path", skipped.Path)
	}

	reg := registry.New(registry.WithLogger(logger))

	// Trace registrations while the registry is built
	events := reg.Watch()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			logger.Debug(ctx, "component "+event.Type.String(),
				"name", event.QualifiedName, "package", event.Unit.PackageName())
		}
	}()

	texts := make([]string, len(result.Sources))
	for i, src := range result.Sources {
		texts[i] = src.Text
	}
	reg.ParseAll(texts)
	reg.ResolveAll()
	reg.UnWatch(events)
	<-done

	for _, unresolved := range reg.Unresolved() {
		logger.Warn(ctx, nil, "unresolvable import",
			"unit", unresolved.UnitKey, "target", unresolved.Target)
	}

	opts := []resolver.Option{resolver.WithLogger(logger)}
	if cfg.Resolver.Compat {
		opts = append(opts, resolver.WithCompatDedup())
	}
	return resolver.New(reg, opts...), result, nil
}
