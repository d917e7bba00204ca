package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/weldkit/weld/internal/errors"
	"github.com/weldkit/weld/internal/logging"
)

// DefaultExtension is the file extension weld treats as component source.
const DefaultExtension = ".mithril"

// Source is one readable component blob together with its origin path.
// The path is opaque to resolution; it only feeds diagnostics.
type Source struct {
	Path string
	Text string
}

// LoadResult separates successfully loaded sources from skipped ones.
// Skips are non-fatal: callers decide whether to treat them as errors.
type LoadResult struct {
	Sources []Source
	Skipped []errors.SourceError
}

// SourceLoader enumerates and reads component files from scan paths.
// Unreadable files are skipped and recorded, never fatal.
type SourceLoader struct {
	extensions []string
	excludes   []string
	workers    int
	logger     logging.Logger
}

// LoaderOption configures a SourceLoader
type LoaderOption func(*SourceLoader)

// WithExcludes sets glob/substring patterns for paths to skip
func WithExcludes(patterns []string) LoaderOption {
	return func(l *SourceLoader) {
		l.excludes = patterns
	}
}

// WithExtensions overrides the component file extensions
func WithExtensions(exts []string) LoaderOption {
	return func(l *SourceLoader) {
		l.extensions = exts
	}
}

// WithWorkers sets the number of concurrent file readers
func WithWorkers(n int) LoaderOption {
	return func(l *SourceLoader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets the loader's logger
func WithLogger(logger logging.Logger) LoaderOption {
	return func(l *SourceLoader) {
		l.logger = logger
	}
}

// NewSourceLoader creates a source loader with default settings
func NewSourceLoader(opts ...LoaderOption) *SourceLoader {
	l := &SourceLoader{
		extensions: []string{DefaultExtension},
		workers:    runtime.NumCPU(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load enumerates the given paths (files or directories, directories
// walked recursively) and reads every component file concurrently.
// Enumeration and read failures become Skipped entries; Load itself only
// fails on context cancellation.
func (l *SourceLoader) Load(ctx context.Context, paths []string) (*LoadResult, error) {
	collector := errors.NewCollector()
	files := l.enumerate(paths, collector)

	jobs := make(chan string)
	var mu sync.Mutex
	sources := make([]Source, 0, len(files))

	var wg sync.WaitGroup
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				text, err := os.ReadFile(path)
				if err != nil {
					l.logger.Warn(ctx, err, "skipping unreadable source", "path", path)
					collector.Add(path, err)
					continue
				}
				mu.Lock()
				sources = append(sources, Source{Path: path, Text: string(text)})
				mu.Unlock()
			}
		}()
	}

	var ctxErr error
feed:
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break feed
		}
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}

	// Walk order is already deterministic per directory; sorting keeps the
	// combined result stable across scan paths and worker interleaving.
	sort.Slice(sources, func(i, j int) bool { return sources[i].Path < sources[j].Path })

	l.logger.Debug(ctx, "sources loaded",
		"loaded", len(sources), "skipped", collector.Count())

	return &LoadResult{Sources: sources, Skipped: collector.Errors()}, nil
}

// enumerate expands scan paths into a list of component file paths.
func (l *SourceLoader) enumerate(paths []string, collector *errors.Collector) []string {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			collector.Add(root, err)
			continue
		}

		if !info.IsDir() {
			// Explicitly named files are loaded regardless of extension.
			if !l.excluded(root) {
				files = append(files, root)
			}
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				collector.Add(path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if l.excluded(path) && path != root {
					return filepath.SkipDir
				}
				return nil
			}
			if !l.hasComponentExtension(path) || l.excluded(path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if walkErr != nil {
			collector.Add(root, walkErr)
		}
	}
	return files
}

func (l *SourceLoader) hasComponentExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range l.extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// excluded reports whether a path matches any exclude pattern, either as
// a glob against the base name or as a substring of the full path.
func (l *SourceLoader) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range l.excludes {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
