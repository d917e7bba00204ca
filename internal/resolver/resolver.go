// Package resolver is the public facade of the weld pipeline: it builds
// the source registry from raw component texts, validates requested
// identifiers, flattens components on demand, and memoizes results.
package resolver

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/weldkit/weld/internal/errors"
	"github.com/weldkit/weld/internal/logging"
	"github.com/weldkit/weld/internal/registry"
	"github.com/weldkit/weld/internal/scanner"
)

// Resolver resolves dotted component identifiers into flattened,
// self-contained source blobs. Safe for concurrent use: after
// construction the registry is read-only and the cache tolerates
// idempotent overwrites.
type Resolver struct {
	registry *registry.SourceRegistry

	mutex sync.RWMutex
	// cache maps qualified name to flattened output. Populated lazily,
	// never evicted; entries stay valid for the resolver's lifetime.
	cache map[string]string

	// compat reproduces the legacy flattening exactly: containment-only
	// dedup and no cycle guard. Off by default.
	compat bool

	// flattens counts flatten calls, observable by tests to prove the
	// cache short-circuits repeated resolution.
	flattens atomic.Int64

	logger logging.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCompatDedup switches flattening to the legacy behavior: duplicate
// dependency content is suppressed only by substring containment, and a
// dependency cycle recurses without bound. Use only with inputs known to
// be acyclic.
func WithCompatDedup() Option {
	return func(r *Resolver) {
		r.compat = true
	}
}

// WithLogger sets the resolver's logger
func WithLogger(logger logging.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver over an already-built registry. The registry
// must have completed both its parse and resolve phases.
func New(reg *registry.SourceRegistry, opts ...Option) *Resolver {
	r := &Resolver{
		registry: reg,
		cache:    make(map[string]string),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromTexts builds a registry from raw component texts (parse all, then
// resolve all) and wraps it in a resolver.
func FromTexts(texts []string, opts ...Option) *Resolver {
	reg := registry.New()
	reg.ParseAll(texts)
	reg.ResolveAll()
	return New(reg, opts...)
}

// Registry exposes the underlying source registry
func (r *Resolver) Registry() *registry.SourceRegistry {
	return r.registry
}

// Resolve returns the flattened source for the given dotted component
// identifier, with all transitive imports inlined, identifiers rewritten
// to their qualified forms, and directives stripped.
//
// An unknown identifier yields a ComponentNotFoundError; in the default
// strict mode an import cycle yields a CyclicDependencyError. Errors are
// never cached.
func (r *Resolver) Resolve(name string) (string, error) {
	qualified := scanner.Normalize(name)

	unit, ok := r.registry.Lookup(qualified)
	if !ok {
		return "", errors.NotFound(name)
	}

	r.mutex.RLock()
	cached, hit := r.cache[qualified]
	r.mutex.RUnlock()
	if hit {
		return cached, nil
	}

	content, err := r.flatten(unit)
	if err != nil {
		return "", err
	}

	// Concurrent computes for the same key write identical values, so the
	// overwrite is harmless.
	r.mutex.Lock()
	r.cache[qualified] = content
	r.mutex.Unlock()

	r.logger.Debug(context.Background(), "component flattened",
		"name", qualified, "bytes", len(content))

	return content, nil
}

// FlattenCount returns the number of flatten calls performed so far
func (r *Resolver) FlattenCount() int64 {
	return r.flattens.Load()
}

// CacheSize returns the number of memoized results
func (r *Resolver) CacheSize() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.cache)
}
