// Package registry owns the parsed component units and their index by
// qualified name.
//
// The registry is built in two phases: ParseAll registers every unit
// under each qualified name it declares, then ResolveAll lets every unit
// discover its import edges against the complete index. The ordering is
// mandatory; resolving during parsing would make edges depend on input
// order. After both phases the registry is read-only.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/weldkit/weld/internal/logging"
	"github.com/weldkit/weld/internal/scanner"
)

// EventType represents the type of registry event
type EventType int

const (
	EventTypeRegistered EventType = iota
	EventTypeReplaced
)

// String returns the string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventTypeRegistered:
		return "registered"
	case EventTypeReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Event represents a change in the source registry
type Event struct {
	Type          EventType
	QualifiedName string
	Unit          *ComponentUnit
	Timestamp     time.Time
}

// UnresolvedImport records an @import directive whose target was not
// registered. Dropped silently from dependency edges, kept here so
// callers can surface diagnostics.
type UnresolvedImport struct {
	// UnitKey identifies the importing unit
	UnitKey string
	// Target is the dotted identifier as written in the directive
	Target string
}

// SourceRegistry indexes component units by fully-qualified name
type SourceRegistry struct {
	mutex      sync.RWMutex
	units      map[string]*ComponentUnit
	packages   map[string]*ComponentUnit
	parsed     []*ComponentUnit
	unresolved []UnresolvedImport
	watchers   []chan Event

	scan   *scanner.DirectiveScanner
	logger logging.Logger
}

// Option configures a SourceRegistry
type Option func(*SourceRegistry)

// WithLogger sets the registry's logger
func WithLogger(logger logging.Logger) Option {
	return func(r *SourceRegistry) {
		r.logger = logger
	}
}

// New creates an empty source registry
func New(opts ...Option) *SourceRegistry {
	r := &SourceRegistry{
		units:    make(map[string]*ComponentUnit),
		packages: make(map[string]*ComponentUnit),
		scan:     scanner.NewDirectiveScanner(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scanner returns the directive scanner shared with the units
func (r *SourceRegistry) Scanner() *scanner.DirectiveScanner {
	return r.scan
}

// ParseAll parses every raw text into a component unit and registers it
// under each qualified name it declares. A file declaring several
// components maps them all to the same unit; a file declaring none is
// parsed but never registered.
func (r *SourceRegistry) ParseAll(texts []string) {
	for _, text := range texts {
		r.Parse(text)
	}
}

// Parse parses a single raw text and registers its declared components
func (r *SourceRegistry) Parse(text string) *ComponentUnit {
	unit := NewComponentUnit(text, r.scan)

	r.mutex.Lock()
	r.parsed = append(r.parsed, unit)
	if pkg := unit.PackageName(); pkg != "" {
		// Same last-write-wins policy as qualified names.
		r.packages[scanner.Normalize(pkg)] = unit
	}
	var events []Event
	for _, local := range unit.LocalNames() {
		qualified := unit.FullName(local)
		eventType := EventTypeRegistered
		if _, exists := r.units[qualified]; exists {
			// Last write wins. Duplicate qualified names silently replace
			// earlier registrations; the event stream is the only trace.
			eventType = EventTypeReplaced
		}
		r.units[qualified] = unit
		events = append(events, Event{
			Type:          eventType,
			QualifiedName: qualified,
			Unit:          unit,
			Timestamp:     time.Now(),
		})
	}
	r.mutex.Unlock()

	for _, event := range events {
		if event.Type == EventTypeReplaced {
			r.logger.Debug(context.Background(), "duplicate qualified name replaced",
				"name", event.QualifiedName)
		}
		r.notify(event)
	}
	return unit
}

// ResolveAll resolves import edges for every parsed unit. Must run after
// all sources are parsed so every unit sees the complete index.
func (r *SourceRegistry) ResolveAll() {
	r.mutex.RLock()
	units := make([]*ComponentUnit, len(r.parsed))
	copy(units, r.parsed)
	r.mutex.RUnlock()

	for _, unit := range units {
		unit.ResolveDependencies(r)
	}
}

// Lookup retrieves a unit by qualified name. Pure read.
func (r *SourceRegistry) Lookup(qualifiedName string) (*ComponentUnit, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	unit, exists := r.units[qualifiedName]
	return unit, exists
}

// LookupPackage retrieves the unit registered for a normalized package
// name. When several files share a package, the last parsed one wins.
func (r *SourceRegistry) LookupPackage(normalizedPkg string) (*ComponentUnit, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	unit, exists := r.packages[normalizedPkg]
	return unit, exists
}

// Contains reports whether a qualified name is registered
func (r *SourceRegistry) Contains(qualifiedName string) bool {
	_, exists := r.Lookup(qualifiedName)
	return exists
}

// Names returns all registered qualified names, sorted
func (r *SourceRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := make([]string, 0, len(r.units))
	for name := range r.units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered qualified names
func (r *SourceRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.units)
}

// Unresolved returns the import directives that had no registered target
func (r *SourceRegistry) Unresolved() []UnresolvedImport {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	result := make([]UnresolvedImport, len(r.unresolved))
	copy(result, r.unresolved)
	return result
}

func (r *SourceRegistry) noteUnresolved(unit *ComponentUnit, target string) {
	r.mutex.Lock()
	r.unresolved = append(r.unresolved, UnresolvedImport{
		UnitKey: unit.Key(),
		Target:  target,
	})
	r.mutex.Unlock()

	r.logger.Debug(context.Background(), "unresolvable import skipped",
		"unit", unit.Key(), "target", target)
}

// Watch returns a channel that receives registry events
func (r *SourceRegistry) Watch() <-chan Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan Event, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *SourceRegistry) UnWatch(ch <-chan Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}

func (r *SourceRegistry) notify(event Event) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, watcher := range r.watchers {
		select {
		case watcher <- event:
		default:
			// Skip if channel is full
		}
	}
}
