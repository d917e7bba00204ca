// Package errors defines the error types surfaced by the weld resolution
// pipeline and a collector for non-fatal source-loading diagnostics.
package errors

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ComponentNotFoundError is returned when a requested component identifier
// has no matching entry in the source registry.
type ComponentNotFoundError struct {
	// Name is the identifier as supplied by the caller, before normalization
	Name string
}

// Error implements the error interface
func (e *ComponentNotFoundError) Error() string {
	return fmt.Sprintf("component %q not found", e.Name)
}

// NotFound creates a ComponentNotFoundError for the given identifier
func NotFound(name string) error {
	return &ComponentNotFoundError{Name: name}
}

// CyclicDependencyError is returned when flattening encounters an import
// cycle. Chain lists the qualified names along the cycle, first repeated last.
type CyclicDependencyError struct {
	Chain []string
}

// Error implements the error interface
func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic component dependency: %s", strings.Join(e.Chain, " -> "))
}

// Cyclic creates a CyclicDependencyError for the given chain
func Cyclic(chain []string) error {
	return &CyclicDependencyError{Chain: chain}
}

// SourceError records a source file that was skipped during loading.
// Skips are non-fatal: the remaining sources still load and resolve.
type SourceError struct {
	Path      string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (se *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", se.Path, se.Err)
}

func (se *SourceError) Unwrap() error {
	return se.Err
}

// Collector accumulates skipped-source diagnostics. It is safe for
// concurrent use by loader workers.
type Collector struct {
	mutex  sync.RWMutex
	errors []SourceError
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		errors: make([]SourceError, 0),
	}
}

// Add records a skipped source with the reason it was skipped
func (c *Collector) Add(path string, err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, SourceError{
		Path:      path,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// Errors returns a copy of all recorded diagnostics
func (c *Collector) Errors() []SourceError {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]SourceError, len(c.errors))
	copy(result, c.errors)
	return result
}

// HasErrors returns true if any source was skipped
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors) > 0
}

// Count returns the number of recorded diagnostics
func (c *Collector) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.errors)
}

// Clear discards all recorded diagnostics
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = c.errors[:0]
}
