package resolver

import (
	"regexp"
	"strings"
	"sync"

	"github.com/weldkit/weld/internal/errors"
	"github.com/weldkit/weld/internal/registry"
)

func (r *Resolver) flatten(unit *registry.ComponentUnit) (string, error) {
	if r.compat {
		return r.flattenCompat(unit), nil
	}
	return r.flattenStrict(unit, newFlattenState())
}

// rewrite applies the identifier substitutions to a unit's raw text:
// every locally declared name is replaced globally with its qualified
// form, then every direct dependency's declared names are replaced on
// word boundaries with that dependency's qualified forms. Replacement is
// purely textual; occurrences inside strings or comments are rewritten
// too.
func (r *Resolver) rewrite(unit *registry.ComponentUnit) string {
	content := unit.RawText()
	for _, local := range unit.LocalNames() {
		content = strings.ReplaceAll(content, local, unit.FullName(local))
	}
	for _, dep := range unit.Dependencies() {
		for _, depName := range dep.LocalNames() {
			content = wholeWord(depName).ReplaceAllString(content, dep.FullName(depName))
		}
	}
	return content
}

// flattenCompat is the legacy flattening: depth-first append of each
// dependency's flattened content, skipped only when the running output
// already contains it verbatim. A diamond graph therefore duplicates the
// shared leaf, and a cycle recurses without bound.
func (r *Resolver) flattenCompat(unit *registry.ComponentUnit) string {
	r.flattens.Add(1)

	content := r.rewrite(unit)
	for _, dep := range unit.Dependencies() {
		depContent := r.flattenCompat(dep)
		if !strings.Contains(content, depContent) {
			content += depContent
		}
	}
	return r.registry.Scanner().StripDirectives(content)
}

// flattenState tracks one top-level flatten traversal.
type flattenState struct {
	// active marks units on the current recursion path for cycle
	// detection.
	active map[*registry.ComponentUnit]bool
	// emitted marks units whose content has already been inlined
	// somewhere in the output, so shared dependencies appear once.
	emitted map[*registry.ComponentUnit]bool
	chain   []string
}

func newFlattenState() *flattenState {
	return &flattenState{
		active:  make(map[*registry.ComponentUnit]bool),
		emitted: make(map[*registry.ComponentUnit]bool),
	}
}

// flattenStrict produces the same output as flattenCompat for acyclic
// graphs without shared dependencies, inlines shared dependencies exactly
// once, and reports cycles instead of recursing into them.
func (r *Resolver) flattenStrict(unit *registry.ComponentUnit, state *flattenState) (string, error) {
	if state.active[unit] {
		chain := make([]string, len(state.chain), len(state.chain)+1)
		copy(chain, state.chain)
		return "", errors.Cyclic(append(chain, unit.Key()))
	}

	r.flattens.Add(1)
	state.active[unit] = true
	state.chain = append(state.chain, unit.Key())
	defer func() {
		delete(state.active, unit)
		state.chain = state.chain[:len(state.chain)-1]
	}()

	content := r.rewrite(unit)
	for _, dep := range unit.Dependencies() {
		if state.emitted[dep] {
			continue
		}
		depContent, err := r.flattenStrict(dep, state)
		if err != nil {
			return "", err
		}
		state.emitted[dep] = true
		if !strings.Contains(content, depContent) {
			content += depContent
		}
	}
	return r.registry.Scanner().StripDirectives(content), nil
}

// wordPatterns caches compiled word-boundary patterns per name.
var (
	wordPatterns = map[string]*regexp.Regexp{}
	wordMutex    = &sync.RWMutex{}
)

func wholeWord(name string) *regexp.Regexp {
	wordMutex.RLock()
	re, ok := wordPatterns[name]
	wordMutex.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	wordMutex.Lock()
	wordPatterns[name] = re
	wordMutex.Unlock()
	return re
}
