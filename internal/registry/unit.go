package registry

import (
	"strings"

	"github.com/weldkit/weld/internal/scanner"
)

// ComponentUnit represents one parsed component source file. A unit may
// declare several components; they all share the unit's raw text and
// dependency edges. Units are immutable after the registry's resolve
// phase.
type ComponentUnit struct {
	packageName string
	// localNames keeps declaration order so replacement and output are
	// deterministic; localSet backs membership checks.
	localNames []string
	localSet   map[string]struct{}
	rawText    string
	// dependencies are back-references into the owning registry, in
	// import-directive order with duplicates and self-references dropped.
	dependencies []*ComponentUnit

	scan *scanner.DirectiveScanner
}

// NewComponentUnit parses raw component text into a unit. Dependencies
// stay empty until ResolveDependencies runs against a complete registry.
func NewComponentUnit(rawText string, scan *scanner.DirectiveScanner) *ComponentUnit {
	names := scan.ClassNames(rawText)
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return &ComponentUnit{
		packageName: scan.PackageName(rawText),
		localNames:  names,
		localSet:    set,
		rawText:     rawText,
		scan:        scan,
	}
}

// PackageName returns the unit's dotted package name, empty if the source
// had no @package directive.
func (u *ComponentUnit) PackageName() string {
	return u.packageName
}

// LocalNames returns the component names declared in this unit, in
// declaration order.
func (u *ComponentUnit) LocalNames() []string {
	names := make([]string, len(u.localNames))
	copy(names, u.localNames)
	return names
}

// Declares reports whether the unit declares the given local name
func (u *ComponentUnit) Declares(local string) bool {
	_, ok := u.localSet[local]
	return ok
}

// RawText returns the original, unmodified source text
func (u *ComponentUnit) RawText() string {
	return u.rawText
}

// Dependencies returns the unit's direct dependencies in import order
func (u *ComponentUnit) Dependencies() []*ComponentUnit {
	deps := make([]*ComponentUnit, len(u.dependencies))
	copy(deps, u.dependencies)
	return deps
}

// FullName derives the qualified name for a local component name: the
// package name with dots replaced by underscores, an underscore, then the
// local name. This is the canonical registry key.
func (u *ComponentUnit) FullName(local string) string {
	return strings.ReplaceAll(u.packageName, ".", "_") + "_" + local
}

// Key returns a stable identifier for the unit itself: the qualified form
// of its first declared component, or the normalized package name for a
// unit with no declarations.
func (u *ComponentUnit) Key() string {
	if len(u.localNames) > 0 {
		return u.FullName(u.localNames[0])
	}
	return strings.ReplaceAll(u.packageName, ".", "_")
}

// ResolveDependencies scans the raw text for @import directives and
// records the registered target units. Targets missing from the registry
// are skipped; the registry records them as unresolved for diagnostics.
// A unit never depends on itself.
func (u *ComponentUnit) ResolveDependencies(reg *SourceRegistry) {
	seen := make(map[*ComponentUnit]struct{})
	for _, target := range u.scan.Imports(u.rawText) {
		normalized := scanner.Normalize(target)
		dep, ok := reg.Lookup(normalized)
		if !ok {
			// Directives may also name a whole package rather than a
			// single component.
			dep, ok = reg.LookupPackage(normalized)
		}
		if !ok {
			reg.noteUnresolved(u, target)
			continue
		}
		if dep == u {
			continue
		}
		if _, dup := seen[dep]; dup {
			continue
		}
		seen[dep] = struct{}{}
		u.dependencies = append(u.dependencies, dep)
	}
}
