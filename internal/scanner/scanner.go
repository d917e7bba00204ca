// Package scanner provides directive and declaration extraction for weld
// component sources.
//
// Component files use a small textual dialect: an optional @package
// directive, zero or more @import directives, and class-style component
// declarations. Extraction is regex-based by design; the DirectiveScanner
// type isolates every pattern so a structural parser could replace it
// without touching the registry or resolver.
package scanner

import (
	"regexp"
	"strings"
)

var (
	packagePattern = regexp.MustCompile(`@package\s+([\w.]+);?`)
	importPattern  = regexp.MustCompile(`@import\s+([\w.]+);?`)
	classPattern   = regexp.MustCompile(`class\s*(\S+)\s*\{`)

	// Stripping uses looser patterns than capture: the whole directive,
	// its argument, and trailing whitespace are removed from output.
	stripImportPattern  = regexp.MustCompile(`@import\s*\S+\s*`)
	stripPackagePattern = regexp.MustCompile(`@package\s*\S+\s*`)
)

// DirectiveScanner extracts package names, component declarations, and
// import targets from raw component text. It is stateless and safe for
// concurrent use.
type DirectiveScanner struct{}

// NewDirectiveScanner creates a new directive scanner
func NewDirectiveScanner() *DirectiveScanner {
	return &DirectiveScanner{}
}

// PackageName returns the dotted package name from the first @package
// directive, or the empty string if the text has none.
func (s *DirectiveScanner) PackageName(text string) string {
	if m := packagePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// ClassNames returns the component names declared in the text, in
// declaration order with duplicates collapsed.
func (s *DirectiveScanner) ClassNames(text string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range classPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// Imports returns the dotted import targets in directive order, duplicates
// collapsed.
func (s *DirectiveScanner) Imports(text string) []string {
	var imports []string
	seen := make(map[string]struct{})
	for _, m := range importPattern.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		imports = append(imports, m[1])
	}
	return imports
}

// StripDirectives removes all @import and @package directives, including
// their arguments and trailing whitespace, from the text.
func (s *DirectiveScanner) StripDirectives(text string) string {
	text = stripImportPattern.ReplaceAllString(text, "")
	return stripPackagePattern.ReplaceAllString(text, "")
}

// Normalize converts a dotted identifier to its qualified form, the
// canonical registry key.
func Normalize(dotted string) string {
	return strings.ReplaceAll(dotted, ".", "_")
}
