package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectiveScanner_PackageName(t *testing.T) {
	s := NewDirectiveScanner()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "simple package",
			text:     "@package app\nclass Foo {}",
			expected: "app",
		},
		{
			name:     "dotted package with semicolon",
			text:     "@package app.widget.card;\nclass Card {}",
			expected: "app.widget.card",
		},
		{
			name:     "first directive wins",
			text:     "@package first\n@package second\n",
			expected: "first",
		},
		{
			name:     "no directive",
			text:     "class Foo {}",
			expected: "",
		},
		{
			name:     "empty text",
			text:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.PackageName(tt.text))
		})
	}
}

func TestDirectiveScanner_ClassNames(t *testing.T) {
	s := NewDirectiveScanner()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "single class",
			text:     "class Foo {\n}",
			expected: []string{"Foo"},
		},
		{
			name:     "multiple classes keep declaration order",
			text:     "class Foo {}\nclass Bar {}\nclass Baz {}",
			expected: []string{"Foo", "Bar", "Baz"},
		},
		{
			name:     "duplicates collapse",
			text:     "class Foo {}\nclass Foo {}",
			expected: []string{"Foo"},
		},
		{
			name:     "no space before brace",
			text:     "class Foo{",
			expected: []string{"Foo"},
		},
		{
			name:     "no classes",
			text:     "@package app\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.ClassNames(tt.text))
		})
	}
}

func TestDirectiveScanner_Imports(t *testing.T) {
	s := NewDirectiveScanner()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "single import",
			text:     "@import app.bar;\nclass Foo {}",
			expected: []string{"app.bar"},
		},
		{
			name:     "multiple imports keep directive order",
			text:     "@import app.b\n@import app.a\n",
			expected: []string{"app.b", "app.a"},
		},
		{
			name:     "duplicate imports collapse",
			text:     "@import app.bar\n@import app.bar\n",
			expected: []string{"app.bar"},
		},
		{
			name:     "no imports",
			text:     "class Foo {}",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Imports(tt.text))
		})
	}
}

func TestDirectiveScanner_StripDirectives(t *testing.T) {
	s := NewDirectiveScanner()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "strips package line and trailing whitespace",
			text:     "@package app;\nclass Foo {\n}\n",
			expected: "class Foo {\n}\n",
		},
		{
			name:     "strips import but keeps leading indentation",
			text:     "class Foo {\n  @import app.bar;\n}\n",
			expected: "class Foo {\n  }\n",
		},
		{
			name:     "strips every directive",
			text:     "@package app\n@import a.B\n@import c.D\nclass Foo {}",
			expected: "class Foo {}",
		},
		{
			name:     "text without directives unchanged",
			text:     "class Foo {\n}\n",
			expected: "class Foo {\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.StripDirectives(tt.text))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "app_widget_Card", Normalize("app.widget.Card"))
	assert.Equal(t, "plain", Normalize("plain"))
	assert.Equal(t, "", Normalize(""))
}
