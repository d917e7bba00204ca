package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weldkit/weld/internal/config"
	"github.com/weldkit/weld/internal/logging"
	"github.com/weldkit/weld/internal/registry"
	"github.com/weldkit/weld/internal/resolver"
	"github.com/weldkit/weld/internal/scanner"
	"github.com/weldkit/weld/internal/server"
)

func writeComponent(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func buildFromDir(t *testing.T, dir string) *resolver.Resolver {
	t.Helper()
	ctx := context.Background()
	logger := logging.NewNop()

	loader := scanner.NewSourceLoader(scanner.WithLogger(logger))
	result, err := loader.Load(ctx, []string{dir})
	require.NoError(t, err)
	require.Empty(t, result.Skipped)

	reg := registry.New(registry.WithLogger(logger))
	for _, src := range result.Sources {
		reg.Parse(src.Text)
	}
	reg.ResolveAll()

	return resolver.New(reg, resolver.WithLogger(logger))
}

func TestIntegration_LoadParseResolve(t *testing.T) {
	dir := t.TempDir()
	writeComponent(t, dir, "page.mithril", "@package app\n@import app.ui.Button\nclass Page {\n  view() { return m(app_ui_Button) }\n}\n")
	writeComponent(t, dir, "button.mithril", "@package app.ui\nclass Button {\n  view() { return m('button') }\n}\n")

	res := buildFromDir(t, dir)

	flat, err := res.Resolve("app.Page")
	require.NoError(t, err)
	assert.Contains(t, flat, "class app_Page")
	assert.Contains(t, flat, "class app_ui_Button")
	assert.NotContains(t, flat, "@import")
	assert.NotContains(t, flat, "@package")
}

func TestIntegration_ServerEndpoints(t *testing.T) {
	dir := t.TempDir()
	writeComponent(t, dir, "hello.mithril", "@package app\nclass Hello {\n  view() { return m('h1', 'hi') }\n}\n")

	res := buildFromDir(t, dir)

	cfg := config.Default()
	srv := server.New(cfg, res, logging.NewNop())

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/components")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var index struct {
		Components []struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		} `json:"components"`
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&index))
	require.Equal(t, 1, index.Count)
	assert.Equal(t, "app_Hello", index.Components[0].Name)

	resp, err = http.Get(ts.URL + "/components/app_Hello.js")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/components/app_Missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegration_CycleReporting(t *testing.T) {
	dir := t.TempDir()
	writeComponent(t, dir, "a.mithril", "@package app\n@import app.B\nclass A {\n}\n")
	writeComponent(t, dir, "b.mithril", "@package app\n@import app.A\nclass B {\n}\n")

	res := buildFromDir(t, dir)

	_, err := res.Resolve("app.A")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "cyclic"), "expected cyclic dependency error, got %v", err)
}
