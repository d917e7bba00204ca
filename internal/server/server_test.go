package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weldkit/weld/internal/config"
	"github.com/weldkit/weld/internal/logging"
	"github.com/weldkit/weld/internal/resolver"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	res := resolver.FromTexts([]string{
		"@package app\nclass Foo {\n  @import app.bar.Bar\n}\n",
		"@package app.bar\nclass Bar {\n}\n",
	})
	return New(config.Default(), res, logging.NewNop())
}

func TestServer_ComponentIndex(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/components", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var index indexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	assert.Equal(t, 2, index.Count)
	assert.Equal(t, "app_Foo", index.Components[0].Name)
	assert.Equal(t, "/components/app_Foo.js", index.Components[0].URL)
	assert.Equal(t, "app_bar_Bar", index.Components[1].Name)
}

func TestServer_ServeComponent(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"qualified with suffix", "/components/app_Foo.js"},
		{"qualified without suffix", "/components/app_Foo"},
		{"dotted identifier", "/components/app.Foo.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			assert.Contains(t, body, "class app_Foo {")
			assert.Contains(t, body, "class app_bar_Bar {")
			assert.NotContains(t, body, "@import")
			assert.Equal(t, "application/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServer_ComponentNotFound(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/components/not.a.real.Component.js", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")
}

func TestServer_CyclicComponent(t *testing.T) {
	res := resolver.FromTexts([]string{
		"@package app\nclass Foo {\n  @import app.bar.Bar\n}\n",
		"@package app.bar\nclass Bar {\n  @import app.Foo\n}\n",
	})
	srv := New(config.Default(), res, logging.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/components/app_Foo.js", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "cyclic component dependency")
}

func TestServer_Preview(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/app_Foo", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "/components/app_Foo.js")
	assert.Contains(t, body, "mithril.js")
	// Hot reload is on in the default config, so the reload script is
	// injected into the body.
	assert.Contains(t, body, "new WebSocket")
}

func TestServer_PreviewWithoutHotReload(t *testing.T) {
	cfg := config.Default()
	cfg.Development.HotReload = false
	res := resolver.FromTexts([]string{"@package app\nclass Foo {}\n"})
	srv := New(cfg, res, logging.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/app_Foo", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "new WebSocket")
}

func TestServer_PreviewNotFound(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/preview/ghost.Component", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(2), health["components"])
}

func TestServer_RootListsComponents(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/preview/app_Foo")
	assert.Contains(t, rec.Body.String(), "/preview/app_bar_Bar")
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/components/app_Foo.js", strings.NewReader("{}")))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_SetResolverSwaps(t *testing.T) {
	srv := testServer(t)

	replacement := resolver.FromTexts([]string{"@package app\nclass Swapped {}\n"})
	srv.SetResolver(replacement)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/components/app_Swapped.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/components/app_Foo.js", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_WebSocketReload(t *testing.T) {
	srv := testServer(t)

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Wait for the hub to register the client before broadcasting
	require.Eventually(t, func() bool {
		return srv.hub.Count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	srv.NotifyReload()

	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, msgType)
	assert.Equal(t, "reload", string(data))
}
