package server

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// reloadScript reconnects-and-reloads when the server broadcasts a
// rebuild.
const reloadScript = `(function() {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function(ev) {
    if (ev.data === "reload") {
      location.reload();
    }
  };
})();`

const harnessTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s - weld preview</title>
<script src="https://unpkg.com/mithril/mithril.js"></script>
</head>
<body>
<div id="weld-root"></div>
<script src="%s"></script>
</body>
</html>`

// harnessPage builds the HTML page that hosts one component in the
// browser. When hot reload is enabled, the live-reload script is
// injected into the parsed document rather than string-concatenated, so
// a malformed template fails loudly here instead of in the browser.
func harnessPage(componentName string, hotReload bool) (string, error) {
	page := fmt.Sprintf(harnessTemplate,
		html.EscapeString(componentName),
		html.EscapeString("/components/"+componentName+".js"))

	if !hotReload {
		return page, nil
	}
	return injectScript(page, reloadScript)
}

// injectScript parses the document and appends an inline script element
// to its body.
func injectScript(page, script string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse harness page: %w", err)
	}

	body := findElement(doc, "body")
	if body == nil {
		return "", fmt.Errorf("harness page has no body element")
	}

	scriptNode := &html.Node{Type: html.ElementNode, Data: "script"}
	scriptNode.AppendChild(&html.Node{Type: html.TextNode, Data: script})
	body.AppendChild(scriptNode)

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return "", fmt.Errorf("failed to render harness page: %w", err)
	}
	return b.String(), nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
