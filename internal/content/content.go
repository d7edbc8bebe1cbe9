// Package content renders the site's Markdown pages and cleans user-supplied
// text before it is stored or displayed.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed pages/*.md
var pagesFS embed.FS

var (
	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	strictPolicy = bluemonday.StrictPolicy()
	pagePolicy   = newPagePolicy()

	renderedMu sync.Mutex
	rendered   = map[string]template.HTML{}
)

func newPagePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return policy
}

// RenderMarkdown converts Markdown to HTML that is safe to embed in a page.
func RenderMarkdown(source []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return template.HTML(pagePolicy.SanitizeBytes(buf.Bytes())), nil
}

// Page renders an embedded Markdown page by name ("about"). Results are
// cached since the sources never change at runtime.
func Page(name string) (template.HTML, error) {
	renderedMu.Lock()
	defer renderedMu.Unlock()

	if page, ok := rendered[name]; ok {
		return page, nil
	}
	source, err := pagesFS.ReadFile("pages/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown page %q: %w", name, err)
	}
	page, err := RenderMarkdown(source)
	if err != nil {
		return "", err
	}
	rendered[name] = page
	return page, nil
}

// SanitizeText strips all markup from user input and returns plain text.
// Templates escape it again on output.
func SanitizeText(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}
