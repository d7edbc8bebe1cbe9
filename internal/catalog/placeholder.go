package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/jo-hoe/pixweb/internal/backend/commands"
)

//go:embed placeholders/*.svg
var placeholderFS embed.FS

var ErrUnknownPlaceholder = errors.New("unknown placeholder")

const (
	MinPlaceholderWidth = 16
	MaxPlaceholderWidth = 1600
)

// Placeholders rasterizes the bundled SVG artwork on demand and caches the
// PNGs per name and width.
type Placeholders struct {
	mu    sync.Mutex
	cache map[string][]byte
}

func NewPlaceholders() *Placeholders {
	return &Placeholders{cache: make(map[string][]byte)}
}

// Names lists the available placeholders.
func (p *Placeholders) Names() []string {
	entries, err := fs.ReadDir(placeholderFS, "placeholders")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// SVG returns the raw artwork.
func (p *Placeholders) SVG(name string) ([]byte, error) {
	if strings.ContainsAny(name, "/\\.") {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlaceholder, name)
	}
	data, err := placeholderFS.ReadFile("placeholders/" + name + ".svg")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlaceholder, name)
	}
	return data, nil
}

// PNG renders the placeholder at the given width keeping its 4:3 aspect
// ratio. Widths are clamped to a sane range.
func (p *Placeholders) PNG(name string, width int) ([]byte, error) {
	width = min(max(width, MinPlaceholderWidth), MaxPlaceholderWidth)
	key := fmt.Sprintf("%s@%d", name, width)

	p.mu.Lock()
	cached, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return cached, nil
	}

	svg, err := p.SVG(name)
	if err != nil {
		return nil, err
	}
	height := width * 3 / 4
	if name == "avatar" {
		height = width
	}
	img, err := commands.RenderSVG(svg, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode placeholder %s: %w", name, err)
	}

	p.mu.Lock()
	p.cache[key] = buf.Bytes()
	p.mu.Unlock()
	return buf.Bytes(), nil
}
