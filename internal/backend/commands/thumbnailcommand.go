package commands

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jo-hoe/pixweb/internal/backend/commandstructure"
	"golang.org/x/image/draw"
)

// ThumbnailCommand shrinks a PNG so that it fits into maxWidth x maxHeight,
// preserving the aspect ratio. Images that already fit are returned as is.
type ThumbnailCommand struct {
	name      string
	maxWidth  int
	maxHeight int
}

func NewThumbnailCommand(params map[string]any) (commandstructure.Command, error) {
	_, hasWidth := params["maxWidth"]
	_, hasHeight := params["maxHeight"]
	if !hasWidth && !hasHeight {
		return nil, fmt.Errorf("at least one of 'maxWidth' or 'maxHeight' must be specified")
	}

	w := commandstructure.GetIntParam(params, "maxWidth", 0)
	h := commandstructure.GetIntParam(params, "maxHeight", 0)
	if hasWidth && w <= 0 {
		return nil, fmt.Errorf("maxWidth must be positive, got %d", w)
	}
	if hasHeight && h <= 0 {
		return nil, fmt.Errorf("maxHeight must be positive, got %d", h)
	}

	return &ThumbnailCommand{
		name:      "ThumbnailCommand",
		maxWidth:  w,
		maxHeight: h,
	}, nil
}

func (c *ThumbnailCommand) Name() string {
	return c.name
}

func (c *ThumbnailCommand) Execute(imageData []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG image: %w", err)
	}

	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), c.maxWidth, c.maxHeight)
	if w == b.Dx() && h == b.Dy() {
		return imageData, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return encodePNG(dst)
}

// fitWithin returns the largest size not exceeding the bounds with the same
// aspect ratio as width x height. A zero bound is unbounded. Never upscales
// and never returns a zero dimension.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	scale := 1.0
	if maxWidth > 0 && width > maxWidth {
		scale = float64(maxWidth) / float64(width)
	}
	if maxHeight > 0 && height > maxHeight {
		if s := float64(maxHeight) / float64(height); s < scale {
			scale = s
		}
	}
	if scale == 1.0 {
		return width, height
	}
	w := int(float64(width)*scale + 0.5)
	h := int(float64(height)*scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func init() {
	if err := commandstructure.DefaultRegistry.Register("ThumbnailCommand", NewThumbnailCommand); err != nil {
		panic(fmt.Sprintf("failed to register ThumbnailCommand: %v", err))
	}
}
