package commands

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	"github.com/jo-hoe/pixweb/internal/backend/commandstructure"
)

var (
	ErrUnsupportedImage = errors.New("file is not a supported image")
	ErrImageTooLarge    = errors.New("image exceeds the maximum upload size")
	ErrTooManyPixels    = errors.New("image exceeds the maximum pixel count")
)

// PreviewRenderer turns uploaded files into data-URL previews by running them
// through the configured command pipeline.
type PreviewRenderer struct {
	invoker   *commandstructure.CommandInvoker
	maxBytes  int64
	maxPixels int64
}

// NewPreviewRenderer limits uploads to maxBytes of encoded data and maxPixels
// of decoded area. Zero disables a limit.
func NewPreviewRenderer(invoker *commandstructure.CommandInvoker, maxBytes, maxPixels int64) *PreviewRenderer {
	return &PreviewRenderer{
		invoker:   invoker,
		maxBytes:  maxBytes,
		maxPixels: maxPixels,
	}
}

// IsImage sniffs the content with the registered decoders rather than
// trusting the client's content type.
func IsImage(data []byte) bool {
	if _, ok := rasterConfig(data); ok {
		return true
	}
	return isSVGData(data)
}

func rasterConfig(data []byte) (image.Config, bool) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	return config, err == nil
}

// imageSize reads the pixel size from the image header without decoding the
// pixels. SVGs without an explicit size report 0x0 and are rendered at the
// configured fallback size.
func imageSize(data []byte) (int, int, error) {
	if config, ok := rasterConfig(data); ok {
		return config.Width, config.Height, nil
	}
	if isSVGData(data) {
		w, h, _ := parseSvgExplicitSize(data)
		return w, h, nil
	}
	return 0, 0, ErrUnsupportedImage
}

func (r *PreviewRenderer) Render(data []byte) (string, error) {
	if r.maxBytes > 0 && int64(len(data)) > r.maxBytes {
		return "", ErrImageTooLarge
	}
	width, height, err := imageSize(data)
	if err != nil {
		return "", err
	}
	if r.maxPixels > 0 && int64(width)*int64(height) > r.maxPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrTooManyPixels, width, height)
	}
	out, err := r.invoker.Execute(data)
	if err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}
	return DataURL(out), nil
}

// RenderAll renders every file concurrently and returns the previews in input
// order. The first failing file (lowest index) determines the error.
func (r *PreviewRenderer) RenderAll(files [][]byte) ([]string, error) {
	previews := make([]string, len(files))
	errs := make([]error, len(files))

	parallelForStop(len(files), func(i int) bool {
		previews[i], errs[i] = r.Render(files[i])
		return errs[i] != nil
	})

	for i, err := range errs {
		if err != nil {
			return nil, &FileError{Index: i, Err: err}
		}
	}
	return previews, nil
}

// FileError reports which file of a batch failed.
type FileError struct {
	Index int
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %d: %v", e.Index+1, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// DataURL encodes image bytes as a base64 data URL with a sniffed media type.
func DataURL(data []byte) string {
	mime := http.DetectContentType(data)
	if isSVGData(data) {
		mime = "image/svg+xml"
	}
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
