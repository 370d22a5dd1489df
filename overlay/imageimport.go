package overlay

import (
	"bytes"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/mtmitchel/slate/board"
)

// maxImageBytes caps imported image files at 10MB.
const maxImageBytes = 10 << 20

// maxImageDisplay caps the placed element's larger dimension.
const maxImageDisplay = 400.0

// ImportImage validates an image file on disk and returns an unplaced
// image element for it.
func ImportImage(path string) (*board.Element, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("import image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("import image: %s is %d bytes, over the %d byte limit", path, info.Size(), maxImageBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import image: %w", err)
	}
	return ImportImageData(path, data)
}

// ImportImageData validates in-memory image bytes (a dropped file) and
// returns an unplaced image element sized to the decoded dimensions,
// scaled down so neither side exceeds the display cap while preserving
// aspect ratio. The returned element has no position; the placement
// gesture assigns one.
func ImportImageData(name string, data []byte) (*board.Element, error) {
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("import image: %s is %d bytes, over the %d byte limit", name, len(data), maxImageBytes)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("import image: %s has content type %s, not an image", name, mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("import image: decode %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("import image: %s has empty dimensions", name)
	}

	w, h := float64(cfg.Width), float64(cfg.Height)
	if scale := maxImageDisplay / max(w, h); scale < 1 {
		w *= scale
		h *= scale
	}

	e := board.NewElement(board.TypeImage, 0, 0)
	e.ImagePath = name
	e.NaturalWidth = float64(cfg.Width)
	e.NaturalHeight = float64(cfg.Height)
	e.Width = w
	e.Height = h
	return e, nil
}
