package pagerender

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"
)

// Renderer rasterizes a PDF page and runs the deterministic enhancement
// pipeline used before recognition: greyscale, contrast normalization,
// brightness boost, sharpen, binary threshold.
type Renderer struct {
	tempDir string
}

func New(tempDir string) (*Renderer, error) {
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "hydroflow-pages")
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Renderer{tempDir: tempDir}, nil
}

// RenderPage writes an enhanced PNG for the given zero-based page and
// returns its path. The caller removes the file when done with it.
func (r *Renderer) RenderPage(_ context.Context, path string, page int) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("open document for render: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(page)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", page, err)
	}

	enhanced := enhance(img)
	out := filepath.Join(r.tempDir, fmt.Sprintf("page_%d_%s.png", page, uuid.NewString()))
	if err := imaging.Save(enhanced, out); err != nil {
		return "", fmt.Errorf("save rendered page: %w", err)
	}
	return out, nil
}

const binaryThreshold = 128

func enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 15)
	out = imaging.AdjustBrightness(out, 20)
	out = imaging.Sharpen(out, 1.0)
	return threshold(out, binaryThreshold)
}

func threshold(img *image.NRGBA, cutoff uint8) image.Image {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// input is already greyscale, any channel works
			v := uint8(0)
			if img.NRGBAAt(x, y).R >= cutoff {
				v = 255
			}
			out.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return out
}
