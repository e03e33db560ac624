package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// RasterizePNG draws an SVG document at its native viewBox size.
// Text is not rasterized, so the result is a preview of the lines only.
func RasterizePNG(svg []byte, out io.Writer) error {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return fmt.Errorf("failed to parse chart svg: %w", err)
	}

	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("chart svg has no size (%dx%d)", w, h)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("failed to encode chart png: %w", err)
	}
	return nil
}

// WritePreview renders the standalone chart and saves it as a PNG at path
func (r *Renderer) WritePreview(in Input, path string) error {
	svg, err := r.RenderStandalone(in)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := RasterizePNG(svg, &buf); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write chart preview: %w", err)
	}
	return nil
}
