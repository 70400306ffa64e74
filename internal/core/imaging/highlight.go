// Package imaging draws key areas onto screenshot images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

const (
	formatJPEG  = "jpeg"
	jpegQuality = 90

	minStroke      = 2
	strokeDivision = 300
)

var highlightColor = color.RGBA{R: 0xEC, G: 0x40, B: 0x7A, A: 0xFF}

// Highlighter outlines the areas of the requested keys.
type Highlighter struct{}

var _ ports.ImageHighlighter = (*Highlighter)(nil)

// NewHighlighter creates a highlighter.
func NewHighlighter() *Highlighter {
	return &Highlighter{}
}

// Highlight decodes a PNG or JPEG image, outlines the areas of keyIDs and
// encodes the result in the source format. Areas are stored in the
// coordinates of the original upload and are scaled to the image width, so
// the same areas work on the middle-sized variant.
func (h *Highlighter) Highlight(data []byte, screenshot domain.Screenshot, keyIDs []int64) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Src)

	scale := 1.0
	if screenshot.Width > 0 {
		scale = float64(bounds.Dx()) / float64(screenshot.Width)
	}

	stroke := max(minStroke, bounds.Dx()/strokeDivision)

	for _, keyID := range keyIDs {
		for _, area := range screenshot.AreasForKey(keyID) {
			rect := image.Rect(
				int(float64(area.X)*scale),
				int(float64(area.Y)*scale),
				int(float64(area.X+area.Width)*scale),
				int(float64(area.Y+area.Height)*scale),
			).Add(bounds.Min)

			outline(canvas, rect.Intersect(bounds), stroke)
		}
	}

	var buf bytes.Buffer

	if format == formatJPEG {
		err = jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, canvas)
	}

	if err != nil {
		return nil, fmt.Errorf("encode screenshot: %w", err)
	}

	return buf.Bytes(), nil
}

func outline(img *image.RGBA, r image.Rectangle, stroke int) {
	if r.Empty() {
		return
	}

	fill := image.NewUniform(highlightColor)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, min(r.Min.Y+stroke, r.Max.Y)),
		image.Rect(r.Min.X, max(r.Max.Y-stroke, r.Min.Y), r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, min(r.Min.X+stroke, r.Max.X), r.Max.Y),
		image.Rect(max(r.Max.X-stroke, r.Min.X), r.Min.Y, r.Max.X, r.Max.Y),
	}

	for _, e := range edges {
		draw.Draw(img, e, fill, image.Point{}, draw.Src)
	}
}
