package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func decode(t *testing.T, data []byte) (image.Image, string) {
	t.Helper()

	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	return img, format
}

func isHighlight(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	want := highlightColor

	return uint8(r>>8) == want.R && uint8(g>>8) == want.G && uint8(b>>8) == want.B
}

func TestHighlighter_OutlinesScaledArea(t *testing.T) {
	screenshot := domain.Screenshot{
		Width:  200,
		Height: 200,
		Areas: []domain.KeyArea{
			{KeyID: 1, X: 40, Y: 40, Width: 80, Height: 80},
			{KeyID: 2, X: 0, Y: 0, Width: 20, Height: 20},
		},
	}

	out, err := NewHighlighter().Highlight(solidPNG(t, 100, 100), screenshot, []int64{1})
	require.NoError(t, err)

	img, format := decode(t, out)
	assert.Equal(t, "png", format)

	assert.True(t, isHighlight(img.At(20, 20)), "top-left corner of the scaled area")
	assert.True(t, isHighlight(img.At(59, 40)), "right edge of the scaled area")
	assert.False(t, isHighlight(img.At(40, 40)), "area interior stays untouched")
	assert.False(t, isHighlight(img.At(1, 1)), "areas of other keys are skipped")
}

func TestHighlighter_KeepsJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), nil))

	out, err := NewHighlighter().Highlight(buf.Bytes(), domain.Screenshot{Areas: []domain.KeyArea{{KeyID: 1, Width: 5, Height: 5}}}, []int64{1})
	require.NoError(t, err)

	_, format := decode(t, out)
	assert.Equal(t, "jpeg", format)
}

func TestHighlighter_AreaOutsideImage(t *testing.T) {
	screenshot := domain.Screenshot{Areas: []domain.KeyArea{{KeyID: 1, X: 500, Y: 500, Width: 10, Height: 10}}}

	out, err := NewHighlighter().Highlight(solidPNG(t, 10, 10), screenshot, []int64{1})
	require.NoError(t, err)

	img, _ := decode(t, out)
	assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
}

func TestHighlighter_RejectsGarbage(t *testing.T) {
	_, err := NewHighlighter().Highlight([]byte("not an image"), domain.Screenshot{}, []int64{1})
	assert.Error(t, err)
}
