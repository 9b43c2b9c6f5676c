package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)
	return img
}

func TestHighlightColours(t *testing.T) {
	src := blank(200, 120)
	out := Highlight(src, []Mark{
		{Box: image.Rect(20, 20, 80, 40), Filled: true},
		{Box: image.Rect(20, 70, 80, 90), Filled: false},
	})
	rgba, ok := out.(*image.RGBA)
	require.True(t, ok)

	// left edge of each border, away from the badge
	assert.Equal(t, FilledColor, rgba.RGBAAt(20-BorderWidth, 30))
	assert.Equal(t, UnfilledColor, rgba.RGBAAt(20-BorderWidth, 80))
	// inside the box stays untouched
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgba.RGBAAt(50, 30))
}

func TestHighlightLeavesSourceAlone(t *testing.T) {
	src := blank(50, 50)
	Highlight(src, []Mark{{Box: image.Rect(10, 10, 30, 30), Filled: true}})
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, src.RGBAAt(10-BorderWidth, 20))
}

func TestHighlightClipsOutOfBounds(t *testing.T) {
	src := blank(40, 40)
	assert.NotPanics(t, func() {
		Highlight(src, []Mark{
			{Box: image.Rect(-100, -100, -50, -50)},
			{Box: image.Rect(30, 30, 90, 90), Filled: true},
		})
	})
}
