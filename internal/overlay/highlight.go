// Package overlay marks filled and unfilled fields on a page screenshot.
package overlay

import (
	"image"
	"image/color"
	"image/draw"
)

var (
	FilledColor   = color.RGBA{46, 160, 67, 255}
	UnfilledColor = color.RGBA{218, 54, 51, 255}
)

// Mark is the rendered box of one field.
type Mark struct {
	Box    image.Rectangle
	Filled bool
}

// BorderWidth is the stroke width of a mark.
const BorderWidth = 3

// Highlight returns a copy of img with a rectangle around every mark, green
// when the field was filled and red when it was not. A filled mark gets a
// tick badge in its top-right corner and an unfilled one a cross.
func Highlight(img image.Image, marks []Mark) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, m := range marks {
		box := m.Box.Inset(-BorderWidth)
		if box.Intersect(bounds).Empty() {
			continue
		}
		c := UnfilledColor
		if m.Filled {
			c = FilledColor
		}
		drawRect(out, box, BorderWidth, c)
		drawBadge(out, image.Pt(box.Max.X, box.Min.Y), m.Filled, c)
	}
	return out
}

func drawRect(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	for i := 0; i < width; i++ {
		x1, y1 := r.Min.X+i, r.Min.Y+i
		x2, y2 := r.Max.X-1-i, r.Max.Y-1-i
		if x1 > x2 || y1 > y2 {
			return
		}
		drawLine(img, x1, y1, x2, y1, c)
		drawLine(img, x1, y2, x2, y2, c)
		drawLine(img, x1, y1, x1, y2, c)
		drawLine(img, x2, y1, x2, y2, c)
	}
}

const badgeSize = 14

// drawBadge draws a filled square centred on corner with a white glyph.
func drawBadge(img *image.RGBA, corner image.Point, filled bool, c color.RGBA) {
	half := badgeSize / 2
	sq := image.Rect(corner.X-half, corner.Y-half, corner.X+half, corner.Y+half)
	draw.Draw(img, sq.Intersect(img.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)

	white := color.RGBA{255, 255, 255, 255}
	x, y := sq.Min.X+3, sq.Min.Y+3
	if filled {
		thickLine(img, x, y+4, x+3, y+7, white)
		thickLine(img, x+3, y+7, x+8, y+1, white)
		return
	}
	thickLine(img, x, y, x+7, y+7, white)
	thickLine(img, x, y+7, x+7, y, white)
}

func thickLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	drawLine(img, x1, y1, x2, y2, c)
	drawLine(img, x1+1, y1, x2+1, y2, c)
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		setPixelSafe(img, x1, y1, c)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func setPixelSafe(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
