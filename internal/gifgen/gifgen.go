// Package gifgen writes the before/after review animation of a fill.
package gifgen

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"os"
	"sort"
	"time"

	"github.com/nfnt/resize"
)

// DefaultMaxWidth bounds the width of the written frames.
const DefaultMaxWidth = 800

// Options configures the animation.
type Options struct {
	// FrameDelay is how long each frame is shown. Zero means 1.5s.
	FrameDelay time.Duration
	// MaxWidth scales wider frames down. Zero means DefaultMaxWidth.
	MaxWidth uint
}

// Encode writes frames as a looping GIF to w. Frames are scaled to the
// size of the first one.
func Encode(w io.Writer, frames []image.Image, opts Options) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}
	delay := opts.FrameDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	maxWidth := opts.MaxWidth
	if maxWidth == 0 {
		maxWidth = DefaultMaxWidth
	}

	width, height := outputSize(frames[0].Bounds(), maxWidth)
	palette := generatePalette(frames...)
	g := &gif.GIF{
		Image: make([]*image.Paletted, len(frames)),
		Delay: make([]int, len(frames)),
	}
	for i, frame := range frames {
		scaled := frame
		if b := frame.Bounds(); uint(b.Dx()) != width || uint(b.Dy()) != height {
			scaled = resize.Resize(width, height, frame, resize.Lanczos3)
		}
		paletted := image.NewPaletted(image.Rect(0, 0, int(width), int(height)), palette)
		draw.FloydSteinberg.Draw(paletted, paletted.Bounds(), scaled, scaled.Bounds().Min)
		g.Image[i] = paletted
		g.Delay[i] = int(delay / (10 * time.Millisecond))
	}
	return gif.EncodeAll(w, g)
}

// Generate writes the animation to path and returns the file size.
func Generate(path string, frames []image.Image, opts Options) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := Encode(f, frames, opts); err != nil {
		return 0, fmt.Errorf("encode %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func outputSize(b image.Rectangle, maxWidth uint) (uint, uint) {
	w, h := uint(b.Dx()), uint(b.Dy())
	if w == 0 || h == 0 || w <= maxWidth {
		return w, h
	}
	return maxWidth, uint(float64(maxWidth) * float64(h) / float64(w))
}

// generatePalette builds a 256-colour palette from the most frequent colours
// sampled across all frames, so the highlight colours of the last frame
// survive quantisation.
func generatePalette(frames ...image.Image) color.Palette {
	counts := make(map[color.RGBA]int)
	const step = 4
	for _, img := range frames {
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y += step {
			for x := b.Min.X; x < b.Max.X; x += step {
				r, g, bl, a := img.At(x, y).RGBA()
				counts[color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}]++
			}
		}
	}

	colors := make([]color.RGBA, 0, len(counts))
	for c := range counts {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		if counts[colors[i]] != counts[colors[j]] {
			return counts[colors[i]] > counts[colors[j]]
		}
		return rgbaLess(colors[i], colors[j])
	})

	palette := make(color.Palette, 0, 256)
	for _, c := range colors {
		if len(palette) == 256 {
			break
		}
		palette = append(palette, c)
	}
	for len(palette) < 256 {
		gray := uint8(len(palette))
		palette = append(palette, color.RGBA{gray, gray, gray, 255})
	}
	return palette
}

func rgbaLess(a, b color.RGBA) bool {
	if a.R != b.R {
		return a.R < b.R
	}
	if a.G != b.G {
		return a.G < b.G
	}
	if a.B != b.B {
		return a.B < b.B
	}
	return a.A < b.A
}
