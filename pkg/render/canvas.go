package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// Canvas is the drawing surface the compositor issues commands to. The
// compositor never touches pixels directly.
type Canvas interface {
	// Size returns the canvas dimensions in pixels
	Size() (width, height int)
	// DrawVerticalLine fills column x between rows y0 and y1 inclusive.
	// Rows outside [0, height-1] are clamped; out-of-range columns are
	// ignored.
	DrawVerticalLine(x, y0, y1 int, c color.RGBA)
}

// ImageCanvas is a Canvas backed by an in-memory RGBA image
type ImageCanvas struct {
	img *image.RGBA
}

// NewImageCanvas creates a black canvas of the given dimensions
func NewImageCanvas(width, height int) *ImageCanvas {
	return &ImageCanvas{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (c *ImageCanvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *ImageCanvas) DrawVerticalLine(x, y0, y1 int, col color.RGBA) {
	width, height := c.Size()
	if x < 0 || x >= width {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > height-1 {
		y1 = height - 1
	}
	for y := y0; y <= y1; y++ {
		c.img.SetRGBA(x, y, col)
	}
}

// Image returns the backing image
func (c *ImageCanvas) Image() *image.RGBA {
	return c.img
}

// EncodePNG writes the canvas as a PNG
func (c *ImageCanvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}
