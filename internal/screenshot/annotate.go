package screenshot

import (
	"image"
	"image/color"
	"image/draw"
)

// Box is one rectangle to draw over a capture, usually mirroring a
// highlight painted into the live page.
type Box struct {
	X, Y, Width, Height int
	Index               int
	Color               color.RGBA
}

// Annotate returns a copy of the image with each box drawn as a 2px
// rectangle and a small filled index marker at its top-left corner.
func Annotate(src image.Image, boxes []Box) image.Image {
	bounds := src.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, src, bounds.Min, draw.Src)

	for _, b := range boxes {
		drawRect(out, b.X, b.Y, b.Width, b.Height, b.Color)
		drawIndexMarker(out, b.X, b.Y, b.Index, b.Color)
	}
	return out
}

func drawRect(img *image.RGBA, x, y, w, h int, c color.RGBA) {
	for t := 0; t < 2; t++ {
		drawLine(img, x-t, y-t, x+w+t, y-t, c)
		drawLine(img, x-t, y+h+t, x+w+t, y+h+t, c)
		drawLine(img, x-t, y-t, x-t, y+h+t, c)
		drawLine(img, x+w+t, y-t, x+w+t, y+h+t, c)
	}
}

// drawIndexMarker fills a small square whose side grows with the index so
// markers stay distinguishable even without text rendering.
func drawIndexMarker(img *image.RGBA, x, y, index int, c color.RGBA) {
	size := 8 + (index%5)*2
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			setPixelSafe(img, x+dx, y+dy, c)
		}
	}
}

// drawLine draws a line between two points using Bresenham's algorithm
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
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		img.Set(x, y, c)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
