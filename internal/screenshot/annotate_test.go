package screenshot

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateDrawsRect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	red := color.RGBA{255, 0, 0, 255}

	out := Annotate(src, []Box{{X: 20, Y: 20, Width: 40, Height: 30, Index: 0, Color: red}})
	rgba, ok := out.(*image.RGBA)
	require.True(t, ok)

	// Border pixels are painted, interior (away from the marker) is not.
	assert.Equal(t, red, rgba.RGBAAt(30, 20))
	assert.Equal(t, red, rgba.RGBAAt(20, 35))
	assert.Equal(t, color.RGBA{}, rgba.RGBAAt(45, 45))
}

func TestAnnotateClipsOutOfBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 50, 50))
	blue := color.RGBA{0, 0, 255, 255}

	// Must not panic when the box overflows the image.
	out := Annotate(src, []Box{{X: 40, Y: 40, Width: 100, Height: 100, Index: 3, Color: blue}})
	assert.NotNil(t, out)
}

func TestAnnotateLeavesSourceUntouched(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	Annotate(src, []Box{{X: 2, Y: 2, Width: 5, Height: 5, Color: color.RGBA{R: 255, A: 255}}})
	assert.Equal(t, color.RGBA{}, src.RGBAAt(2, 2))
}
