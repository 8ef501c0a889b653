package dom

// palette holds the highlight colors, cycled with index % len(palette).
// Border and label use the color as-is; the painter derives a low-alpha
// fill from it.
var palette = []string{
	"#FF0000", "#00FF00", "#0000FF", "#FFA500", "#800080",
	"#008080", "#FF69B4", "#4B0082", "#FF4500", "#2E8B57",
	"#DC143C", "#4682B4", "#FF1493", "#8B0000", "#556B2F",
	"#9400D3", "#FF8C00", "#00CED1", "#8B008B", "#B8860B",
	"#32CD32", "#FF6347", "#7B68EE", "#3CB371",
}

// fallbackColor is used if an index somehow resolves outside the palette.
// Unreachable given the modulo, kept as a guard.
const fallbackColor = "#FF0000"

// HighlightColor returns the palette color for an assigned index.
func HighlightColor(index int) string {
	if index < 0 {
		return fallbackColor
	}
	i := index % len(palette)
	if i < 0 || i >= len(palette) {
		return fallbackColor
	}
	return palette[i]
}

// PaletteSize reports how many distinct highlight colors exist.
func PaletteSize() int { return len(palette) }

// Highlight describes one overlay to draw: a bordered translucent
// rectangle over the element's current box plus a small index label at
// the rectangle's top-left corner.
type Highlight struct {
	Index int
	Box   Rect
	Color string
}

// Painter renders highlight overlays into the host document. The browser
// package implements it with injected script; tests implement it with an
// in-memory recorder.
//
// Clear must be idempotent: it removes the whole overlay container if one
// exists and is a no-op otherwise. Paint draws one highlight; a failure
// affects only that highlight.
type Painter interface {
	Clear() error
	Paint(h Highlight) error
}

// NopPainter is a Painter that draws nothing. Used when a caller wants
// classification without any document side effects.
type NopPainter struct{}

func (NopPainter) Clear() error          { return nil }
func (NopPainter) Paint(Highlight) error { return nil }
