package browser

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/dom"
)

const overlayContainerID = "agent-highlight-overlay"

// clearOverlayJS removes the highlight container if present. Safe to run
// when nothing was ever painted.
const clearOverlayJS = `(id) => {
	const container = document.getElementById(id);
	if (container) {
		container.remove();
	}
}`

// paintHighlightJS lazily creates the overlay container, then appends one
// bordered, translucently filled rectangle with the index label pinned to
// its top-left corner. Coordinates are page-relative (the capture script
// already folded in the scroll offset), so the container spans the full
// scrollable canvas and rectangles stay glued to their elements.
const paintHighlightJS = `(id, index, x, y, w, h, color) => {
	let container = document.getElementById(id);
	if (!container) {
		container = document.createElement('div');
		container.id = id;
		container.style.position = 'absolute';
		container.style.top = '0';
		container.style.left = '0';
		container.style.width = '100%';
		container.style.height = '100%';
		container.style.pointerEvents = 'none';
		container.style.zIndex = '2147483647';
		document.body.appendChild(container);
	}

	const box = document.createElement('div');
	box.style.position = 'absolute';
	box.style.left = x + 'px';
	box.style.top = y + 'px';
	box.style.width = w + 'px';
	box.style.height = h + 'px';
	box.style.border = '2px solid ' + color;
	box.style.backgroundColor = color + '1A';
	box.style.boxSizing = 'border-box';
	box.style.pointerEvents = 'none';

	const label = document.createElement('span');
	label.textContent = String(index);
	label.style.position = 'absolute';
	label.style.top = '-2px';
	label.style.left = '-2px';
	label.style.backgroundColor = color;
	label.style.color = '#FFFFFF';
	label.style.fontSize = '11px';
	label.style.fontFamily = 'monospace';
	label.style.padding = '0 3px';
	label.style.lineHeight = '14px';

	box.appendChild(label);
	container.appendChild(box);
}`

// OverlayPainter renders highlight rectangles into the live page as DOM
// overlay elements. It satisfies dom.Painter.
type OverlayPainter struct {
	page *rod.Page
}

// NewOverlayPainter returns a painter bound to the given page.
func NewOverlayPainter(page *rod.Page) *OverlayPainter {
	return &OverlayPainter{page: page}
}

// Clear removes every previously painted rectangle. Idempotent.
func (p *OverlayPainter) Clear() error {
	if _, err := p.page.Eval(clearOverlayJS, overlayContainerID); err != nil {
		return fmt.Errorf("failed to clear highlight overlay: %w", err)
	}
	return nil
}

// Paint draws one highlight rectangle with its index label.
func (p *OverlayPainter) Paint(h dom.Highlight) error {
	_, err := p.page.Eval(paintHighlightJS,
		overlayContainerID, h.Index, h.Box.X, h.Box.Y, h.Box.Width, h.Box.Height, h.Color)
	if err != nil {
		return fmt.Errorf("failed to paint highlight %d: %w", h.Index, err)
	}
	return nil
}
