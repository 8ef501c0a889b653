package browser

import (
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/dom"
)

// DOMService captures document snapshots and turns them into classified,
// optionally highlighted trees the agents reason over.
type DOMService struct {
	page   *rod.Page
	logger *slog.Logger
}

// NewDOMService binds the service to a page.
func NewDOMService(page *rod.Page, logger *slog.Logger) *DOMService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DOMService{page: page, logger: logger}
}

// Tree snapshots the page and builds the classified tree. With highlight
// enabled, up to maxHighlight clickable visible elements receive dense
// indices and matching overlay rectangles on the live page; viewport
// elements are indexed before below-the-fold ones.
func (s *DOMService) Tree(highlight bool, maxHighlight int) (*dom.Node, error) {
	snap, err := CaptureSnapshot(s.page)
	if err != nil {
		return nil, err
	}

	builder := dom.NewBuilder(snap.Viewport, NewOverlayPainter(s.page), s.logger)
	tree := builder.Build(snap.Root, dom.BuildOptions{
		Highlight:    highlight,
		MaxHighlight: maxHighlight,
	})
	if tree == nil {
		return nil, fmt.Errorf("snapshot produced an empty tree")
	}
	return tree, nil
}

// ClickableElements snapshots the page and returns every clickable,
// visible element in document order, without painting anything.
func (s *DOMService) ClickableElements() ([]*dom.Node, error) {
	tree, err := s.Tree(false, 0)
	if err != nil {
		return nil, err
	}
	return tree.FindClickable(), nil
}

// ClearHighlights removes the overlay without rebuilding the tree.
func (s *DOMService) ClearHighlights() error {
	return NewOverlayPainter(s.page).Clear()
}
