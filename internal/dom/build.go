package dom

import (
	"log/slog"
	"math"
	"sort"
	"strings"
)

// BuildOptions controls one build.
type BuildOptions struct {
	// Highlight enables overlay painting and highlight-index assignment.
	// Classification happens either way.
	Highlight bool

	// MaxHighlight caps how many candidates receive an index. Zero means
	// no element is highlighted even when Highlight is true.
	MaxHighlight int
}

// candidate pairs a live element handle with the node produced for it.
// Collected only for elements that are both clickable and visible, and
// discarded when the build returns; the highlight index written onto the
// node is the only information that survives.
type candidate struct {
	el   Element
	node *Node
}

// Builder produces one complete tree snapshot per Build call. Each call
// is independent: the previous overlay is cleared up front and no state
// carries over, so the builder can be invoked repeatedly (for example
// after every scroll) to refresh the picture.
type Builder struct {
	classifier *Classifier
	painter    Painter
	logger     *slog.Logger
}

// NewBuilder wires a builder for one page snapshot. A nil painter draws
// nothing; a nil logger falls back to slog.Default().
func NewBuilder(viewport Viewport, painter Painter, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if painter == nil {
		painter = NopPainter{}
	}
	return &Builder{
		classifier: NewClassifier(viewport, logger),
		painter:    painter,
		logger:     logger,
	}
}

// Build walks the document below root, classifies every element, and
// returns the mirrored tree. Returns nil when root is a whitespace-only
// text node or an unrepresentable node kind.
//
// When opts.Highlight is set, the clickable+visible candidates collected
// during the walk are ranked (in-viewport first, then by top edge) and
// the first opts.MaxHighlight of them get dense indices from 0 and an
// overlay rectangle each.
func (b *Builder) Build(root Element, opts BuildOptions) *Node {
	// Stale overlays from a previous build are removed unconditionally,
	// even when this build does not highlight.
	if err := b.painter.Clear(); err != nil {
		b.logger.Warn("dom: clearing highlight overlay failed", "error", err)
	}

	var candidates []candidate
	tree := b.traverse(root, &candidates)

	if opts.Highlight && tree != nil {
		b.highlight(candidates, opts.MaxHighlight)
	}

	return tree
}

// ClearHighlights removes the overlay container without rebuilding the
// tree. Safe to call when no overlay exists.
func (b *Builder) ClearHighlights() error {
	return b.painter.Clear()
}

// traverse mirrors one host node, depth-first in document order.
func (b *Builder) traverse(el Element, candidates *[]candidate) *Node {
	switch el.Kind() {
	case KindText:
		content := strings.TrimSpace(el.Text())
		if content == "" {
			return nil
		}
		return &Node{Type: typeText, Content: content}

	case KindElement:
		visible := b.classifier.Visible(el)
		clickable := b.classifier.Clickable(el)
		inViewport := visible && b.classifier.InViewport(el)

		node := &Node{
			Type:         typeElement,
			Tag:          el.Tag(),
			Attributes:   copyAttrs(el.Attributes()),
			IsClickable:  clickable,
			IsVisible:    visible,
			IsInViewport: inViewport,
		}

		for _, child := range el.Children() {
			if childNode := b.traverse(child, candidates); childNode != nil {
				node.Children = append(node.Children, childNode)
			}
		}

		if clickable && visible {
			*candidates = append(*candidates, candidate{el: el, node: node})
		}
		return node

	default:
		return nil
	}
}

// highlight ranks the candidates and paints the selected ones.
//
// The comparator reads the bounding-box top through the host interface at
// compare time. With a snapshot-backed host the reads are stable; against
// a document mutating mid-sort the order can be inconsistent. That
// live-read behavior is intentional and kept as a known constraint.
func (b *Builder) highlight(candidates []candidate, maxHighlight int) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, z := candidates[i], candidates[j]
		if a.node.IsInViewport != z.node.IsInViewport {
			return a.node.IsInViewport
		}
		return b.liveTop(a.el) < b.liveTop(z.el)
	})

	for i, cand := range candidates {
		if i >= maxHighlight {
			break
		}
		index := i
		cand.node.HighlightIndex = &index

		box, err := cand.el.Box()
		if err != nil {
			b.logger.Warn("dom: highlight box read failed",
				"index", index, "tag", cand.node.Tag, "error", err)
			continue
		}
		h := Highlight{Index: index, Box: box, Color: HighlightColor(index)}
		if err := b.painter.Paint(h); err != nil {
			b.logger.Warn("dom: painting highlight failed",
				"index", index, "tag", cand.node.Tag, "error", err)
		}
	}
}

func (b *Builder) liveTop(el Element) float64 {
	box, err := el.Box()
	if err != nil {
		// Sorts unreadable elements last within their group.
		return math.Inf(1)
	}
	return box.Y
}

func copyAttrs(attrs map[string]string) map[string]string {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
