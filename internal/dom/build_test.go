package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoElementPage builds a body with one button inside the viewport and
// one link below the fold.
func twoElementPage() (body, button, link *fakeElement) {
	button = elem("button").at(100, 100, 120, 40)
	link = elem("a").at(100, 2000, 200, 20).withAttrs("href", "/jobs")
	body = elem("body", elem("div", button), elem("div", link))
	body.at(0, 0, 1280, 3000)
	return body, button, link
}

func newTestBuilder(p Painter) *Builder {
	return NewBuilder(defaultViewport(), p, nil)
}

func TestBuildHighlightsViewportFirst(t *testing.T) {
	body, _, _ := twoElementPage()
	painter := newFakePainter()

	tree := newTestBuilder(painter).Build(body, BuildOptions{Highlight: true, MaxHighlight: 5})
	require.NotNil(t, tree)

	highlighted := tree.FindHighlighted()
	require.Len(t, highlighted, 2)

	buttonNode, linkNode := highlighted[0], highlighted[1]
	assert.Equal(t, "button", buttonNode.Tag)
	assert.True(t, buttonNode.IsInViewport)
	assert.Equal(t, 0, *buttonNode.HighlightIndex)

	assert.Equal(t, "a", linkNode.Tag)
	assert.False(t, linkNode.IsInViewport)
	assert.Equal(t, 1, *linkNode.HighlightIndex)

	require.Len(t, painter.Painted, 2)
	assert.Equal(t, HighlightColor(0), painter.Painted[0].Color)
}

func TestBuildCapOne(t *testing.T) {
	body, _, _ := twoElementPage()

	tree := newTestBuilder(newFakePainter()).Build(body, BuildOptions{Highlight: true, MaxHighlight: 1})
	require.NotNil(t, tree)

	highlighted := tree.FindHighlighted()
	require.Len(t, highlighted, 1)
	assert.Equal(t, "button", highlighted[0].Tag)

	// The link still classifies, it just carries no index at all.
	clickable := tree.FindClickable()
	require.Len(t, clickable, 2)
	assert.Nil(t, clickable[1].HighlightIndex)
}

func TestBuildNoHighlight(t *testing.T) {
	body, _, _ := twoElementPage()
	painter := newFakePainter()

	tree := newTestBuilder(painter).Build(body, BuildOptions{Highlight: false, MaxHighlight: 5})
	require.NotNil(t, tree)

	assert.Empty(t, tree.FindHighlighted())
	assert.Empty(t, painter.Painted)
	assert.Equal(t, 0, painter.Containers, "no overlay container may exist after a non-highlight build")

	// Classification still happened.
	assert.Len(t, tree.FindClickable(), 2)
}

func TestBuildPrunesWhitespaceText(t *testing.T) {
	body := elem("body",
		text("   \n\t "),
		elem("p", text("  hello  ")),
	)

	tree := newTestBuilder(nil).Build(body, BuildOptions{})
	require.NotNil(t, tree)

	// The whitespace-only text node contributes nothing.
	require.Len(t, tree.Children, 1)
	p := tree.Children[0]
	require.Len(t, p.Children, 1)
	assert.Equal(t, "text", p.Children[0].Type)
	assert.Equal(t, "hello", p.Children[0].Content)
}

func TestBuildWhitespaceRootIsNil(t *testing.T) {
	assert.Nil(t, newTestBuilder(nil).Build(text("  \n "), BuildOptions{}))
}

func TestBuildDropsOtherNodeKinds(t *testing.T) {
	comment := &fakeElement{kind: KindOther}
	body := elem("body", comment, elem("p", text("x")))

	tree := newTestBuilder(nil).Build(body, BuildOptions{})
	require.NotNil(t, tree)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "p", tree.Children[0].Tag)
}

func TestBuildViewportImpliesVisible(t *testing.T) {
	body, _, _ := twoElementPage()
	hidden := elem("span").styled(Style{Display: "none"}).withAttrs("onclick", "x()")
	body.add(hidden)

	tree := newTestBuilder(nil).Build(body, BuildOptions{Highlight: true, MaxHighlight: 10})
	require.NotNil(t, tree)

	tree.walk(func(n *Node) {
		if n.IsInViewport {
			assert.True(t, n.IsVisible, "in-viewport node %s must be visible", n.Tag)
		}
		if n.HighlightIndex != nil {
			assert.True(t, n.IsClickable && n.IsVisible,
				"highlighted node %s must be clickable and visible", n.Tag)
		}
	})
}

func TestBuildIndexInvariants(t *testing.T) {
	// Ten buttons, half in the viewport, cap at 7.
	body := elem("body")
	for i := 0; i < 10; i++ {
		y := float64(50 + i*40)
		if i%2 == 1 {
			y += 5000 // below the fold
		}
		body.add(elem("button").at(10, y, 80, 30))
	}

	const maxHighlight = 7
	tree := newTestBuilder(newFakePainter()).Build(body, BuildOptions{Highlight: true, MaxHighlight: maxHighlight})
	require.NotNil(t, tree)

	highlighted := tree.FindHighlighted()
	require.Len(t, highlighted, maxHighlight, "k = min(maxHighlight, candidates)")

	seen := make(map[int]bool)
	for _, n := range highlighted {
		seen[*n.HighlightIndex] = true
	}
	for i := 0; i < maxHighlight; i++ {
		assert.True(t, seen[i], "indices must be dense: missing %d", i)
	}

	// Every in-viewport index precedes every out-of-viewport index.
	inGroup := true
	for _, n := range highlighted {
		if !n.IsInViewport {
			inGroup = false
		}
		require.Equal(t, inGroup, n.IsInViewport,
			"in-viewport candidates must all precede out-of-viewport ones")
	}
}

func TestBuildCapExceedsCandidates(t *testing.T) {
	body, _, _ := twoElementPage()
	tree := newTestBuilder(nil).Build(body, BuildOptions{Highlight: true, MaxHighlight: 100})
	assert.Len(t, tree.FindHighlighted(), 2)
}

func TestBuildZeroCap(t *testing.T) {
	body, _, _ := twoElementPage()
	painter := newFakePainter()
	tree := newTestBuilder(painter).Build(body, BuildOptions{Highlight: true, MaxHighlight: 0})
	assert.Empty(t, tree.FindHighlighted())
	assert.Empty(t, painter.Painted)
}

func TestBuildRepeatedCallsDoNotAccumulateOverlays(t *testing.T) {
	body, _, _ := twoElementPage()
	painter := newFakePainter()
	b := newTestBuilder(painter)

	first := b.Build(body, BuildOptions{Highlight: true, MaxHighlight: 5})
	second := b.Build(body, BuildOptions{Highlight: true, MaxHighlight: 5})

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, 1, painter.Containers, "successive builds must not stack overlay containers")
	assert.Equal(t, 2, painter.Clears)

	// Same shape, same index assignment.
	firstIdx := first.FindHighlighted()
	secondIdx := second.FindHighlighted()
	require.Equal(t, len(firstIdx), len(secondIdx))
	for i := range firstIdx {
		assert.Equal(t, *firstIdx[i].HighlightIndex, *secondIdx[i].HighlightIndex)
		assert.Equal(t, firstIdx[i].Tag, secondIdx[i].Tag)
	}
}

func TestBuildPaintFailureDoesNotAbort(t *testing.T) {
	body, _, _ := twoElementPage()
	painter := newFakePainter()
	painter.PaintErrAt = 0

	tree := newTestBuilder(painter).Build(body, BuildOptions{Highlight: true, MaxHighlight: 5})
	require.NotNil(t, tree)

	// Both candidates keep their indices; only the first rectangle is missing.
	assert.Len(t, tree.FindHighlighted(), 2)
	require.Len(t, painter.Painted, 1)
	assert.Equal(t, 1, painter.Painted[0].Index)
}

func TestClearHighlightsStandalone(t *testing.T) {
	painter := newFakePainter()
	b := newTestBuilder(painter)

	body, _, _ := twoElementPage()
	b.Build(body, BuildOptions{Highlight: true, MaxHighlight: 5})
	require.Equal(t, 1, painter.Containers)

	require.NoError(t, b.ClearHighlights())
	assert.Equal(t, 0, painter.Containers)

	// Idempotent.
	require.NoError(t, b.ClearHighlights())
	assert.Equal(t, 0, painter.Containers)
}

func TestBuildSortOrderWithinGroups(t *testing.T) {
	// Insert out of visual order to prove sorting by top edge.
	b1 := elem("button").at(10, 300, 50, 20) // viewport, lower
	b2 := elem("button").at(10, 50, 50, 20)  // viewport, upper
	a1 := elem("a").at(10, 9000, 50, 20).withAttrs("href", "#x")
	a2 := elem("a").at(10, 4000, 50, 20).withAttrs("href", "#y")
	body := elem("body", b1, a1, b2, a2)

	tree := newTestBuilder(nil).Build(body, BuildOptions{Highlight: true, MaxHighlight: 10})
	h := tree.FindHighlighted()
	require.Len(t, h, 4)

	assert.True(t, h[0].IsInViewport)
	assert.True(t, h[1].IsInViewport)
	assert.False(t, h[2].IsInViewport)
	assert.False(t, h[3].IsInViewport)

	// Topmost first within each group: b2 (y=50) before b1 (y=300),
	// a2 (y=4000) before a1 (y=9000).
	assert.Equal(t, "button", h[0].Tag)
	assert.Equal(t, 0, *h[0].HighlightIndex)
	assert.Equal(t, "#y", h[2].Attributes["href"])
	assert.Equal(t, "#x", h[3].Attributes["href"])
}
