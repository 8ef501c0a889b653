package navigator

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/ai"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/dom"
)

func indexedNode(tag string, index int, attrs map[string]string) *dom.Node {
	i := index
	return &dom.Node{
		Type:           "element",
		Tag:            tag,
		Attributes:     attrs,
		IsClickable:    true,
		IsVisible:      true,
		HighlightIndex: &i,
	}
}

func TestFallbackSelector(t *testing.T) {
	n := &Navigator{lastIndexed: []*dom.Node{
		indexedNode("button", 0, map[string]string{"data-agent-id": "17"}),
		indexedNode("a", 1, map[string]string{"id": "apply-link"}),
		indexedNode("input", 2, nil),
	}}

	assert.Equal(t, `[data-agent-id="17"]`, n.fallbackSelector(ai.Action{HighlightIndex: 0}))
	assert.Equal(t, "#apply-link", n.fallbackSelector(ai.Action{HighlightIndex: 1}))
	assert.Equal(t, "input", n.fallbackSelector(ai.Action{HighlightIndex: 2}))
	assert.Empty(t, n.fallbackSelector(ai.Action{HighlightIndex: 9}))
	assert.Empty(t, n.fallbackSelector(ai.Action{HighlightIndex: -1}))
}

func TestSummaryText(t *testing.T) {
	node := indexedNode("button", 0, nil)
	node.Children = []*dom.Node{
		{Type: "text", Content: "Easy"},
		{Type: "element", Tag: "span", Children: []*dom.Node{{Type: "text", Content: "Apply"}}},
	}
	assert.Equal(t, "Easy Apply", summaryText(node))
}

func TestRunBatchStopsOnLowConfidence(t *testing.T) {
	// No actor is wired: reaching execute would panic, so returning cleanly
	// proves the low-confidence action never ran.
	n := &Navigator{logger: slog.Default()}

	replan, err := n.runBatch(context.Background(), []ai.Action{
		{Type: "click", Selector: "#maybe", Confidence: 0.2},
	})
	require.NoError(t, err)
	assert.True(t, replan)
}

func TestSummaryTextTruncates(t *testing.T) {
	node := indexedNode("p", 0, nil)
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	node.Children = []*dom.Node{{Type: "text", Content: string(long)}}

	got := summaryText(node)
	require.LessOrEqual(t, len(got), 80)
}
