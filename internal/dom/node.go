package dom

import "encoding/json"

// Node is one entry in the serialized tree returned by a build. A node is
// either a text node (Type "text", Content set) or an element node (Type
// "element", everything else set). The classification flags are computed
// once during the build and never updated afterwards.
type Node struct {
	Type       string            `json:"type"`
	Tag        string            `json:"tag,omitempty"`
	Content    string            `json:"content,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*Node           `json:"children,omitempty"`

	IsClickable  bool `json:"isClickable"`
	IsVisible    bool `json:"isVisible"`
	IsInViewport bool `json:"isInViewport"`

	// HighlightIndex is set only on elements selected for highlighting
	// in the build that produced this tree. Values are dense from 0.
	HighlightIndex *int `json:"highlightIndex,omitempty"`
}

const (
	typeElement = "element"
	typeText    = "text"
)

// textJSON keeps text-node serialization down to the two fields the
// consumers expect, without the element-only flags.
type textJSON struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type elementJSON struct {
	Type           string            `json:"type"`
	Tag            string            `json:"tag"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	Children       []*Node           `json:"children,omitempty"`
	IsClickable    bool              `json:"isClickable"`
	IsVisible      bool              `json:"isVisible"`
	IsInViewport   bool              `json:"isInViewport"`
	HighlightIndex *int              `json:"highlightIndex,omitempty"`
}

// MarshalJSON serializes text nodes as {type, content} and element nodes
// with the full flag set.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Type == typeText {
		return json.Marshal(textJSON{Type: n.Type, Content: n.Content})
	}
	return json.Marshal(elementJSON{
		Type:           n.Type,
		Tag:            n.Tag,
		Attributes:     n.Attributes,
		Children:       n.Children,
		IsClickable:    n.IsClickable,
		IsVisible:      n.IsVisible,
		IsInViewport:   n.IsInViewport,
		HighlightIndex: n.HighlightIndex,
	})
}

// UnmarshalJSON accepts both shapes produced by MarshalJSON.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.Type = raw.Type
	n.Tag = raw.Tag
	n.Attributes = raw.Attributes
	n.Children = raw.Children
	n.IsClickable = raw.IsClickable
	n.IsVisible = raw.IsVisible
	n.IsInViewport = raw.IsInViewport
	n.HighlightIndex = raw.HighlightIndex
	if n.Type == typeText {
		var t textJSON
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		n.Content = t.Content
	}
	return nil
}

// IsElement reports whether the node is an element node.
func (n *Node) IsElement() bool { return n.Type == typeElement }

// FindClickable collects, in document order, every element in the subtree
// that is both clickable and visible (self included).
func (n *Node) FindClickable() []*Node {
	var out []*Node
	n.walk(func(node *Node) {
		if node.IsElement() && node.IsClickable && node.IsVisible {
			out = append(out, node)
		}
	})
	return out
}

// FindHighlighted collects every element carrying a highlight index,
// ordered by that index.
func (n *Node) FindHighlighted() []*Node {
	var out []*Node
	n.walk(func(node *Node) {
		if node.HighlightIndex != nil {
			out = append(out, node)
		}
	})
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && *out[j-1].HighlightIndex > *out[j].HighlightIndex; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.walk(fn)
	}
}
