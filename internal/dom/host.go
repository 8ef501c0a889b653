// Package dom builds serializable snapshots of a live document tree,
// classifying every element for clickability, visibility and viewport
// membership, and selecting a bounded set of interactive elements for
// visual highlighting.
//
// The package never talks to a browser directly. It works against the
// Element capability interface below, which the internal/browser package
// implements over a rod page snapshot and which tests implement with
// hand-built fake trees.
package dom

// Kind discriminates the host node types the builder cares about.
// Anything that is neither an element nor a text node (comments,
// doctypes, processing instructions) is dropped from the tree.
type Kind int

const (
	KindOther Kind = iota
	KindElement
	KindText
)

// Rect is a bounding box in viewport coordinates (CSS pixels).
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Empty reports whether the box has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Style is the computed-style snapshot the classifier needs. Opacity is
// parsed to a float; the other fields carry the resolved CSS values.
type Style struct {
	Display    string  `json:"display"`
	Visibility string  `json:"visibility"`
	Opacity    float64 `json:"opacity"`
	Cursor     string  `json:"cursor"`
}

// Hidden reports whether the style alone makes an element invisible.
func (s Style) Hidden() bool {
	return s.Display == "none" ||
		s.Visibility == "hidden" || s.Visibility == "collapse" ||
		s.Opacity <= 0
}

// Viewport is the visible window size at snapshot time. It is captured
// together with the page snapshot and passed into each build explicitly
// rather than cached in a package global.
type Viewport struct {
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Element is the host-provided handle to a live document node. Geometry
// and style accessors may fail (detached nodes, host errors); the
// classifier treats any such failure as "not visible / not clickable"
// instead of aborting the walk.
type Element interface {
	// Kind reports the node type. Text nodes only answer Text;
	// element nodes answer everything else.
	Kind() Kind

	// Text returns the raw text content of a text node.
	Text() string

	// Tag returns the lowercase tag name of an element node.
	Tag() string

	// Attributes returns the element's attribute map. The returned map
	// is owned by the host and must not be mutated.
	Attributes() map[string]string

	// Children returns the node's children in document order, text and
	// element nodes alike.
	Children() []Element

	// Parent returns the parent element, or nil at the tree root.
	Parent() Element

	// Box returns the current bounding box in viewport coordinates.
	Box() (Rect, error)

	// ComputedStyle returns the resolved style snapshot.
	ComputedStyle() (Style, error)
}
