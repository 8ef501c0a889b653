package browser

import (
	"encoding/json"
	"fmt"

	"github.com/go-rod/rod"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/dom"
)

// snapshotJS walks the live document once and returns a JSON tree of raw
// nodes together with the viewport size. Element nodes are tagged with a
// data-agent-id attribute on the way down so that anything the tree
// builder later highlights stays addressable by selector, even after the
// page re-renders text or classes.
const snapshotJS = `() => {
	let nextID = 0;
	function capture(node) {
		if (node.nodeType === Node.TEXT_NODE) {
			return { nodeType: 3, text: node.textContent || '' };
		}
		if (node.nodeType !== Node.ELEMENT_NODE) {
			return { nodeType: 0 };
		}
		if (!node.hasAttribute('data-agent-id')) {
			node.setAttribute('data-agent-id', String(nextID++));
		}
		const attrs = {};
		for (const a of node.attributes) {
			attrs[a.name] = a.value;
		}
		const rect = node.getBoundingClientRect();
		const style = window.getComputedStyle(node);
		const children = [];
		for (const child of node.childNodes) {
			children.push(capture(child));
		}
		return {
			nodeType: 1,
			tag: node.tagName.toLowerCase(),
			attrs: attrs,
			rect: {
				x: rect.x + window.scrollX,
				y: rect.y + window.scrollY,
				w: rect.width,
				h: rect.height
			},
			style: {
				display: style.display,
				visibility: style.visibility,
				opacity: parseFloat(style.opacity),
				cursor: style.cursor
			},
			children: children
		};
	}
	return {
		viewport: { w: window.innerWidth, h: window.innerHeight },
		scroll: { x: window.scrollX, y: window.scrollY },
		root: capture(document.body)
	};
}`

type rawNode struct {
	NodeType int               `json:"nodeType"`
	Text     string            `json:"text"`
	Tag      string            `json:"tag"`
	Attrs    map[string]string `json:"attrs"`
	Rect     struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"rect"`
	Style struct {
		Display    string  `json:"display"`
		Visibility string  `json:"visibility"`
		Opacity    float64 `json:"opacity"`
		Cursor     string  `json:"cursor"`
	} `json:"style"`
	Children []*rawNode `json:"children"`
}

type rawSnapshot struct {
	Viewport struct {
		W float64 `json:"w"`
		H float64 `json:"h"`
	} `json:"viewport"`
	Scroll struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"scroll"`
	Root *rawNode `json:"root"`
}

// Snapshot is a point-in-time copy of the document subtree rooted at
// body, decoupled from the live page. Classification runs against this
// copy so a mutating document cannot shift under the walk.
type Snapshot struct {
	Root     dom.Element
	Viewport dom.Viewport
	ScrollX  float64
	ScrollY  float64
}

// CaptureSnapshot evaluates the capture script on the page and decodes
// the result into the element tree the classifier consumes.
func CaptureSnapshot(page *rod.Page) (*Snapshot, error) {
	res, err := page.Eval(snapshotJS)
	if err != nil {
		return nil, fmt.Errorf("failed to capture page snapshot: %w", err)
	}

	var raw rawSnapshot
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode page snapshot: %w", err)
	}
	if raw.Root == nil {
		return nil, fmt.Errorf("page snapshot has no body")
	}

	return &Snapshot{
		Root:     toElement(raw.Root, nil),
		Viewport: dom.Viewport{Width: raw.Viewport.W, Height: raw.Viewport.H},
		ScrollX:  raw.Scroll.X,
		ScrollY:  raw.Scroll.Y,
	}, nil
}

// snapshotElement adapts one decoded node to dom.Element. All reads are
// against the captured copy; Box and ComputedStyle never touch the page.
type snapshotElement struct {
	raw      *rawNode
	parent   *snapshotElement
	children []dom.Element
}

func toElement(raw *rawNode, parent *snapshotElement) *snapshotElement {
	el := &snapshotElement{raw: raw, parent: parent}
	for _, child := range raw.Children {
		el.children = append(el.children, toElement(child, el))
	}
	return el
}

func (e *snapshotElement) Kind() dom.Kind {
	switch e.raw.NodeType {
	case 1:
		return dom.KindElement
	case 3:
		return dom.KindText
	default:
		return dom.KindOther
	}
}

func (e *snapshotElement) Text() string                  { return e.raw.Text }
func (e *snapshotElement) Tag() string                   { return e.raw.Tag }
func (e *snapshotElement) Attributes() map[string]string { return e.raw.Attrs }
func (e *snapshotElement) Children() []dom.Element       { return e.children }

func (e *snapshotElement) Parent() dom.Element {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

func (e *snapshotElement) Box() (dom.Rect, error) {
	return dom.Rect{
		X:      e.raw.Rect.X,
		Y:      e.raw.Rect.Y,
		Width:  e.raw.Rect.W,
		Height: e.raw.Rect.H,
	}, nil
}

func (e *snapshotElement) ComputedStyle() (dom.Style, error) {
	return dom.Style{
		Display:    e.raw.Style.Display,
		Visibility: e.raw.Style.Visibility,
		Opacity:    e.raw.Style.Opacity,
		Cursor:     e.raw.Style.Cursor,
	}, nil
}

// AgentID returns the data-agent-id stamped during capture, or "" for
// text nodes and untagged elements.
func AgentID(el dom.Element) string {
	if el == nil {
		return ""
	}
	return el.Attributes()["data-agent-id"]
}

// AgentSelector builds a CSS selector for a captured element.
func AgentSelector(el dom.Element) string {
	id := AgentID(el)
	if id == "" {
		return ""
	}
	return fmt.Sprintf(`[data-agent-id="%s"]`, id)
}
