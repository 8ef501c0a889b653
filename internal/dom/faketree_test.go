package dom

import (
	"errors"
	"fmt"
	"sync"
)

// fakeElement is a hand-built host node for tests. Zero-value geometry
// and style mean "1x1 visible block at the origin" unless overridden.
type fakeElement struct {
	kind     Kind
	text     string
	tag      string
	attrs    map[string]string
	children []*fakeElement
	parent   *fakeElement

	box      Rect
	style    Style
	boxErr   error
	styleErr error
}

func (f *fakeElement) Kind() Kind                    { return f.kind }
func (f *fakeElement) Text() string                  { return f.text }
func (f *fakeElement) Tag() string                   { return f.tag }
func (f *fakeElement) Attributes() map[string]string { return f.attrs }

func (f *fakeElement) Children() []Element {
	out := make([]Element, len(f.children))
	for i, c := range f.children {
		out[i] = c
	}
	return out
}

func (f *fakeElement) Parent() Element {
	if f.parent == nil {
		return nil
	}
	return f.parent
}

func (f *fakeElement) Box() (Rect, error) {
	if f.boxErr != nil {
		return Rect{}, f.boxErr
	}
	return f.box, nil
}

func (f *fakeElement) ComputedStyle() (Style, error) {
	if f.styleErr != nil {
		return Style{}, f.styleErr
	}
	return f.style, nil
}

// elem builds a visible element node with children attached and parent
// pointers wired.
func elem(tag string, children ...*fakeElement) *fakeElement {
	e := &fakeElement{
		kind:     KindElement,
		tag:      tag,
		children: children,
		box:      Rect{X: 0, Y: 0, Width: 100, Height: 20},
		style:    visibleStyle(),
	}
	for _, c := range children {
		c.parent = e
	}
	return e
}

func text(content string) *fakeElement {
	return &fakeElement{kind: KindText, text: content}
}

func visibleStyle() Style {
	return Style{Display: "block", Visibility: "visible", Opacity: 1, Cursor: "auto"}
}

func (f *fakeElement) withAttrs(kv ...string) *fakeElement {
	if f.attrs == nil {
		f.attrs = make(map[string]string)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		f.attrs[kv[i]] = kv[i+1]
	}
	return f
}

func (f *fakeElement) at(x, y, w, h float64) *fakeElement {
	f.box = Rect{X: x, Y: y, Width: w, Height: h}
	return f
}

func (f *fakeElement) styled(s Style) *fakeElement {
	f.style = s
	return f
}

func (f *fakeElement) add(children ...*fakeElement) *fakeElement {
	for _, c := range children {
		c.parent = f
		f.children = append(f.children, c)
	}
	return f
}

var errHost = errors.New("host failure")

// fakePainter records overlay activity. Containers counts how many
// overlay containers currently exist in the "document": Clear drops any
// existing one, the first Paint after a Clear lazily creates one.
type fakePainter struct {
	mu         sync.Mutex
	Containers int
	Clears     int
	Painted    []Highlight
	PaintErrAt int // index whose Paint call fails; -1 disables
	hasOverlay bool
}

func newFakePainter() *fakePainter {
	return &fakePainter{PaintErrAt: -1}
}

func (p *fakePainter) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Clears++
	if p.hasOverlay {
		p.hasOverlay = false
		p.Containers--
	}
	return nil
}

func (p *fakePainter) Paint(h Highlight) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h.Index == p.PaintErrAt {
		return fmt.Errorf("paint %d: %w", h.Index, errHost)
	}
	if !p.hasOverlay {
		p.hasOverlay = true
		p.Containers++
	}
	p.Painted = append(p.Painted, h)
	return nil
}
