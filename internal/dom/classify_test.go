package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func defaultViewport() Viewport {
	return Viewport{Width: 1280, Height: 720}
}

func TestClickable(t *testing.T) {
	c := NewClassifier(defaultViewport(), nil)

	t.Run("interactive tags", func(t *testing.T) {
		for _, tag := range []string{"a", "button", "input", "select", "textarea"} {
			assert.True(t, c.Clickable(elem(tag)), "tag %q should be clickable", tag)
		}
		assert.False(t, c.Clickable(elem("div")))
		assert.False(t, c.Clickable(elem("span")))
	})

	t.Run("click handler attributes", func(t *testing.T) {
		assert.True(t, c.Clickable(elem("div").withAttrs("onclick", "doThing()")))
		assert.True(t, c.Clickable(elem("div").withAttrs("ng-click", "vm.go()")))
		assert.True(t, c.Clickable(elem("div").withAttrs("@click", "go")))
		assert.False(t, c.Clickable(elem("div").withAttrs("onchange", "x()")))
	})

	t.Run("interactive roles", func(t *testing.T) {
		assert.True(t, c.Clickable(elem("div").withAttrs("role", "button")))
		assert.True(t, c.Clickable(elem("div").withAttrs("role", "menuitemcheckbox")))
		assert.True(t, c.Clickable(elem("div").withAttrs("role", "Switch")))
		assert.False(t, c.Clickable(elem("div").withAttrs("role", "presentation")))
	})

	t.Run("pointer cursor", func(t *testing.T) {
		e := elem("div").styled(Style{Display: "block", Visibility: "visible", Opacity: 1, Cursor: "pointer"})
		assert.True(t, c.Clickable(e))
	})

	t.Run("class hints substring match", func(t *testing.T) {
		assert.True(t, c.Clickable(elem("div").withAttrs("class", "primary-Button large")))
		assert.True(t, c.Clickable(elem("div").withAttrs("class", "navlink")))
		assert.True(t, c.Clickable(elem("div").withAttrs("class", "btn-sm")))
		assert.False(t, c.Clickable(elem("div").withAttrs("class", "card header")))
	})

	t.Run("actionable input types", func(t *testing.T) {
		for _, typ := range []string{"submit", "button", "radio", "checkbox", "reset", "file"} {
			e := elem("div")
			e.tag = "input"
			e.withAttrs("type", typ)
			assert.True(t, c.Clickable(e), "input type %q", typ)
		}
	})

	t.Run("host error degrades to false", func(t *testing.T) {
		e := elem("div")
		e.styleErr = errHost
		assert.False(t, c.Clickable(e))
	})
}

func TestVisible(t *testing.T) {
	c := NewClassifier(defaultViewport(), nil)

	// All visibility fixtures hang under a body root so the ancestor
	// walk can terminate.
	underBody := func(e *fakeElement) *fakeElement {
		elem("body", e)
		return e
	}

	t.Run("zero-size box", func(t *testing.T) {
		assert.False(t, c.Visible(underBody(elem("div").at(0, 0, 0, 20))))
		assert.False(t, c.Visible(underBody(elem("div").at(0, 0, 100, 0))))
	})

	t.Run("own style hides", func(t *testing.T) {
		assert.False(t, c.Visible(underBody(elem("div").styled(Style{Display: "none", Opacity: 1}))))
		assert.False(t, c.Visible(underBody(elem("div").styled(Style{Display: "block", Visibility: "hidden", Opacity: 1}))))
		assert.False(t, c.Visible(underBody(elem("div").styled(Style{Display: "block", Visibility: "collapse", Opacity: 1}))))
		assert.False(t, c.Visible(underBody(elem("div").styled(Style{Display: "block", Visibility: "visible", Opacity: 0}))))
	})

	t.Run("hidden ancestor hides descendant", func(t *testing.T) {
		// display:none on an ancestor hides the whole subtree.
		leaf := elem("button")
		wrapper := elem("div", leaf).styled(Style{Display: "none", Opacity: 1})
		elem("body", wrapper)
		assert.False(t, c.Visible(leaf))
	})

	t.Run("detached element is invisible", func(t *testing.T) {
		// No body in the ancestor chain.
		orphan := elem("div", elem("button"))
		assert.False(t, c.Visible(orphan.children[0]))
	})

	t.Run("far off-screen is invisible, below-the-fold is not", func(t *testing.T) {
		assert.False(t, c.Visible(underBody(elem("div").at(0, -20500, 100, 20))))
		assert.False(t, c.Visible(underBody(elem("div").at(15000, 0, 100, 20))))
		// Reachable by scroll: well outside the viewport but inside the margin.
		assert.True(t, c.Visible(underBody(elem("div").at(0, 5000, 100, 20))))
	})

	t.Run("host errors degrade to false", func(t *testing.T) {
		bad := underBody(elem("div"))
		bad.boxErr = errHost
		assert.False(t, c.Visible(bad))

		bad = underBody(elem("div"))
		bad.styleErr = errHost
		assert.False(t, c.Visible(bad))
	})

	t.Run("plain visible element", func(t *testing.T) {
		assert.True(t, c.Visible(underBody(elem("div"))))
	})
}

func TestInViewport(t *testing.T) {
	c := NewClassifier(defaultViewport(), nil)

	cases := []struct {
		name string
		box  Rect
		want bool
	}{
		{"fully inside", Rect{X: 10, Y: 10, Width: 100, Height: 20}, true},
		{"straddling right edge within margin", Rect{X: 1350, Y: 10, Width: 100, Height: 20}, true},
		{"below the fold beyond margin", Rect{X: 10, Y: 1000, Width: 100, Height: 20}, false},
		{"just below fold within margin", Rect{X: 10, Y: 800, Width: 100, Height: 20}, true},
		{"sub-pixel size", Rect{X: 10, Y: 10, Width: 0.5, Height: 20}, false},
		{"absurd offset", Rect{X: 10, Y: 2000000, Width: 100, Height: 20}, false},
		{"above viewport beyond margin", Rect{X: 10, Y: -500, Width: 100, Height: 20}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := elem("div").at(tc.box.X, tc.box.Y, tc.box.Width, tc.box.Height)
			assert.Equal(t, tc.want, c.InViewport(e))
		})
	}

	t.Run("host error degrades to false", func(t *testing.T) {
		e := elem("div")
		e.boxErr = errHost
		assert.False(t, c.InViewport(e))
	})
}
