package dom

import (
	"log/slog"
	"strings"
)

// interactiveTags are inherently clickable regardless of styling.
var interactiveTags = map[string]bool{
	"a":        true,
	"button":   true,
	"input":    true,
	"select":   true,
	"textarea": true,
}

// clickAttrs are attribute names that mark a bound click handler, plain
// DOM and framework-style bindings alike.
var clickAttrs = []string{
	"onclick",
	"ng-click",
	"@click",
	"v-on:click",
}

// interactiveRoles are ARIA roles that make an element actionable.
var interactiveRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"tab":              true,
	"checkbox":         true,
	"radio":            true,
	"switch":           true,
	"option":           true,
}

// classHints are substrings that suggest clickability when they appear in
// a class token. Matched case-insensitively.
var classHints = []string{"button", "btn", "clickable", "link"}

// actionableInputTypes are input types that act on their own, without a
// surrounding form submit.
var actionableInputTypes = map[string]bool{
	"submit":   true,
	"button":   true,
	"radio":    true,
	"checkbox": true,
	"reset":    true,
	"file":     true,
}

const (
	// offscreenMargin is the distance past which an element is treated
	// as not real. Generous on purpose: elements far below the fold are
	// still reachable by scrolling and must stay visible.
	offscreenMargin = 10000.0

	// viewportMargin lets elements straddling the viewport edge count
	// as in-view.
	viewportMargin = 200.0

	// maxSanePosition guards against stray huge offsets from broken
	// layouts; anything positioned beyond it is not in the viewport.
	maxSanePosition = 100000.0
)

// Classifier answers the three per-element questions a build needs:
// clickable, visible, in-viewport. Every predicate degrades to false on a
// host error so a single bad element can never abort a tree walk.
type Classifier struct {
	viewport Viewport
	logger   *slog.Logger
}

// NewClassifier creates a classifier for one build. The viewport is
// captured by the caller together with the page snapshot.
func NewClassifier(viewport Viewport, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{viewport: viewport, logger: logger}
}

// Clickable reports whether the element looks actionable. The checks are
// independent sufficient conditions, not a priority chain.
func (c *Classifier) Clickable(el Element) bool {
	tag := el.Tag()
	if interactiveTags[tag] {
		return true
	}

	attrs := el.Attributes()
	for _, name := range clickAttrs {
		if _, ok := attrs[name]; ok {
			return true
		}
	}

	if role, ok := attrs["role"]; ok && interactiveRoles[strings.ToLower(role)] {
		return true
	}

	style, err := el.ComputedStyle()
	if err != nil {
		c.logger.Debug("dom: computed style failed during clickable check",
			"tag", tag, "error", err)
		return false
	}
	if style.Cursor == "pointer" {
		return true
	}

	if class, ok := attrs["class"]; ok {
		lower := strings.ToLower(class)
		for _, token := range strings.Fields(lower) {
			for _, hint := range classHints {
				if strings.Contains(token, hint) {
					return true
				}
			}
		}
	}

	if tag == "input" {
		if typ, ok := attrs["type"]; ok && actionableInputTypes[strings.ToLower(typ)] {
			return true
		}
	}

	return false
}

// Visible reports whether the element currently renders. An element is
// invisible when its box has no area, its own style hides it, it is not
// attached under the document body, any strict ancestor below body hides
// it, or its box sits entirely beyond the off-screen margin.
func (c *Classifier) Visible(el Element) bool {
	box, err := el.Box()
	if err != nil {
		c.logger.Debug("dom: bounding box failed during visibility check",
			"tag", el.Tag(), "error", err)
		return false
	}
	if box.Empty() {
		return false
	}

	style, err := el.ComputedStyle()
	if err != nil {
		c.logger.Debug("dom: computed style failed during visibility check",
			"tag", el.Tag(), "error", err)
		return false
	}
	if style.Hidden() {
		return false
	}

	if !c.ancestorsVisible(el) {
		return false
	}

	// Entirely beyond the generous margin in any direction.
	if box.X+box.Width < -offscreenMargin || box.Y+box.Height < -offscreenMargin {
		return false
	}
	if box.X > c.viewport.Width+offscreenMargin || box.Y > c.viewport.Height+offscreenMargin {
		return false
	}

	return true
}

// ancestorsVisible walks strict ancestors up to (not including) body.
// It fails both when a hidden ancestor is found and when the walk never
// reaches body, which means the element is detached.
func (c *Classifier) ancestorsVisible(el Element) bool {
	if el.Tag() == "body" {
		return true
	}
	for parent := el.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Tag() == "body" {
			return true
		}
		style, err := parent.ComputedStyle()
		if err != nil {
			c.logger.Debug("dom: ancestor style failed during visibility check",
				"tag", parent.Tag(), "error", err)
			return false
		}
		if style.Hidden() {
			return false
		}
	}
	return false
}

// InViewport reports whether the element's box overlaps the visible
// window, with a margin so edge-straddling elements count. Only
// meaningful for elements already found visible.
func (c *Classifier) InViewport(el Element) bool {
	box, err := el.Box()
	if err != nil {
		c.logger.Debug("dom: bounding box failed during viewport check",
			"tag", el.Tag(), "error", err)
		return false
	}

	hasSize := box.Width >= 1 && box.Height >= 1
	sanePosition := box.X > -maxSanePosition && box.X < maxSanePosition &&
		box.Y > -maxSanePosition && box.Y < maxSanePosition
	overlapsX := box.X < c.viewport.Width+viewportMargin && box.X+box.Width > -viewportMargin
	overlapsY := box.Y < c.viewport.Height+viewportMargin && box.Y+box.Height > -viewportMargin

	return hasSize && sanePosition && overlapsX && overlapsY
}
