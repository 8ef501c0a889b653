package browser

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// Actor performs page interactions with human-like pacing. Every motion
// is animated through the real mouse so anti-automation checks observing
// pointer trajectories see plausible movement.
type Actor struct {
	page     *rod.Page
	minDelay time.Duration
	maxDelay time.Duration

	cursorX float64
	cursorY float64
}

// NewActor creates an actor over the page. minDelay/maxDelay bound the
// randomized pause inserted after each action.
func NewActor(page *rod.Page, minDelay, maxDelay time.Duration) *Actor {
	if maxDelay < minDelay {
		minDelay, maxDelay = maxDelay, minDelay
	}
	return &Actor{page: page, minDelay: minDelay, maxDelay: maxDelay, cursorX: 640, cursorY: 360}
}

// Click moves the cursor to the element and clicks it.
func (a *Actor) Click(selector string) error {
	el, err := a.page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	return a.ClickElement(el)
}

// ClickElement clicks an already-resolved element.
func (a *Actor) ClickElement(el *rod.Element) error {
	x, y, err := elementCenter(el)
	if err != nil {
		return err
	}
	a.glideTo(x, y)

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	a.pause()
	return nil
}

// Type focuses the element, clears it, and types text one character at a
// time with jittered keystroke delays.
func (a *Actor) Type(selector, text string) error {
	el, err := a.page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}

	x, y, err := elementCenter(el)
	if err != nil {
		return err
	}
	a.glideTo(x, y)

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("focus click failed: %w", err)
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select text failed: %w", err)
	}

	for _, char := range text {
		if err := a.page.Keyboard.Type(input.Key(char)); err != nil {
			return fmt.Errorf("keystroke failed: %w", err)
		}
		time.Sleep(time.Duration(30+rand.Intn(70)) * time.Millisecond)
	}
	a.pause()
	return nil
}

// Scroll scrolls the page by (dx, dy) in small steps.
func (a *Actor) Scroll(dx, dy float64) error {
	const steps = 10
	for i := 0; i < steps; i++ {
		if err := a.page.Mouse.Scroll(dx/steps, dy/steps, 1); err != nil {
			return fmt.Errorf("scroll failed: %w", err)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
	a.pause()
	return nil
}

// Hover moves the cursor over the element without clicking.
func (a *Actor) Hover(selector string) error {
	el, err := a.page.Element(selector)
	if err != nil {
		return fmt.Errorf("element not found: %s: %w", selector, err)
	}
	x, y, err := elementCenter(el)
	if err != nil {
		return err
	}
	a.glideTo(x, y)
	if err := el.Hover(); err != nil {
		return fmt.Errorf("hover failed: %w", err)
	}
	a.pause()
	return nil
}

// glideTo moves the real mouse along an eased path from the last known
// cursor position to (x, y).
func (a *Actor) glideTo(x, y float64) {
	const steps = 12
	for i := 0; i <= steps; i++ {
		t := easeInOutQuad(float64(i) / float64(steps))
		ix := a.cursorX + t*(x-a.cursorX)
		iy := a.cursorY + t*(y-a.cursorY)
		a.page.Mouse.MustMoveTo(ix, iy)
		time.Sleep(time.Duration(8+rand.Intn(12)) * time.Millisecond)
	}
	a.cursorX, a.cursorY = x, y
}

// pause sleeps for a random duration inside [minDelay, maxDelay].
func (a *Actor) pause() {
	span := a.maxDelay - a.minDelay
	d := a.minDelay
	if span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	time.Sleep(d)
}

// easeInOutQuad provides smooth acceleration/deceleration
func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - (-2*t+2)*(-2*t+2)/2
}

func elementCenter(el *rod.Element) (float64, float64, error) {
	box, err := el.Shape()
	if err != nil {
		return 0, 0, fmt.Errorf("element has no shape: %w", err)
	}
	if len(box.Quads) == 0 {
		return 0, 0, fmt.Errorf("element has no shape")
	}
	quad := box.Quads[0]
	x := (quad[0] + quad[2] + quad[4] + quad[6]) / 4
	y := (quad[1] + quad[3] + quad[5] + quad[7]) / 4
	return x, y, nil
}
