// Package navigator turns model-proposed actions into page interactions,
// with selector fallbacks and retries for pages that shift underneath.
package navigator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/ai"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/browser"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/dom"
	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/timing"
)

// maxRounds bounds the plan/act loop for one goal.
const maxRounds = 8

// minConfidence is the score below which a proposed action triggers a
// re-plan against a fresh snapshot instead of executing. Zero means the
// model reported no score and the action runs.
const minConfidence = 0.4

// Navigator executes goals against the live page.
type Navigator struct {
	session  *browser.Session
	actor    *browser.Actor
	domSvc   *browser.DOMService
	provider ai.Provider
	logger   *slog.Logger

	maxHighlight int
	highlight    bool

	// last highlighted nodes, by index, for selector fallback.
	lastIndexed []*dom.Node
}

// New wires a navigator.
func New(session *browser.Session, actor *browser.Actor, domSvc *browser.DOMService,
	provider ai.Provider, maxHighlight int, highlight bool, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		session: session, actor: actor, domSvc: domSvc, provider: provider,
		maxHighlight: maxHighlight, highlight: highlight, logger: logger,
	}
}

// RunGoal plans and executes actions until the model reports the goal
// complete (an empty plan) or the round budget runs out.
func (n *Navigator) RunGoal(ctx context.Context, goal string) error {
	for round := 0; round < maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := n.PageContext()
		if err != nil {
			return err
		}

		actions, err := n.provider.GenerateActions(ctx, page, goal)
		if err != nil {
			return fmt.Errorf("action planning failed: %w", err)
		}
		if len(actions) == 0 {
			n.logger.Info("goal complete", "goal", goal, "rounds", round)
			return nil
		}

		hitCheckpoint, err := n.runBatch(ctx, actions)
		if err != nil {
			return err
		}
		if !hitCheckpoint {
			// The model produced a full plan with no page change; done.
			return nil
		}
		n.session.WaitSettled()
	}
	return fmt.Errorf("goal %q not reached within %d rounds", goal, maxRounds)
}

// PageContext snapshots the page into the compact form the model sees,
// remembering the highlighted nodes for index fallback.
func (n *Navigator) PageContext() (ai.PageContext, error) {
	tree, err := n.domSvc.Tree(n.highlight, n.maxHighlight)
	if err != nil {
		return ai.PageContext{}, err
	}

	url, err := n.session.CurrentURL()
	if err != nil {
		return ai.PageContext{}, err
	}
	title, err := n.session.Title()
	if err != nil {
		return ai.PageContext{}, err
	}

	highlighted := tree.FindHighlighted()
	n.lastIndexed = highlighted

	page := ai.PageContext{URL: url, Title: title}
	for _, node := range highlighted {
		page.Elements = append(page.Elements, ai.ElementSummary{
			Index:    *node.HighlightIndex,
			Tag:      node.Tag,
			Text:     summaryText(node),
			Selector: nodeSelector(node),
			InView:   node.IsInViewport,
		})
	}
	return page, nil
}

// runBatch executes actions until the first checkpoint. Individual
// action failures are retried with the index fallback before giving up.
func (n *Navigator) runBatch(ctx context.Context, actions []ai.Action) (hitCheckpoint bool, err error) {
	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if action.Confidence > 0 && action.Confidence < minConfidence {
			n.logger.Info("re-planning on low-confidence action",
				"type", action.Type, "selector", action.Selector, "confidence", action.Confidence)
			return true, nil
		}
		if err := n.execute(action); err != nil {
			return false, fmt.Errorf("action %s %s failed: %w", action.Type, action.Selector, err)
		}
		if action.Wait > 0 {
			time.Sleep(time.Duration(action.Wait) * time.Millisecond)
		}
		if action.Checkpoint {
			return true, nil
		}
	}
	return false, nil
}

// execute runs one action, retrying with backoff and falling back to the
// highlight-index selector when the model's selector no longer resolves.
func (n *Navigator) execute(action ai.Action) error {
	var lastErr error
	for attempt := 0; attempt < timing.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(timing.Backoff(attempt - 1))
		}

		selector := action.Selector
		if attempt > 0 {
			if fallback := n.fallbackSelector(action); fallback != "" {
				selector = fallback
			}
		}

		lastErr = n.dispatch(action, selector)
		if lastErr == nil {
			return nil
		}
		n.logger.Debug("action attempt failed",
			"type", action.Type, "selector", selector, "attempt", attempt+1, "error", lastErr)
	}
	return lastErr
}

func (n *Navigator) dispatch(action ai.Action, selector string) error {
	switch action.Type {
	case "click":
		return n.actor.Click(selector)
	case "type":
		return n.actor.Type(selector, action.Text)
	case "hover":
		return n.actor.Hover(selector)
	case "scroll":
		return n.actor.Scroll(float64(action.X), float64(action.Y))
	case "wait":
		time.Sleep(time.Duration(action.Wait) * time.Millisecond)
		return nil
	case "navigate":
		return n.session.Navigate(action.URL)
	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// fallbackSelector resolves the action's highlight index to the stamped
// data-agent-id selector from the last snapshot.
func (n *Navigator) fallbackSelector(action ai.Action) string {
	if action.HighlightIndex < 0 || action.HighlightIndex >= len(n.lastIndexed) {
		return ""
	}
	node := n.lastIndexed[action.HighlightIndex]
	if node == nil || *node.HighlightIndex != action.HighlightIndex {
		return ""
	}
	return nodeSelector(node)
}

func nodeSelector(node *dom.Node) string {
	if id := node.Attributes["data-agent-id"]; id != "" {
		return fmt.Sprintf(`[data-agent-id="%s"]`, id)
	}
	if id := node.Attributes["id"]; id != "" {
		return "#" + id
	}
	return node.Tag
}

// summaryText flattens the node's text content, truncated for prompting.
func summaryText(node *dom.Node) string {
	var parts []string
	var collect func(n *dom.Node)
	collect = func(n *dom.Node) {
		if n.Content != "" {
			parts = append(parts, n.Content)
		}
		for _, c := range n.Children {
			collect(c)
		}
	}
	collect(node)

	text := strings.Join(parts, " ")
	if len(text) > 80 {
		text = text[:80]
	}
	return strings.TrimSpace(text)
}
