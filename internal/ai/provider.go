// Package ai generates browser actions, cover letters, and structured CV
// data from LLM providers.
package ai

import (
	"context"
	"fmt"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

// Action is one browser step proposed by the model. Selector targets the
// element; HighlightIndex, when >= 0, refers to the numbered overlay from
// the last page snapshot and serves as a fallback when the selector no
// longer resolves.
type Action struct {
	Type           string `json:"action"` // click, type, scroll, hover, wait, navigate
	Selector       string `json:"selector,omitempty"`
	HighlightIndex int    `json:"highlightIndex,omitempty"`
	Text           string `json:"text,omitempty"`
	X              int    `json:"x,omitempty"`
	Y              int    `json:"y,omitempty"`
	URL            string `json:"url,omitempty"`
	Wait           int    `json:"wait,omitempty"` // ms after the action
	Checkpoint     bool   `json:"checkpoint,omitempty"`

	// Confidence is the model's own estimate, 0.0 to 1.0, that the action
	// targets the right element. Executors re-plan below their threshold.
	Confidence float64 `json:"confidence,omitempty"`
}

// ElementSummary is the compact element description sent to the model,
// derived from the highlighted snapshot tree.
type ElementSummary struct {
	Index    int    `json:"index"`
	Tag      string `json:"tag"`
	Text     string `json:"text,omitempty"`
	Selector string `json:"selector"`
	InView   bool   `json:"inViewport"`
}

// PageContext is what the model sees of the current page.
type PageContext struct {
	URL      string           `json:"url"`
	Title    string           `json:"title"`
	Elements []ElementSummary `json:"elements"`
}

// Provider is implemented by each LLM backend.
type Provider interface {
	// GenerateActions proposes the next browser steps toward the goal.
	GenerateActions(ctx context.Context, page PageContext, goal string) ([]Action, error)
	// GenerateCoverLetter writes a short cover letter for the posting.
	GenerateCoverLetter(ctx context.Context, cv models.CVData, job models.JobPosting) (string, error)
	// StructureCV turns raw extracted CV text into structured data.
	StructureCV(ctx context.Context, rawText string) (models.CVData, error)
}

// Options configures a provider.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// NewProvider creates a provider by name.
func NewProvider(name string, opts Options) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(opts)
	case "openai", "gpt":
		return NewOpenAIProvider(opts)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}
