package ai

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

// ClaudeProvider implements Provider using Anthropic's Claude.
type ClaudeProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewClaudeProvider creates a Claude provider.
func NewClaudeProvider(opts Options) (*ClaudeProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key required")
	}

	client := anthropic.NewClient(option.WithAPIKey(opts.APIKey))

	model := opts.Model
	if model == "" {
		model = string(anthropic.ModelClaudeSonnet4_20250514)
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &ClaudeProvider{client: &client, model: model, maxTokens: maxTokens}, nil
}

func (p *ClaudeProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Claude API error: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from Claude")
}

// GenerateActions proposes the next browser steps toward the goal.
func (p *ClaudeProvider) GenerateActions(ctx context.Context, page PageContext, goal string) ([]Action, error) {
	userPrompt, err := buildActionsPrompt(page, goal)
	if err != nil {
		return nil, err
	}

	responseText, err := p.complete(ctx, actionsSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	actions, err := parseActionsJSON(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Claude response as JSON: %w\nResponse: %s", err, responseText)
	}
	return actions, nil
}

// GenerateCoverLetter writes a short cover letter for the posting.
func (p *ClaudeProvider) GenerateCoverLetter(ctx context.Context, cv models.CVData, job models.JobPosting) (string, error) {
	userPrompt, err := buildCoverLetterPrompt(cv, job)
	if err != nil {
		return "", err
	}
	return p.complete(ctx, coverLetterSystemPrompt, userPrompt)
}

// StructureCV turns raw extracted CV text into structured data.
func (p *ClaudeProvider) StructureCV(ctx context.Context, rawText string) (models.CVData, error) {
	responseText, err := p.complete(ctx, structureCVSystemPrompt, buildStructureCVPrompt(rawText))
	if err != nil {
		return models.CVData{}, err
	}

	cv, err := parseCVJSON(responseText)
	if err != nil {
		return models.CVData{}, fmt.Errorf("failed to parse Claude response as JSON: %w\nResponse: %s", err, responseText)
	}
	cv.RawText = rawText
	return cv, nil
}
