package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ZouhairMudakka/Autonomous-Job-Seeker/internal/models"
)

// OpenAIProvider implements Provider using OpenAI.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(opts Options) (*OpenAIProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai api key required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-4o"
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	return &OpenAIProvider{
		client:    openai.NewClient(opts.APIKey),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: user,
			},
		},
		MaxTokens: p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateActions proposes the next browser steps toward the goal.
func (p *OpenAIProvider) GenerateActions(ctx context.Context, page PageContext, goal string) ([]Action, error) {
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
		return nil, fmt.Errorf("failed to parse OpenAI response as JSON: %w\nResponse: %s", err, responseText)
	}
	return actions, nil
}

// GenerateCoverLetter writes a short cover letter for the posting.
func (p *OpenAIProvider) GenerateCoverLetter(ctx context.Context, cv models.CVData, job models.JobPosting) (string, error) {
	userPrompt, err := buildCoverLetterPrompt(cv, job)
	if err != nil {
		return "", err
	}
	return p.complete(ctx, coverLetterSystemPrompt, userPrompt)
}

// StructureCV turns raw extracted CV text into structured data.
func (p *OpenAIProvider) StructureCV(ctx context.Context, rawText string) (models.CVData, error) {
	responseText, err := p.complete(ctx, structureCVSystemPrompt, buildStructureCVPrompt(rawText))
	if err != nil {
		return models.CVData{}, err
	}

	cv, err := parseCVJSON(responseText)
	if err != nil {
		return models.CVData{}, fmt.Errorf("failed to parse OpenAI response as JSON: %w\nResponse: %s", err, responseText)
	}
	cv.RawText = rawText
	return cv, nil
}
