package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Client implements clients.SummarizerClient using the Anthropic SDK.
type Client struct {
	api       anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient creates an Anthropic client for the given model.
func NewClient(apiKey, model string) *Client {
	return &Client{
		api:       anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 4096,
	}
}

// CreateSummary sends a single-turn message request and returns the text
// of the first content block. The caller bounds the call with its
// context deadline.
func (c *Client) CreateSummary(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("anthropic response contained no content blocks")
	}
	return resp.Content[0].Text, nil
}
