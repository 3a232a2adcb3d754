// Package engine defines the recommendation engine contract and its
// Anthropic-backed implementation. The engine is a text-in/text-out
// collaborator: it receives the portfolio and opportunity sections in the
// exchange format and must reply with a single CSV block.
package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	apperrors "nuvolari/internal/errors"
)

// Engine generates recommendations for a portfolio constrained to a risk
// range. The reply is raw text; parsing it is the caller's concern.
type Engine interface {
	Generate(ctx context.Context, minRisk, maxRisk float64, portfolio, opportunities string) (string, error)
}

const systemPromptTemplate = `You are a financial analysis assistant that helps users find investment opportunities based on risk profiles.
Risk scores range from 1 (lowest risk) to 5 (highest risk). Only recommend opportunities whose risk score lies between %.2f and %.2f.

Reply with a single CSV block and nothing else. The first line must be the header:
TokenIn,TokenInAmount,TokenInDecimals,TokenOut,ApiCall,InsightShort,InsightDetailed,ProtocolSlug,InsightType

Each following line is one recommendation. TokenIn is an address the user holds; TokenOut is a pool receipt token address for InsightType YIELD_POOL, or a token address for InsightType TOKEN_OPPORTUNITY. Quote any field containing a comma.`

// AnthropicEngine calls the Anthropic Messages API to generate
// recommendations.
type AnthropicEngine struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicEngine creates an engine backed by the Anthropic API.
func NewAnthropicEngine(apiKey, model string) *AnthropicEngine {
	return &AnthropicEngine{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: 4096,
	}
}

// Generate sends the portfolio and opportunity sections to the model and
// returns the concatenated text of its reply.
func (e *AnthropicEngine) Generate(ctx context.Context, minRisk, maxRisk float64, portfolio, opportunities string) (string, error) {
	userMessage := fmt.Sprintf("Here is the user's portfolio:\n\n%s\n\nHere are the available opportunities:\n\n%s", portfolio, opportunities)

	resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: fmt.Sprintf(systemPromptTemplate, minRisk, maxRisk)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrUpstreamUnavailable, fmt.Errorf("recommendation engine call: %w", err))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
