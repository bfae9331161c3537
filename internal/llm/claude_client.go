// ABOUTME: Anthropic Claude client for relationship classification
// ABOUTME: Single-turn Messages API calls with retry on transient errors
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/harper/lifeline/internal/models"
	"github.com/harper/lifeline/internal/util"
)

// DefaultClaudeModel is used when no model is configured
const DefaultClaudeModel = "claude-3-5-haiku-latest"

const claudeMaxTokens = 1024

// ClaudeConfig holds configuration for the Claude client
type ClaudeConfig struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// ClaudeClient implements Completer against the Anthropic Messages API
type ClaudeClient struct {
	client anthropic.Client
	model  string
	policy util.RetryPolicy
}

// NewClaudeClient creates a Claude client
func NewClaudeClient(config *ClaudeConfig) (*ClaudeClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is required", models.ErrConfiguration)
	}
	model := config.Model
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:  model,
		policy: util.RetryPolicy{
			MaxRetries:     config.MaxRetries,
			BaseDelay:      config.RetryDelay,
			AttemptTimeout: config.Timeout,
		},
	}, nil
}

// Name identifies the client in classifier output
func (c *ClaudeClient) Name() string {
	return "anthropic:" + c.model
}

// Complete runs a single system+user message and returns the text reply
func (c *ClaudeClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	var content string
	err := util.Retry(ctx, c.policy, func(ctx context.Context) error {
		resp, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if isClientError(err) {
				return util.Permanent(err)
			}
			return err
		}

		var text strings.Builder
		for _, block := range resp.Content {
			if block.Type == "text" {
				text.WriteString(block.Text)
			}
		}
		content = text.String()
		return nil
	})
	if err != nil {
		return "", models.ProviderFailure("anthropic completion", err)
	}
	return content, nil
}

// isClientError reports request errors that a retry cannot fix
func isClientError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "400 Bad Request") ||
		strings.Contains(errStr, "401 Unauthorized") ||
		strings.Contains(errStr, "403 Forbidden") ||
		strings.Contains(errStr, "404 Not Found") ||
		strings.Contains(errStr, "invalid_request_error") ||
		strings.Contains(errStr, "authentication_error")
}
