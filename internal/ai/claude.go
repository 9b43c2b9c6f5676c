package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/logger"
)

const claudeMaxTokens = 4096

// ClaudeProvider talks to Anthropic's messages API.
type ClaudeProvider struct {
	client *anthropic.Client
	model  string
	log    *zap.Logger
}

// NewClaudeProvider creates a provider for cfg. An empty base URL uses the
// SDK default endpoint.
func NewClaudeProvider(cfg Config) (*ClaudeProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrConfigIncomplete
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithRequestTimeout(cfg.timeout()),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := anthropic.NewClient(opts...)

	return &ClaudeProvider{
		client: &client,
		model:  strings.TrimSpace(cfg.Model),
		log:    logger.WithModel(cfg.Logger, "anthropic", cfg.Model),
	}, nil
}

// Complete sends prompt with the system instruction for mode.
func (p *ClaudeProvider) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	system, err := SystemPrompt(mode)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   claudeMaxTokens,
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		p.log.Warn("model request failed", zap.String("mode", string(mode)), zap.Error(err))
		return "", classifyClaudeError(err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return "", fmt.Errorf("%w: no text content", ErrMalformedResponse)
	}

	p.log.Debug("model response",
		zap.String("mode", string(mode)),
		zap.String("text", logger.TruncateForLog(text, 500)))
	return text, nil
}

func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return statusError(apiErr.StatusCode, apiErr.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
