package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/logger"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIProvider creates a provider for cfg. The base URL may be given with
// or without the trailing /chat/completions.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if !cfg.Configured() {
		return nil, ErrConfigIncomplete
	}

	clientCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	clientCfg.BaseURL = normalizeBaseURL(cfg.BaseURL)
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.timeout()}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  strings.TrimSpace(cfg.Model),
		log:    logger.WithModel(cfg.Logger, "openai", cfg.Model),
	}, nil
}

func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	u = strings.TrimSuffix(u, "/chat/completions")
	return strings.TrimRight(u, "/")
}

// Complete sends prompt with the system instruction for mode.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	system, err := SystemPrompt(mode)
	if err != nil {
		return "", err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		classified := classifyOpenAIError(err)
		p.log.Warn("model request failed", zap.String("mode", string(mode)), zap.Error(err))
		return "", classified
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: missing choices[0].message.content", ErrMalformedResponse)
	}

	text := resp.Choices[0].Message.Content
	p.log.Debug("model response",
		zap.String("mode", string(mode)),
		zap.String("text", logger.TruncateForLog(text, 500)))
	return text, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := ""
		if reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return statusError(reqErr.HTTPStatusCode, msg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
