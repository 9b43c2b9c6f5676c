// Package ai sends résumé and form prompts to a language model and recovers
// structured answers from its text completions.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mode selects the system instruction sent with a prompt.
type Mode string

const (
	ModeResumeParse Mode = "resume_parse"
	ModeFormFill    Mode = "form_fill"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 120 * time.Second

const temperature = 0.2

// Config describes one model endpoint.
type Config struct {
	// Provider is "openai" (any OpenAI-compatible endpoint, the default) or
	// "anthropic".
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Configured reports whether base URL, key and model are all set.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.Model) != ""
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Provider sends one prompt to a model and returns the raw completion text.
type Provider interface {
	Complete(ctx context.Context, prompt string, mode Mode) (string, error)
}

// NewProvider creates the provider named by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "gpt", "deepseek":
		return NewOpenAIProvider(cfg)
	case "claude", "anthropic":
		return NewClaudeProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, anthropic)", cfg.Provider)
	}
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, prompt string, mode Mode) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, prompt string, mode Mode) (string, error) {
	return f(ctx, prompt, mode)
}

// Classified model errors. Provider implementations wrap them so callers can
// test with errors.Is.
var (
	ErrConfigIncomplete  = errors.New("model config incomplete: check base URL, API key and model id")
	ErrUnsupportedMode   = errors.New("unsupported model mode")
	ErrTimeout           = errors.New("model request timed out")
	ErrNetwork           = errors.New("model request failed")
	ErrAuth              = errors.New("invalid API key")
	ErrForbidden         = errors.New("API access denied: check key, permissions or balance")
	ErrRateLimited       = errors.New("too many requests, retry later")
	ErrServerUnavailable = errors.New("model service temporarily unavailable")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrNoJSON            = errors.New("no JSON found in model response")
	ErrBadMapping        = errors.New("model response is not a valid fill mapping")
)

// statusError maps an HTTP status to a classified error. msg is the
// server's error message, kept for statuses without a class of their own.
func statusError(status int, msg string) error {
	switch {
	case status == 401:
		return ErrAuth
	case status == 403:
		return ErrForbidden
	case status == 429:
		return ErrRateLimited
	case status >= 500:
		return fmt.Errorf("%w (%d)", ErrServerUnavailable, status)
	case msg != "":
		return fmt.Errorf("API error (%d): %s", status, msg)
	default:
		return fmt.Errorf("API request failed (%d)", status)
	}
}
