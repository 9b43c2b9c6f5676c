// Package resume turns résumé text into structured JSON through a model and
// keeps both in the store.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/ai"
	"github.com/v0xg/resumefill/internal/logger"
	"github.com/v0xg/resumefill/internal/store"
)

// DefaultMaxChars is how much résumé text is sent to the model.
const DefaultMaxChars = 60000

var (
	ErrEmptyText = errors.New("résumé text is empty")
	ErrNoText    = errors.New("no extractable text: scanned PDFs need OCR, which is not supported")
	ErrNoResume  = errors.New("no parsed résumé stored")
)

// Resume is the stored résumé.
type Resume struct {
	RawText    string
	Structured any
	UpdatedAt  time.Time
}

// Service parses and stores résumés.
type Service struct {
	kv       store.KV
	log      *zap.Logger
	maxChars int
	now      func() time.Time
}

func NewService(kv store.KV, maxChars int, log *zap.Logger) *Service {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Service{kv: kv, log: logger.OrNop(log), maxChars: maxChars, now: time.Now}
}

// Parse sends text to the model in résumé mode and stores the result
// together with the raw text. Text longer than the limit is truncated.
func (s *Service) Parse(ctx context.Context, p ai.Provider, text string) (*Resume, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	prompt := ai.BuildResumeParsePrompt(s.limit(text))
	reply, err := p.Complete(ctx, prompt, ai.ModeResumeParse)
	if err != nil {
		return nil, fmt.Errorf("parse résumé: %w", err)
	}
	structured, err := ai.ExtractJSON(reply)
	if err != nil {
		s.log.Warn("unparseable résumé reply", zap.String("reply", logger.TruncateForLog(reply, 300)))
		return nil, fmt.Errorf("parse résumé: %w", err)
	}

	r := &Resume{RawText: text, Structured: structured, UpdatedAt: s.now()}
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info("résumé parsed", zap.Int("rows", len(Flatten(structured))))
	return r, nil
}

func (s *Service) limit(text string) string {
	n := utf8.RuneCountInString(text)
	if n <= s.maxChars {
		return text
	}
	s.log.Warn("résumé text truncated",
		zap.Int("chars", n),
		zap.Int("limit", s.maxChars))
	return string([]rune(text)[:s.maxChars])
}

// Load returns the stored résumé. A missing structured résumé is
// ErrNoResume.
func (s *Service) Load(ctx context.Context) (*Resume, error) {
	r := &Resume{}
	if _, err := s.kv.Get(ctx, store.KeyResumeRaw, &r.RawText); err != nil {
		return nil, err
	}
	ok, err := s.kv.Get(ctx, store.KeyResumeStructured, &r.Structured)
	if err != nil {
		return nil, err
	}
	if !ok || r.Structured == nil {
		return nil, ErrNoResume
	}
	if _, err := s.kv.Get(ctx, store.KeyResumeUpdatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

// Set replaces one value of the stored résumé, addressed by JSON pointer.
func (s *Service) Set(ctx context.Context, pointer string, value any) (*Resume, error) {
	r, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := SetByPointer(r.Structured, pointer, value); err != nil {
		return nil, err
	}
	r.UpdatedAt = s.now()
	if err := s.save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) save(ctx context.Context, r *Resume) error {
	if err := s.kv.Set(ctx, store.KeyResumeRaw, r.RawText); err != nil {
		return fmt.Errorf("save résumé text: %w", err)
	}
	if err := s.kv.Set(ctx, store.KeyResumeStructured, r.Structured); err != nil {
		return fmt.Errorf("save résumé: %w", err)
	}
	if err := s.kv.Set(ctx, store.KeyResumeUpdatedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("save résumé timestamp: %w", err)
	}
	return nil
}
