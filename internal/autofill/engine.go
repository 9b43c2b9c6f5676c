// Package autofill runs a fill: scan the page, ask the model for a mapping,
// then write every field, falling back to remembered values.
package autofill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/ai"
	"github.com/v0xg/resumefill/internal/dom"
	"github.com/v0xg/resumefill/internal/executor"
	"github.com/v0xg/resumefill/internal/logger"
	"github.com/v0xg/resumefill/internal/memory"
	"github.com/v0xg/resumefill/internal/scanner"
)

var (
	ErrBusy          = errors.New("a fill is already running, try again later")
	ErrNoResume      = errors.New("no résumé: parse and save a résumé first")
	ErrNoFields      = errors.New("no fillable fields found on the page")
	ErrFieldNotFound = errors.New("field not found, run fill again")
	ErrNotFilled     = errors.New("field not filled")
)

// memoryReasonPrefix marks results completed from memory.
const memoryReasonPrefix = "memory: "

// Options configures an Engine.
type Options struct {
	Provider ai.Provider
	Executor *executor.Executor
	Logger   *zap.Logger

	// OnTransition is called after every state change, outside the
	// engine's lock.
	OnTransition func(from, to State)
}

// Engine owns the scan session of one page and allows a single fill run
// at a time.
type Engine struct {
	provider     ai.Provider
	exec         *executor.Executor
	log          *zap.Logger
	onTransition func(from, to State)

	mu          sync.Mutex
	state       State
	running     bool
	session     *scanner.Session
	fieldCount  int
	filledCount int
}

// New creates an idle engine.
func New(opts Options) *Engine {
	log := logger.OrNop(opts.Logger)
	exec := opts.Executor
	if exec == nil {
		exec = executor.New(executor.Options{Logger: log})
	}
	return &Engine{
		provider:     opts.Provider,
		exec:         exec,
		log:          log,
		onTransition: opts.OnTransition,
	}
}

// Request is the input of a fill run.
type Request struct {
	Document dom.Document
	// Root limits the scan; nil picks the most likely form.
	Root   dom.Scope
	Resume any
	Memory map[string]memory.Entry
}

// Report is the outcome of a completed run.
type Report struct {
	FieldCount  int                   `json:"fieldCount"`
	FilledCount int                   `json:"filledCount"`
	Items       []executor.FillResult `json:"items"`
}

// Fill runs scan, prompt, model call, reconciliation and apply. A second
// call while one is running fails with ErrBusy and changes nothing. The
// engine is idle again when Fill returns.
func (e *Engine) Fill(ctx context.Context, req Request) (*Report, error) {
	if err := e.begin(req.Resume); err != nil {
		return nil, err
	}
	defer e.end()

	report, err := e.run(ctx, req)
	if err != nil {
		e.log.Warn("fill failed", zap.Error(err))
		e.transition(StateFailed)
		return nil, err
	}
	e.transition(StateDone)
	return report, nil
}

func (e *Engine) begin(resume any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrBusy
	}
	if !hasResume(resume) {
		return ErrNoResume
	}
	if e.provider == nil {
		return ai.ErrConfigIncomplete
	}
	e.running = true
	return nil
}

func (e *Engine) end() {
	e.transition(StateIdle)
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func (e *Engine) transition(to State) {
	e.mu.Lock()
	from := e.state
	e.state = to
	e.mu.Unlock()

	e.log.Debug("fill state", zap.Stringer("from", from), zap.Stringer("to", to))
	if e.onTransition != nil && from != to {
		e.onTransition(from, to)
	}
}

func (e *Engine) run(ctx context.Context, req Request) (*Report, error) {
	e.transition(StateScanning)
	if req.Document == nil {
		return nil, errors.New("no document to scan")
	}
	res, err := scanner.Scan(req.Document, req.Root)
	if err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}

	e.mu.Lock()
	e.session = scanner.NewSession(res)
	e.fieldCount = len(res.Fields)
	e.filledCount = 0
	e.mu.Unlock()

	if len(res.Fields) == 0 {
		return nil, ErrNoFields
	}
	e.log.Info("fields scanned",
		zap.String(logger.FieldURL, req.Document.URL()),
		zap.Int("count", len(res.Fields)))

	e.transition(StatePrompting)
	prompt, err := ai.BuildFillPrompt(ai.FillPayload{
		URL:    req.Document.URL(),
		Title:  req.Document.Title(),
		Fields: res.Fields,
		Resume: req.Resume,
	})
	if err != nil {
		return nil, err
	}

	e.transition(StateAwaitingModel)
	text, err := e.provider.Complete(ctx, prompt, ai.ModeFormFill)
	if err != nil {
		return nil, err
	}

	e.transition(StateReconciling)
	fills, err := ai.ParseFillMapping(text)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]executor.Instruction, len(fills))
	for _, f := range fills {
		if f.FieldID == "" {
			continue
		}
		byID[f.FieldID] = f
	}
	index := memory.BuildIndex(req.Memory)

	e.transition(StateApplying)
	report := &Report{FieldCount: len(res.Fields)}
	for i, field := range res.Fields {
		item := e.applyField(ctx, field, res.Handles[i], byID[field.FieldID], index)
		if item.Filled {
			report.FilledCount++
		}
		report.Items = append(report.Items, item)
	}

	e.mu.Lock()
	e.filledCount = report.FilledCount
	e.mu.Unlock()

	e.log.Info("fill finished",
		zap.Int("fields", report.FieldCount),
		zap.Int("filled", report.FilledCount))
	return report, nil
}

func (e *Engine) applyField(ctx context.Context, field scanner.Field, h *scanner.Handle, ins executor.Instruction, index *memory.Index) executor.FillResult {
	r := e.exec.Apply(ctx, h, ins.Value)
	value := ins.Value.String()
	reason := ins.Reason

	if !r.Filled {
		if mem, ok := index.Lookup(field.MemoryQuery()); ok {
			r2 := e.exec.Apply(ctx, h, executor.ParseValue(string(field.Kind), mem.Value))
			if r2.Filled {
				r = r2
				value = mem.Value
				reason = memoryReasonPrefix + firstNonEmpty(mem.Label, mem.Key)
				e.log.Debug("field filled from memory",
					zap.String("field_id", field.FieldID),
					zap.String("key", mem.Key))
			}
		}
	}

	return executor.FillResult{
		FieldID:    field.FieldID,
		FieldLabel: field.DisplayLabel(),
		Value:      value,
		Reason:     reason,
		Filled:     r.Filled,
		Message:    r.Message,
	}
}

// IsMemorySourced reports whether a result was completed from memory.
func IsMemorySourced(r executor.FillResult) bool {
	return strings.HasPrefix(r.Reason, memoryReasonPrefix)
}

// Refill writes a user supplied value into a field of the last scan. For
// checkbox groups raw may be a JSON array or a separated list.
func (e *Engine) Refill(ctx context.Context, fieldID, raw string) error {
	h, err := e.handle(fieldID)
	if err != nil {
		return err
	}
	r := e.exec.Apply(ctx, h, executor.ParseValue(string(h.Kind), raw))
	if !r.Filled {
		return fmt.Errorf("%w: %s", ErrNotFilled, r.Message)
	}
	return nil
}

// FieldValue reads the live value of a field of the last scan.
func (e *Engine) FieldValue(fieldID string) (executor.Value, error) {
	h, err := e.handle(fieldID)
	if err != nil {
		return executor.Value{}, err
	}
	return executor.ReadValue(h), nil
}

// Handle returns the live handle of a field of the last scan.
func (e *Engine) Handle(fieldID string) (*scanner.Handle, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Handle(fieldID)
}

func (e *Engine) handle(fieldID string) (*scanner.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil, ErrBusy
	}
	if fieldID == "" {
		return nil, fmt.Errorf("%w: empty field id", ErrFieldNotFound)
	}
	h, ok := e.session.Handle(fieldID)
	if !ok {
		return nil, ErrFieldNotFound
	}
	return h, nil
}

// Snapshot scans doc and returns the current value of every labelled,
// non-empty, non-file field as memory items. It does not replace the scan
// session used by Refill.
func (e *Engine) Snapshot(doc dom.Document) ([]memory.Item, error) {
	e.mu.Lock()
	busy := e.running
	e.mu.Unlock()
	if busy {
		return nil, ErrBusy
	}

	res, err := scanner.Scan(doc, nil)
	if err != nil {
		return nil, fmt.Errorf("scan page: %w", err)
	}

	var items []memory.Item
	for i, h := range res.Handles {
		if h.Kind == scanner.KindFile {
			continue
		}
		f := res.Fields[i]
		label := dom.NormalizeText(firstNonEmpty(f.Label, f.Name, f.Placeholder, f.ID))
		key := memory.NormalizeKey(label)
		if key == "" {
			continue
		}

		value, ok := snapshotValue(executor.ReadValue(h))
		if !ok {
			continue
		}
		items = append(items, memory.Item{Key: key, Label: label, Value: value, Kind: string(h.Kind)})
	}
	e.log.Info("page snapshot", zap.Int("fields", len(res.Fields)), zap.Int("items", len(items)))
	return items, nil
}

func snapshotValue(v executor.Value) (string, bool) {
	if !v.IsList {
		s := strings.TrimSpace(v.Text)
		return s, s != ""
	}
	var items []string
	for _, s := range v.List {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return "", false
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Status returns the current state and the counts of the last run.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{State: e.state, FieldCount: e.fieldCount, FilledCount: e.filledCount}
}

func hasResume(v any) bool {
	switch r := v.(type) {
	case nil:
		return false
	case map[string]any:
		return r != nil
	case []any:
		return r != nil
	case string, bool, float64, json.Number:
		return false
	default:
		return true
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
