// Package executor writes values into scanned form fields.
package executor

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/v0xg/resumefill/internal/dom"
	"github.com/v0xg/resumefill/internal/match"
	"github.com/v0xg/resumefill/internal/scanner"
)

// DefaultSettleDelay is how long a toggled checkbox or radio is given to
// settle before its state is verified.
const DefaultSettleDelay = 30 * time.Millisecond

// Options configures an Executor.
type Options struct {
	SettleDelay time.Duration
	Logger      *zap.Logger
}

// Executor applies values to handles.
type Executor struct {
	settle time.Duration
	log    *zap.Logger
}

// New creates an Executor. A zero SettleDelay uses DefaultSettleDelay; a
// negative one disables waiting.
func New(opts Options) *Executor {
	settle := opts.SettleDelay
	if settle == 0 {
		settle = DefaultSettleDelay
	}
	if settle < 0 {
		settle = 0
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{settle: settle, log: log}
}

// Apply writes v into the field behind h. It never returns an error: a
// field that could not be written reports Filled=false with a message.
func (e *Executor) Apply(ctx context.Context, h *scanner.Handle, v Value) Result {
	if h == nil {
		return notFilled("field does not exist")
	}

	var res Result
	switch h.Kind {
	case scanner.KindFile:
		res = notFilled("file upload fields cannot be filled automatically")
	case scanner.KindCheckboxGroup:
		res = e.applyCheckboxes(ctx, h, v)
	case scanner.KindRadioGroup:
		res = e.applyRadio(ctx, h, v)
	case scanner.KindSelect:
		res = e.applySelect(h.Element, v)
	case scanner.KindContentEditable:
		res = e.applyContentEditable(h.Element, v)
	default:
		res = e.applyValue(h.Element, v)
	}

	e.log.Debug("field applied",
		zap.String("field_id", h.FieldID),
		zap.String("kind", string(h.Kind)),
		zap.Bool("filled", res.Filled),
		zap.String("message", res.Message))
	return res
}

func (e *Executor) applyCheckboxes(ctx context.Context, h *scanner.Handle, v Value) Result {
	desired := v.Strings()
	if len(desired) == 0 {
		return notFilled("no options to check")
	}

	checked := false
	for _, opt := range h.Options {
		label := strings.TrimSpace(opt.Label)
		wanted := false
		for _, d := range desired {
			if match.Fuzzy(label, d) {
				wanted = true
				break
			}
		}
		if !wanted {
			continue
		}
		if e.setChecked(ctx, opt.Element, true) {
			checked = true
		}
	}
	if !checked {
		return notFilled("no matching checkbox option")
	}
	return filled()
}

func (e *Executor) applyRadio(ctx context.Context, h *scanner.Handle, v Value) Result {
	desired := strings.TrimSpace(v.String())
	if desired == "" {
		return notFilled("no option chosen")
	}

	labels := make([]string, len(h.Options))
	for i, opt := range h.Options {
		labels[i] = opt.Label
	}
	best := match.PickBest(labels, desired)
	if best < 0 {
		return notFilled("no matching radio option")
	}
	if !e.setChecked(ctx, h.Options[best].Element, true) {
		return notFilled("clicking the radio option failed")
	}
	return filled()
}

func (e *Executor) applySelect(el dom.Element, v Value) Result {
	desired := strings.TrimSpace(v.String())
	if desired == "" {
		return notFilled("no option chosen")
	}
	_ = el.ScrollIntoView()

	best := -1
	for i, opt := range el.Options() {
		text := strings.TrimSpace(opt.Text)
		if text == "" {
			continue
		}
		if text == desired {
			best = i
			break
		}
		if best < 0 && match.Fuzzy(text, desired) {
			best = i
		}
	}
	if best < 0 {
		return notFilled("no matching select option")
	}

	if err := el.Select(best); err != nil {
		e.log.Warn("select option failed", zap.Error(err))
		return notFilled("selecting the option failed")
	}
	_ = el.Dispatch("change")
	_ = el.Dispatch("input")
	return filled()
}

func (e *Executor) applyContentEditable(el dom.Element, v Value) Result {
	desired := v.String()
	if desired == "" {
		return notFilled("no value to fill")
	}
	_ = el.ScrollIntoView()
	_ = el.Focus()
	if err := el.SetText(desired); err != nil {
		e.log.Warn("set text failed", zap.Error(err))
		return notFilled("write failed")
	}
	_ = el.Dispatch("input")
	_ = el.Dispatch("change")
	return filled()
}

func (e *Executor) applyValue(el dom.Element, v Value) Result {
	desired := v.String()
	if desired == "" {
		return notFilled("no value to fill")
	}
	_ = el.ScrollIntoView()
	_ = el.Focus()
	if err := el.SetValue(desired); err != nil {
		e.log.Warn("set value failed", zap.Error(err))
		return notFilled("write failed")
	}
	_ = el.Dispatch("input")
	_ = el.Dispatch("change")
	_ = el.Blur()
	return filled()
}

// setChecked clicks el when its state differs from checked, notifies
// listeners, waits for the page to settle and verifies the result.
func (e *Executor) setChecked(ctx context.Context, el dom.Element, checked bool) bool {
	if el == nil {
		return false
	}
	_ = el.ScrollIntoView()
	_ = el.Focus()

	if el.Checked() != checked {
		if err := el.Click(); err != nil {
			e.log.Warn("click failed", zap.Error(err))
			return false
		}
	}
	_ = el.Dispatch("change")
	_ = el.Dispatch("input")

	if e.settle > 0 {
		t := time.NewTimer(e.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
	return el.Checked() == checked
}

// ReadValue returns the current value of the field behind h: the checked
// labels of a checkbox group, the checked label of a radio group, the
// selected option text of a select and the trimmed text or value otherwise.
func ReadValue(h *scanner.Handle) Value {
	if h == nil {
		return Text("")
	}
	switch h.Kind {
	case scanner.KindCheckboxGroup:
		selected := []string{}
		for _, opt := range h.Options {
			if opt.Element.Checked() {
				if label := firstNonEmpty(opt.Label, opt.Value); label != "" {
					selected = append(selected, label)
				}
			}
		}
		return List(selected...)
	case scanner.KindRadioGroup:
		for _, opt := range h.Options {
			if opt.Element.Checked() {
				return Text(firstNonEmpty(opt.Label, opt.Value))
			}
		}
		return Text("")
	case scanner.KindSelect:
		opts := h.Element.Options()
		i := h.Element.SelectedIndex()
		if i < 0 || i >= len(opts) {
			return Text("")
		}
		return Text(strings.TrimSpace(opts[i].Text))
	case scanner.KindContentEditable:
		return Text(strings.TrimSpace(h.Element.Text()))
	default:
		return Text(strings.TrimSpace(h.Element.Value()))
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
