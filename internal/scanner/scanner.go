// Package scanner discovers the fillable controls of a page, classifies them
// and derives a label for each.
package scanner

import (
	"fmt"
	"strings"

	"github.com/v0xg/resumefill/internal/dom"
)

const (
	maxSelectOptions = 60
	maxGroupOptions  = 80

	// minFormControls is how many controls a <form> needs before it is
	// preferred over the whole document.
	minFormControls = 2
)

// skippedInputTypes are never reported.
var skippedInputTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
	"range":  true,
	"color":  true,
}

type choiceGroup struct {
	name     string
	label    string
	elements []dom.Element
}

// groupSet keeps groups in first-seen order.
type groupSet struct {
	order  []string
	groups map[string]*choiceGroup
}

func (s *groupSet) add(doc dom.Document, key, name string, el dom.Element) {
	if s.groups == nil {
		s.groups = make(map[string]*choiceGroup)
	}
	g, ok := s.groups[key]
	if !ok {
		g = &choiceGroup{name: name, label: GroupLabelFor(doc, el)}
		s.groups[key] = g
		s.order = append(s.order, key)
	}
	g.elements = append(g.elements, el)
}

type builder struct {
	doc    dom.Document
	seq    int
	result Result
}

func (b *builder) nextID() string {
	b.seq++
	return fmt.Sprintf("f_%d", b.seq)
}

func (b *builder) emit(f Field, h *Handle) {
	f.FieldID = b.nextID()
	h.FieldID = f.FieldID
	h.Kind = f.Kind
	b.result.Fields = append(b.result.Fields, f)
	b.result.Handles = append(b.result.Handles, h)
}

// Scan discovers the fields under root. A nil root selects the most likely
// form of doc, see PickRoot.
func Scan(doc dom.Document, root dom.Scope) (*Result, error) {
	if root == nil {
		var err error
		if root, err = PickRoot(doc); err != nil {
			return nil, err
		}
	}

	controls, err := collectControls(root)
	if err != nil {
		return nil, err
	}

	b := &builder{doc: doc}
	var radios, checkboxes groupSet

	for _, el := range controls {
		if !fillable(el) {
			continue
		}

		switch tag := el.Tag(); {
		case tag == "select":
			f := singularField(doc, el, KindSelect)
			f.Placeholder = ""
			f.Options = selectOptionTexts(el)
			b.emit(f, &Handle{Element: el})

		case tag == "textarea":
			b.emit(singularField(doc, el, KindTextarea), &Handle{Element: el})

		case isContentEditable(el):
			b.emit(singularField(doc, el, KindContentEditable), &Handle{Element: el})

		case tag == "input":
			typ := strings.ToLower(dom.AttrOf(el, "type"))
			if typ == "" {
				typ = "text"
			}
			switch {
			case skippedInputTypes[typ]:
			case typ == "file":
				b.emit(singularField(doc, el, KindFile), &Handle{Element: el})
			case typ == "radio" || typ == "checkbox":
				name := dom.AttrOf(el, "name")
				if name == "" {
					name = dom.AttrOf(el, "id")
				}
				key := typ + ":" + name
				if name == "" {
					key = typ + ":(no-name)"
				}
				if typ == "radio" {
					radios.add(doc, key, name, el)
				} else {
					checkboxes.add(doc, key, name, el)
				}
			default:
				f := singularField(doc, el, KindText)
				f.InputType = typ
				f.Autocomplete = dom.AttrOf(el, "autocomplete")
				b.emit(f, &Handle{Element: el})
			}
		}
	}

	b.emitGroups(&radios, KindRadioGroup)
	b.emitGroups(&checkboxes, KindCheckboxGroup)

	return &b.result, nil
}

func (b *builder) emitGroups(set *groupSet, kind Kind) {
	for _, key := range set.order {
		g := set.groups[key]
		f := Field{Kind: kind, Label: g.label, Name: g.name}
		h := &Handle{}
		for _, el := range g.elements {
			label := OptionLabel(b.doc, el)
			value := el.Value()
			if (label != "" || value != "") && len(f.Options) < maxGroupOptions {
				f.Options = append(f.Options, firstNonEmpty(label, value))
			}
			h.Options = append(h.Options, ChoiceOption{
				Element: el,
				Label:   firstNonEmpty(label, value),
				Value:   value,
			})
		}
		b.emit(f, h)
	}
}

// PickRoot returns the visible <form> holding the most controls, or doc
// itself when no form holds at least two.
func PickRoot(doc dom.Document) (dom.Scope, error) {
	forms, err := doc.QueryAll("form")
	if err != nil {
		return nil, fmt.Errorf("query forms: %w", err)
	}

	var best dom.Element
	bestCount := -1
	for _, form := range forms {
		if !form.Visible() {
			continue
		}
		controls, err := collectControls(form)
		if err != nil {
			return nil, err
		}
		if len(controls) > bestCount {
			best, bestCount = form, len(controls)
		}
	}
	if best != nil && bestCount >= minFormControls {
		return best, nil
	}
	return doc, nil
}

func collectControls(root dom.Scope) ([]dom.Element, error) {
	all, err := root.QueryAll(dom.ControlSelector)
	if err != nil {
		return nil, fmt.Errorf("query controls: %w", err)
	}
	visible := all[:0]
	for _, el := range all {
		if el.Visible() {
			visible = append(visible, el)
		}
	}
	return visible, nil
}

func fillable(el dom.Element) bool {
	if el.Disabled() {
		return false
	}
	return dom.AttrOf(el, "aria-disabled") != "true"
}

func isContentEditable(el dom.Element) bool {
	v, ok := el.Attr("contenteditable")
	return ok && (v == "true" || v == "")
}

func singularField(doc dom.Document, el dom.Element, kind Kind) Field {
	return Field{
		Kind:        kind,
		Label:       LabelFor(doc, el),
		Name:        dom.AttrOf(el, "name"),
		ID:          dom.AttrOf(el, "id"),
		Placeholder: dom.AttrOf(el, "placeholder"),
	}
}

func selectOptionTexts(el dom.Element) []string {
	var texts []string
	for _, opt := range el.Options() {
		text := strings.TrimSpace(opt.Text)
		if text == "" {
			continue
		}
		texts = append(texts, text)
		if len(texts) == maxSelectOptions {
			break
		}
	}
	return texts
}
