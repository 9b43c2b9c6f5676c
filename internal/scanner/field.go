package scanner

import "github.com/v0xg/resumefill/internal/dom"

// Kind classifies a scanned field.
type Kind string

const (
	KindText            Kind = "text"
	KindTextarea        Kind = "textarea"
	KindSelect          Kind = "select"
	KindRadioGroup      Kind = "radio_group"
	KindCheckboxGroup   Kind = "checkbox_group"
	KindContentEditable Kind = "contenteditable"
	KindFile            Kind = "file"
)

// IsGroup reports whether the kind is backed by several choice elements.
func (k Kind) IsGroup() bool {
	return k == KindRadioGroup || k == KindCheckboxGroup
}

// Field is the serializable description of a control sent to the model.
type Field struct {
	FieldID      string   `json:"fieldId"`
	Kind         Kind     `json:"kind"`
	InputType    string   `json:"inputType,omitempty"`
	Label        string   `json:"label"`
	Name         string   `json:"name"`
	ID           string   `json:"id"`
	Placeholder  string   `json:"placeholder"`
	Autocomplete string   `json:"autocomplete,omitempty"`
	Options      []string `json:"options,omitempty"`
}

// DisplayLabel is the best human-readable name for the field.
func (f Field) DisplayLabel() string {
	return firstNonEmpty(f.Label, f.Name, f.Placeholder, string(f.Kind))
}

// MemoryQuery is the text used to look the field up in the memory index.
func (f Field) MemoryQuery() string {
	return firstNonEmpty(f.Label, f.Name, f.Placeholder)
}

// ChoiceOption is one radio or checkbox of a group.
type ChoiceOption struct {
	Element dom.Element
	Label   string
	Value   string
}

// Handle holds the live references needed to read and write a field.
// Singular kinds use Element; group kinds use Options.
type Handle struct {
	FieldID string
	Kind    Kind
	Element dom.Element
	Options []ChoiceOption
}

// Result is the output of one scan. Fields[i] and Handles[i] share a FieldID.
type Result struct {
	Fields  []Field
	Handles []*Handle
}

// Session indexes the handles of a single scan by field id. A session is
// replaced, never merged, when the page is scanned again.
type Session struct {
	handles map[string]*Handle
}

// NewSession builds the lookup tables for res.
func NewSession(res *Result) *Session {
	s := &Session{
		handles: make(map[string]*Handle, len(res.Handles)),
	}
	for _, h := range res.Handles {
		s.handles[h.FieldID] = h
	}
	return s
}

// Handle returns the handle for id.
func (s *Session) Handle(id string) (*Handle, bool) {
	if s == nil {
		return nil, false
	}
	h, ok := s.handles[id]
	return h, ok
}

// Len is the number of fields in the session.
func (s *Session) Len() int {
	if s == nil {
		return 0
	}
	return len(s.handles)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
