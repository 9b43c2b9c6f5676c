package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Value is what the model wants written into a field: a single string for
// most kinds, a list of option labels for checkbox groups.
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// Text returns a single-string value.
func Text(s string) Value {
	return Value{Text: s}
}

// List returns a list value.
func List(items ...string) Value {
	return Value{List: items, IsList: true}
}

// Strings returns the value as option labels. A single string is split on
// newlines, commas and full-width commas.
func (v Value) Strings() []string {
	if v.IsList {
		return v.List
	}
	return splitList(v.Text)
}

// String is the single-string form. Lists render as a JSON array.
func (v Value) String() string {
	if !v.IsList {
		return v.Text
	}
	raw, _ := json.Marshal(v.List)
	return string(raw)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList {
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string, an array, null, a number or a boolean.
// Array items that are not strings are formatted with their JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &v.Text)
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		v.IsList = true
		v.List = make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				s = string(bytes.TrimSpace(item))
			}
			v.List = append(v.List, s)
		}
		return nil
	case data[0] == '{':
		return fmt.Errorf("fill value must be a string or an array, got object")
	default:
		v.Text = string(data)
		return nil
	}
}

// ParseValue interprets user-entered or remembered text for a field of the
// given kind. For checkbox groups a JSON array is decoded, otherwise the text
// is split on separators. Every other kind gets the trimmed text.
func ParseValue(kind string, raw string) Value {
	text := strings.TrimSpace(raw)
	if kind != "checkbox_group" {
		return Text(text)
	}
	if text == "" {
		return List()
	}
	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") {
		var items []string
		if err := json.Unmarshal([]byte(text), &items); err == nil {
			return List(items...)
		}
	}
	return List(splitList(text)...)
}

func splitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '\n' || r == ',' || r == '，'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Instruction is the model's answer for one field.
type Instruction struct {
	FieldID string `json:"fieldId"`
	Value   Value  `json:"value"`
	Reason  string `json:"reason"`
}

// Result is the outcome of writing one field.
type Result struct {
	Filled  bool
	Message string
}

func filled() Result {
	return Result{Filled: true}
}

func notFilled(msg string) Result {
	return Result{Message: msg}
}

// FillResult is reported to the caller for every scanned field.
type FillResult struct {
	FieldID    string `json:"fieldId"`
	FieldLabel string `json:"fieldLabel"`
	Value      string `json:"value"`
	Reason     string `json:"reason"`
	Filled     bool   `json:"filled"`
	Message    string `json:"message,omitempty"`
}
