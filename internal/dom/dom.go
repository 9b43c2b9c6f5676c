// Package dom describes the small slice of a browser document that the form
// scanner and the fill executor need. Two implementations exist: a live
// Chromium page driven through rod (package crawler) and an in-memory parsed
// HTML document (package htmldom).
package dom

import (
	"image"
	"strings"
)

// ControlSelector matches every element that may hold a fillable value.
const ControlSelector = `input, textarea, select, [contenteditable="true"], [contenteditable=""]`

// Scope is anything that can be searched with a CSS selector.
type Scope interface {
	// QueryAll returns the matching descendants in document order.
	QueryAll(selector string) ([]Element, error)
}

// Document is a loaded page.
type Document interface {
	Scope
	URL() string
	Title() string
	// ElementByID returns nil when no element carries the id.
	ElementByID(id string) (Element, error)
}

// Option is one <option> of a <select>.
type Option struct {
	Text  string
	Value string
}

// Element is a single DOM element.
type Element interface {
	Scope

	// Tag is the lowercase tag name.
	Tag() string
	Attr(name string) (string, bool)
	// Text is the element's textContent.
	Text() string
	// Parent returns nil for the top-most element.
	Parent() Element

	Visible() bool
	Disabled() bool

	Value() string
	Checked() bool
	Options() []Option
	SelectedIndex() int

	ScrollIntoView() error
	Focus() error
	Blur() error
	// SetValue writes through the native value setter of the element's
	// prototype so property overrides installed by the page are bypassed.
	SetValue(v string) error
	SetText(v string) error
	Click() error
	Select(index int) error
	// Dispatch fires a bubbling event of the given type.
	Dispatch(event string) error
}

// Boxer is implemented by elements that have a rendered box.
type Boxer interface {
	Box() (image.Rectangle, bool)
}

// AttrOf returns the attribute value or "".
func AttrOf(el Element, name string) string {
	v, _ := el.Attr(name)
	return v
}

// Closest walks up from el (exclusive) and returns the first ancestor that
// satisfies fn.
func Closest(el Element, fn func(Element) bool) Element {
	for p := el.Parent(); p != nil; p = p.Parent() {
		if fn(p) {
			return p
		}
	}
	return nil
}

// ClosestTag is Closest including el itself, matching on tag name. This is
// the DOM's el.closest("tag").
func ClosestTag(el Element, tag string) Element {
	if el.Tag() == tag {
		return el
	}
	return Closest(el, func(p Element) bool { return p.Tag() == tag })
}

// NormalizeText collapses whitespace runs to a single space and trims.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
