package htmldom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/v0xg/resumefill/internal/dom"
)

// Element wraps a parsed element node.
type Element struct {
	n   *html.Node
	doc *Document
}

var _ dom.Element = (*Element)(nil)

// hiddenTags never render.
var hiddenTags = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"template": true,
	"noscript": true,
}

// Node exposes the underlying parse node.
func (e *Element) Node() *html.Node {
	return e.n
}

func (e *Element) QueryAll(selector string) ([]dom.Element, error) {
	return e.doc.queryAll(e.n, selector)
}

func (e *Element) Tag() string {
	return strings.ToLower(e.n.Data)
}

func (e *Element) Attr(name string) (string, bool) {
	return lookupAttr(e.n, name)
}

func (e *Element) Text() string {
	return textContent(e.n)
}

func (e *Element) Parent() dom.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

func (e *Element) Visible() bool {
	if e.Tag() == "input" && strings.EqualFold(attr(e.n, "type"), "hidden") {
		return false
	}
	for n := e.n; n != nil && n.Type == html.ElementNode; n = n.Parent {
		if hiddenTags[strings.ToLower(n.Data)] {
			return false
		}
		if _, ok := lookupAttr(n, "hidden"); ok {
			return false
		}
		style := strings.ToLower(strings.Join(strings.Fields(attr(n, "style")), ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func (e *Element) Disabled() bool {
	_, ok := lookupAttr(e.n, "disabled")
	return ok
}

func (e *Element) Value() string {
	switch e.Tag() {
	case "textarea":
		return e.Text()
	case "select":
		opts := e.Options()
		if i := e.SelectedIndex(); i >= 0 && i < len(opts) {
			return opts[i].Value
		}
		return ""
	}
	return attr(e.n, "value")
}

func (e *Element) Checked() bool {
	_, ok := lookupAttr(e.n, "checked")
	return ok
}

func (e *Element) Options() []dom.Option {
	var opts []dom.Option
	for _, n := range e.optionNodes() {
		text := textContent(n)
		value, ok := lookupAttr(n, "value")
		if !ok {
			value = dom.NormalizeText(text)
		}
		opts = append(opts, dom.Option{Text: text, Value: value})
	}
	return opts
}

func (e *Element) SelectedIndex() int {
	nodes := e.optionNodes()
	for i, n := range nodes {
		if _, ok := lookupAttr(n, "selected"); ok {
			return i
		}
	}
	if len(nodes) > 0 {
		return 0
	}
	return -1
}

func (e *Element) ScrollIntoView() error {
	e.doc.dispatch(e, "scroll")
	return nil
}

func (e *Element) Focus() error {
	e.doc.dispatch(e, "focus")
	return nil
}

func (e *Element) Blur() error {
	e.doc.dispatch(e, "blur")
	return nil
}

func (e *Element) SetValue(v string) error {
	switch e.Tag() {
	case "input":
		setAttr(e.n, "value", v)
	case "textarea":
		replaceText(e.n, v)
	default:
		return fmt.Errorf("<%s> has no value property", e.Tag())
	}
	return nil
}

func (e *Element) SetText(v string) error {
	replaceText(e.n, v)
	return nil
}

// Click performs the element's activation behaviour. For checkboxes and
// radios that is toggling the checked state unless a listener cancelled
// the click.
func (e *Element) Click() error {
	ev := e.doc.dispatch(e, "click")
	if ev.canceled || e.Disabled() || e.Tag() != "input" {
		return nil
	}
	switch strings.ToLower(attr(e.n, "type")) {
	case "checkbox":
		if e.Checked() {
			removeAttr(e.n, "checked")
		} else {
			setAttr(e.n, "checked", "")
		}
	case "radio":
		if e.Checked() {
			return nil
		}
		for _, other := range e.radioGroup() {
			removeAttr(other, "checked")
		}
		setAttr(e.n, "checked", "")
	default:
		return nil
	}
	e.doc.dispatch(e, "input")
	e.doc.dispatch(e, "change")
	return nil
}

func (e *Element) Select(index int) error {
	nodes := e.optionNodes()
	if index < 0 || index >= len(nodes) {
		return fmt.Errorf("option index %d out of range (%d options)", index, len(nodes))
	}
	for _, n := range nodes {
		removeAttr(n, "selected")
	}
	setAttr(nodes[index], "selected", "")
	return nil
}

func (e *Element) Dispatch(event string) error {
	e.doc.dispatch(e, event)
	return nil
}

func (e *Element) optionNodes() []*html.Node {
	if e.Tag() != "select" {
		return nil
	}
	var nodes []*html.Node
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "option") {
			nodes = append(nodes, n)
		}
		return true
	})
	return nodes
}

// radioGroup returns every radio sharing this element's name within the
// same form owner, or the whole document when there is no form.
func (e *Element) radioGroup() []*html.Node {
	name := attr(e.n, "name")
	if name == "" {
		return nil
	}
	owner := e.doc.root
	for p := e.n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && strings.EqualFold(p.Data, "form") {
			owner = p
			break
		}
	}
	var group []*html.Node
	walk(owner, func(n *html.Node) bool {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "input") &&
			strings.EqualFold(attr(n, "type"), "radio") && attr(n, "name") == name {
			group = append(group, n)
		}
		return true
	})
	return group
}
