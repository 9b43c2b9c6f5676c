// Package htmldom is an in-memory dom.Document built from parsed HTML.
//
// There is no layout engine: an element is visible unless it or an ancestor
// is hidden by the hidden attribute, an inline display:none or
// visibility:hidden, or lives in a non-rendered subtree (head, script,
// template...). Writes mutate the parsed tree so the filled form can be
// rendered back to HTML.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/v0xg/resumefill/internal/dom"
)

// Event is a dispatched DOM event.
type Event struct {
	Type   string
	Target *Element

	canceled bool
}

// PreventDefault cancels the default action of a click.
func (e *Event) PreventDefault() {
	e.canceled = true
}

// Listener observes every event dispatched in a document.
type Listener func(ev *Event)

// Document is a parsed HTML page.
type Document struct {
	root      *html.Node
	url       string
	selectors map[string]cascadia.Selector
	listeners []Listener
	events    []Event
}

var _ dom.Document = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader, url string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{
		root:      root,
		url:       url,
		selectors: make(map[string]cascadia.Selector),
	}, nil
}

// MustParse parses src and panics on error. Intended for tests.
func MustParse(src string) *Document {
	doc, err := Parse(strings.NewReader(src), "about:blank")
	if err != nil {
		panic(err)
	}
	return doc
}

func (d *Document) URL() string {
	return d.url
}

func (d *Document) Title() string {
	els, err := d.QueryAll("title")
	if err != nil || len(els) == 0 {
		return ""
	}
	return strings.TrimSpace(els[0].Text())
}

func (d *Document) QueryAll(selector string) ([]dom.Element, error) {
	return d.queryAll(d.root, selector)
}

func (d *Document) ElementByID(id string) (dom.Element, error) {
	if id == "" {
		return nil, nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, nil
	}
	return d.wrap(found), nil
}

// Listen registers fn for every subsequently dispatched event.
func (d *Document) Listen(fn Listener) {
	d.listeners = append(d.listeners, fn)
}

// Events returns every event dispatched so far, oldest first.
func (d *Document) Events() []Event {
	return append([]Event(nil), d.events...)
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// First returns the first element matching selector, or nil.
func (d *Document) First(selector string) *Element {
	els, err := d.QueryAll(selector)
	if err != nil || len(els) == 0 {
		return nil
	}
	return els[0].(*Element)
}

func (d *Document) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := d.selectors[selector]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	d.selectors[selector] = sel
	return sel, nil
}

func (d *Document) queryAll(n *html.Node, selector string) ([]dom.Element, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}
	var out []dom.Element
	for _, m := range sel.MatchAll(n) {
		if m == n || m.Type != html.ElementNode {
			continue
		}
		out = append(out, d.wrap(m))
	}
	return out, nil
}

func (d *Document) wrap(n *html.Node) *Element {
	return &Element{n: n, doc: d}
}

func (d *Document) dispatch(el *Element, typ string) *Event {
	ev := &Event{Type: typ, Target: el}
	for _, fn := range d.listeners {
		fn(ev)
	}
	d.events = append(d.events, *ev)
	return ev
}

func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	v, _ := lookupAttr(n, name)
	return v
}

func lookupAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

func replaceText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
