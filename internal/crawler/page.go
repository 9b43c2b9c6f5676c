package crawler

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"

	"github.com/v0xg/resumefill/internal/dom"
)

// Page adapts a rod page to dom.Document. Element reads and writes run as
// small functions inside the page, bound to the element as this.
type Page struct {
	page *rod.Page
}

var _ dom.Document = (*Page)(nil)

func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) Title() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (p *Page) QueryAll(selector string) ([]dom.Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrapAll(els), nil
}

func (p *Page) ElementByID(id string) (dom.Element, error) {
	if id == "" {
		return nil, nil
	}
	els, err := p.page.Elements(`[id="` + cssString(id) + `"]`)
	if err != nil {
		return nil, fmt.Errorf("find #%s: %w", id, err)
	}
	if len(els) == 0 {
		return nil, nil
	}
	return &Element{el: els[0]}, nil
}

func cssString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func wrapAll(els rod.Elements) []dom.Element {
	out := make([]dom.Element, len(els))
	for i, el := range els {
		out[i] = &Element{el: el}
	}
	return out
}

// Element is a live element of a rod page.
type Element struct {
	el *rod.Element
}

var (
	_ dom.Element = (*Element)(nil)
	_ dom.Boxer   = (*Element)(nil)
)

func (e *Element) eval(js string, args ...any) (gson.JSON, error) {
	res, err := e.el.Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

func (e *Element) run(js string, args ...any) error {
	_, err := e.el.Eval(js, args...)
	return err
}

func (e *Element) str(js string) string {
	v, err := e.eval(js)
	if err != nil {
		return ""
	}
	return v.Str()
}

func (e *Element) flag(js string) bool {
	v, err := e.eval(js)
	if err != nil {
		return false
	}
	return v.Bool()
}

func (e *Element) QueryAll(selector string) ([]dom.Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", selector, err)
	}
	return wrapAll(els), nil
}

func (e *Element) Tag() string {
	return e.str(`() => this.tagName.toLowerCase()`)
}

func (e *Element) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (e *Element) Text() string {
	return e.str(`() => this.textContent || ""`)
}

func (e *Element) Parent() dom.Element {
	p, err := e.el.Parent()
	if err != nil || p == nil {
		return nil
	}
	return &Element{el: p}
}

func (e *Element) Visible() bool {
	return e.flag(`() => {
		if (!this.isConnected) return false;
		const style = getComputedStyle(this);
		if (style.display === "none" || style.visibility === "hidden") return false;
		const rect = this.getBoundingClientRect();
		return rect.width > 0 && rect.height > 0;
	}`)
}

func (e *Element) Disabled() bool {
	return e.flag(`() => !!this.disabled`)
}

func (e *Element) Value() string {
	return e.str(`() => typeof this.value === "string" ? this.value : ""`)
}

func (e *Element) Checked() bool {
	return e.flag(`() => !!this.checked`)
}

func (e *Element) Options() []dom.Option {
	v, err := e.eval(`() => Array.from(this.options || []).map(o => ({text: o.text || "", value: o.value || ""}))`)
	if err != nil {
		return nil
	}
	var opts []dom.Option
	for _, o := range v.Arr() {
		opts = append(opts, dom.Option{Text: o.Get("text").Str(), Value: o.Get("value").Str()})
	}
	return opts
}

func (e *Element) SelectedIndex() int {
	v, err := e.eval(`() => typeof this.selectedIndex === "number" ? this.selectedIndex : -1`)
	if err != nil {
		return -1
	}
	return v.Int()
}

func (e *Element) ScrollIntoView() error {
	return e.run(`() => this.scrollIntoView({block: "center", inline: "nearest"})`)
}

func (e *Element) Focus() error {
	return e.run(`() => this.focus()`)
}

func (e *Element) Blur() error {
	return e.run(`() => this.blur()`)
}

// SetValue uses the setter of HTMLInputElement or HTMLTextAreaElement so
// frameworks that wrap the value property still see the change.
func (e *Element) SetValue(v string) error {
	return e.run(`(v) => {
		const proto = this instanceof HTMLTextAreaElement ? HTMLTextAreaElement.prototype
			: this instanceof HTMLInputElement ? HTMLInputElement.prototype
			: null;
		if (!proto) throw new Error("<" + this.tagName.toLowerCase() + "> has no value property");
		const desc = Object.getOwnPropertyDescriptor(proto, "value");
		if (desc && desc.set) desc.set.call(this, v);
		else this.value = v;
	}`, v)
}

func (e *Element) SetText(v string) error {
	return e.run(`(v) => { this.textContent = v; }`, v)
}

// Click runs the element's own activation behaviour, which listeners may
// cancel.
func (e *Element) Click() error {
	return e.run(`() => this.click()`)
}

func (e *Element) Select(index int) error {
	return e.run(`(i) => {
		if (!this.options || i < 0 || i >= this.options.length) throw new Error("option index out of range");
		this.selectedIndex = i;
	}`, index)
}

func (e *Element) Dispatch(event string) error {
	return e.run(`(type) => { this.dispatchEvent(new Event(type, {bubbles: true})); }`, event)
}

// Box returns the element's bounding box in viewport pixels.
func (e *Element) Box() (image.Rectangle, bool) {
	shape, err := e.el.Shape()
	if err != nil || shape == nil || len(shape.Quads) == 0 {
		return image.Rectangle{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, q := range shape.Quads {
		for i := 0; i+1 < len(q); i += 2 {
			minX, maxX = math.Min(minX, q[i]), math.Max(maxX, q[i])
			minY, maxY = math.Min(minY, q[i+1]), math.Max(maxY, q[i+1])
		}
	}
	r := image.Rect(int(minX), int(minY), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
	return r, !r.Empty()
}
