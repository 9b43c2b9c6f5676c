package scanner

import (
	"strings"

	"github.com/v0xg/resumefill/internal/dom"
)

const groupLabelMaxRunes = 50

// labelSource locates candidate label text for a control. An empty result
// passes to the next source.
type labelSource func(doc dom.Document, el dom.Element) string

var (
	fieldLabelSources = []labelSource{
		ariaLabel,
		ariaLabelledBy,
		labelByFor,
		wrappingLabel,
		attrSource("placeholder"),
		attrSource("name"),
	}

	groupLabelSources = []labelSource{
		fieldsetLegend,
		containerText,
	}

	optionLabelSources = []labelSource{
		labelByFor,
		wrappingLabel,
	}
)

// LabelFor derives the display label of a single control.
func LabelFor(doc dom.Document, el dom.Element) string {
	return resolve(doc, el, fieldLabelSources)
}

// GroupLabelFor derives the label of the radio or checkbox group el belongs to.
func GroupLabelFor(doc dom.Document, el dom.Element) string {
	return resolve(doc, el, groupLabelSources)
}

// OptionLabel derives the label of one radio or checkbox.
func OptionLabel(doc dom.Document, el dom.Element) string {
	return resolve(doc, el, optionLabelSources)
}

func resolve(doc dom.Document, el dom.Element, sources []labelSource) string {
	for _, src := range sources {
		if text := dom.NormalizeText(src(doc, el)); text != "" {
			return text
		}
	}
	return ""
}

func ariaLabel(_ dom.Document, el dom.Element) string {
	return dom.AttrOf(el, "aria-label")
}

func ariaLabelledBy(doc dom.Document, el dom.Element) string {
	ids := strings.Fields(dom.AttrOf(el, "aria-labelledby"))
	var parts []string
	for _, id := range ids {
		ref, err := doc.ElementByID(id)
		if err != nil || ref == nil {
			continue
		}
		if text := dom.NormalizeText(ref.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " / ")
}

func labelByFor(doc dom.Document, el dom.Element) string {
	id := dom.AttrOf(el, "id")
	if id == "" {
		return ""
	}
	labels, err := doc.QueryAll("label")
	if err != nil {
		return ""
	}
	for _, l := range labels {
		if dom.AttrOf(l, "for") == id {
			return l.Text()
		}
	}
	return ""
}

func wrappingLabel(_ dom.Document, el dom.Element) string {
	if l := dom.ClosestTag(el, "label"); l != nil {
		return l.Text()
	}
	return ""
}

func attrSource(name string) labelSource {
	return func(_ dom.Document, el dom.Element) string {
		return dom.AttrOf(el, name)
	}
}

func fieldsetLegend(_ dom.Document, el dom.Element) string {
	fs := dom.ClosestTag(el, "fieldset")
	if fs == nil {
		return ""
	}
	legends, err := fs.QueryAll("legend")
	if err != nil || len(legends) == 0 {
		return ""
	}
	return legends[0].Text()
}

// containerText uses the text of the nearest form-item-like wrapper, or of
// the parent when no ancestor looks like one.
func containerText(_ dom.Document, el dom.Element) string {
	container := dom.Closest(el, looksLikeFieldContainer)
	if container == nil {
		container = el.Parent()
	}
	if container == nil {
		return ""
	}
	return truncateRunes(dom.NormalizeText(container.Text()), groupLabelMaxRunes)
}

func looksLikeFieldContainer(el dom.Element) bool {
	class := strings.ToLower(dom.AttrOf(el, "class"))
	return strings.Contains(class, "form") ||
		strings.Contains(class, "field") ||
		strings.Contains(class, "item")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
