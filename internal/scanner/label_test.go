package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/v0xg/resumefill/internal/dom/htmldom"
)

func TestLabelForCascade(t *testing.T) {
	doc := htmldom.MustParse(`
<span id="l1">First
  name</span><span id="l2">Given</span>
<label for="email">  E-mail
 address </label>
<input id="aria" aria-label="  Full   name " placeholder="ignored">
<input id="by" aria-labelledby="l1 missing l2">
<input id="email" placeholder="ignored">
<label>Phone <input id="wrapped"></label>
<input id="ph" placeholder="Your city" name="city">
<input id="nm" name="zip">
<input id="none">
`)

	tests := []struct {
		id   string
		want string
	}{
		{"aria", "Full name"},
		{"by", "First name / Given"},
		{"email", "E-mail address"},
		{"wrapped", "Phone"},
		{"ph", "Your city"},
		{"nm", "zip"},
		{"none", ""},
	}
	for _, tt := range tests {
		el, err := doc.ElementByID(tt.id)
		if !assert.NoError(t, err) || !assert.NotNil(t, el, tt.id) {
			continue
		}
		assert.Equal(t, tt.want, LabelFor(doc, el), tt.id)
	}
}

func TestLabelForSkipsEmptyLabelledBy(t *testing.T) {
	doc := htmldom.MustParse(`<span id="blank">  </span><input id="x" aria-labelledby="blank" name="fallback">`)
	el, _ := doc.ElementByID("x")
	assert.Equal(t, "fallback", LabelFor(doc, el))
}

func TestGroupLabelFromLegend(t *testing.T) {
	doc := htmldom.MustParse(`
<fieldset><legend> Gender </legend>
  <div class="form-item"><label><input type="radio" id="m" name="g">Male</label></div>
</fieldset>`)
	el, _ := doc.ElementByID("m")
	assert.Equal(t, "Gender", GroupLabelFor(doc, el))
}

func TestGroupLabelFromContainer(t *testing.T) {
	doc := htmldom.MustParse(`
<div class="Form-Row">Hobbies
  <span><label><input type="checkbox" id="a" name="h">Reading</label></span>
</div>`)
	el, _ := doc.ElementByID("a")
	assert.Equal(t, "Hobbies Reading", GroupLabelFor(doc, el))
}

func TestGroupLabelFallsBackToParentAndTruncates(t *testing.T) {
	long := "这是一个非常非常长的问题描述用于测试五十个字符的截断逻辑是否正确工作以及不会把整段文字全部塞进标签里面去的情况吧对吧"
	doc := htmldom.MustParse(`<div><p>` + long + `<input type="radio" id="r" name="q"></p></div>`)
	el, _ := doc.ElementByID("r")

	got := GroupLabelFor(doc, el)
	assert.Equal(t, string([]rune(long)[:50]), got)
}

func TestOptionLabel(t *testing.T) {
	doc := htmldom.MustParse(`
<label for="o1">篮球</label><input type="checkbox" id="o1" name="h">
<label><input type="checkbox" id="o2" name="h"> 足球 </label>
<input type="checkbox" id="o3" name="h" value="swim">`)

	for id, want := range map[string]string{"o1": "篮球", "o2": "足球", "o3": ""} {
		el, _ := doc.ElementByID(id)
		assert.Equal(t, want, OptionLabel(doc, el), id)
	}
}
