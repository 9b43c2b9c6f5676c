package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/resumefill/internal/dom"
	"github.com/v0xg/resumefill/internal/executor"
	"github.com/v0xg/resumefill/internal/scanner"
)

const formPage = `<!doctype html><html><head><title>Apply</title></head><body>
<form>
  <label for="n">Name</label><input id="n" name="name">
  <label for="c">City</label><select id="c" name="city"><option>Beijing</option><option>Shanghai</option></select>
  <div class="form-item">Hobbies
    <label><input type="checkbox" name="hobby" value="1">Chess</label>
    <label><input type="checkbox" name="hobby" value="2">Swimming</label>
  </div>
  <input type="hidden" name="token" value="x">
</form>
<script>
  window.events = [];
  document.getElementById("n").addEventListener("input", e => window.events.push("input:" + e.target.value));
</script>
</body></html>`

func openTestPage(t *testing.T) *Browser {
	t.Helper()
	if testing.Short() {
		t.Skip("browser test skipped in short mode")
	}
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chromium found")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(formPage))
	}))
	t.Cleanup(srv.Close)

	b, err := Open(srv.URL, Options{Headless: true, Timeout: 20 * time.Second})
	require.NoError(t, err)
	t.Cleanup(b.Close)
	return b
}

func TestLivePageScanAndFill(t *testing.T) {
	b := openTestPage(t)
	doc := b.Document()
	assert.Equal(t, "Apply", doc.Title())

	res, err := scanner.Scan(doc, nil)
	require.NoError(t, err)
	require.Len(t, res.Fields, 3)
	assert.Equal(t, "Name", res.Fields[0].Label)
	assert.Equal(t, []string{"Beijing", "Shanghai"}, res.Fields[1].Options)
	assert.Equal(t, scanner.KindCheckboxGroup, res.Fields[2].Kind)

	exec := executor.New(executor.Options{})
	ctx := context.Background()
	assert.True(t, exec.Apply(ctx, res.Handles[0], executor.Text("Ada")).Filled)
	assert.True(t, exec.Apply(ctx, res.Handles[1], executor.Text("Shanghai")).Filled)
	assert.True(t, exec.Apply(ctx, res.Handles[2], executor.List("Swimming")).Filled)

	assert.Equal(t, "Ada", executor.ReadValue(res.Handles[0]).String())
	assert.Equal(t, "Shanghai", executor.ReadValue(res.Handles[1]).String())
	assert.Equal(t, []string{"Swimming"}, executor.ReadValue(res.Handles[2]).List)

	events, err := b.page.Eval(`() => window.events.join(",")`)
	require.NoError(t, err)
	assert.Equal(t, "input:Ada", events.Value.Str())

	el, err := doc.ElementByID("n")
	require.NoError(t, err)
	require.NotNil(t, el)
	box, ok := el.(dom.Boxer).Box()
	assert.True(t, ok)
	assert.False(t, box.Empty())

	img, err := b.Screenshot()
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
}

func TestElementByIDMissing(t *testing.T) {
	b := openTestPage(t)
	el, err := b.Document().ElementByID(`no"such`)
	require.NoError(t, err)
	assert.Nil(t, el)
}

func TestCSSString(t *testing.T) {
	assert.Equal(t, `a\"b\\c`, cssString(`a"b\c`))
}
