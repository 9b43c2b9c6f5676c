package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/resumefill/internal/autofill"
)

const applyForm = `<html><head><title>Apply</title></head><body><form>
  <label for="n">姓名</label><input id="n" name="name">
  <label for="c">城市</label><select id="c" name="city"><option>北京</option><option>上海</option></select>
  <label for="e">邮箱</label><input id="e" name="email">
</form></body></html>`

// fakeModel answers résumé parsing and form filling like an
// OpenAI-compatible endpoint.
func fakeModel(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.Messages, 2) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		content := "```json\n{\"basic\":{\"name\":\"张三\",\"city\":\"上海\"}}\n```"
		if strings.Contains(req.Messages[0].Content, `"fills"`) {
			content = `{"fills":[{"fieldId":"f_1","value":"张三","reason":"basic.name"},` +
				`{"fieldId":"f_2","value":"上海","reason":"basic.city"},` +
				`{"fieldId":"f_3","value":"","reason":"not in résumé"}]}`
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("RESUMEFILL_STORAGE_DRIVER", "file")
	t.Setenv("RESUMEFILL_STORAGE_PATH", filepath.Join(dir, "store.json"))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(context.Background())
}

func TestFillHTMLEndToEnd(t *testing.T) {
	dir := setup(t)
	srv := fakeModel(t)

	require.NoError(t, execute(t, "models", "add", "--id", "builtin-deepseek",
		"--base-url", srv.URL+"/v1/chat/completions", "--api-key", "sk-test", "--model", "test-model"))

	cv := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(cv, []byte("张三\n上海\n"), 0o644))
	require.NoError(t, execute(t, "resume", "parse", cv))

	form := filepath.Join(dir, "form.html")
	out := filepath.Join(dir, "filled.html")
	require.NoError(t, os.WriteFile(form, []byte(applyForm), 0o644))
	require.NoError(t, execute(t, "fill", "--html", form, "--out", out))

	filled, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(filled), `value="张三"`)
	assert.Contains(t, string(filled), `<option selected="">上海</option>`)
}

func TestFillWithoutResume(t *testing.T) {
	dir := setup(t)
	form := filepath.Join(dir, "form.html")
	require.NoError(t, os.WriteFile(form, []byte(applyForm), 0o644))

	err := execute(t, "fill", "--html", form)
	assert.ErrorIs(t, err, autofill.ErrNoResume)
}

func TestFillFlagValidation(t *testing.T) {
	setup(t)
	assert.ErrorContains(t, execute(t, "fill"), "URL or --html")
	assert.ErrorContains(t, execute(t, "fill", "https://example.com", "--out", "x.html"), "--out needs --html")
}

func TestSnapshotThenMemory(t *testing.T) {
	dir := setup(t)
	form := filepath.Join(dir, "filled.html")
	page := strings.Replace(applyForm, `name="email">`, `name="email" value="zs@example.com">`, 1)
	require.NoError(t, os.WriteFile(form, []byte(page), 0o644))

	require.NoError(t, execute(t, "snapshot", "--html", form))

	root := newRootCmd()
	root.SetContext(context.Background())
	a, err := openApp(root)
	require.NoError(t, err)
	entries, err := a.memory.Load(context.Background())
	a.Close()
	require.NoError(t, err)
	require.Contains(t, entries, "邮箱")
	assert.Equal(t, "zs@example.com", entries["邮箱"].Value)
	// the first option of a select counts as a value
	assert.Equal(t, "北京", entries["城市"].Value)

	require.NoError(t, execute(t, "memory", "delete", "邮箱"))
	require.NoError(t, execute(t, "memory", "clear"))
}

func TestProgressLines(t *testing.T) {
	var buf bytes.Buffer
	p := &progress{w: &buf}
	for _, to := range []autofill.State{
		autofill.StateScanning, autofill.StatePrompting, autofill.StateAwaitingModel,
		autofill.StateFailed, autofill.StateIdle,
	} {
		p.transition(autofill.StateIdle, to)
	}
	assert.Equal(t, "→ Scanning form... done\n→ Building prompt... done\n→ Waiting for the model... failed\n", buf.String())
}

func TestParseCLIValue(t *testing.T) {
	assert.Equal(t, "plain", parseCLIValue("plain"))
	assert.Equal(t, float64(3), parseCLIValue("3"))
	assert.Equal(t, []any{"a", "b"}, parseCLIValue(`["a","b"]`))
}
