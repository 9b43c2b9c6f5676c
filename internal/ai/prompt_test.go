package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	p, err := SystemPrompt(ModeFormFill)
	require.NoError(t, err)
	assert.Contains(t, p, `"fills"`)

	p, err = SystemPrompt(ModeResumeParse)
	require.NoError(t, err)
	assert.Contains(t, p, "Never invent")

	_, err = SystemPrompt("chat")
	assert.ErrorIs(t, err, ErrUnsupportedMode)
}

func TestBuildFillPrompt(t *testing.T) {
	prompt, err := BuildFillPrompt(FillPayload{
		URL:    "https://jobs.example.com/apply",
		Title:  "Apply",
		Fields: []map[string]string{{"fieldId": "f_1", "kind": "select"}},
		Resume: map[string]any{"city": "上海"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "url": "https://jobs.example.com/apply",
  "title": "Apply",
  "fields": [{"fieldId": "f_1", "kind": "select"}],
  "resume": {"city": "上海"}
}`, prompt)
}

func TestBuildResumeParsePrompt(t *testing.T) {
	assert.Contains(t, BuildResumeParsePrompt("张三 13800000000"), "Résumé text:\n张三 13800000000\n")
}
