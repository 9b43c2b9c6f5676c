package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v0xg/resumefill/internal/executor"
)

func TestParseFillMapping(t *testing.T) {
	text := "```json\n" + `{"fills":[
  {"fieldId":"f_1","value":"上海","reason":"matched"},
  {"fieldId":"f_2","value":["篮球","游泳"],"reason":"hobbies"},
  {"fieldId":"f_3","value":"","reason":null},
  {"fieldId":"f_4","value":28}
]}` + "\n```"

	fills, err := ParseFillMapping(text)
	require.NoError(t, err)
	assert.Equal(t, []executor.Instruction{
		{FieldID: "f_1", Value: executor.Text("上海"), Reason: "matched"},
		{FieldID: "f_2", Value: executor.List("篮球", "游泳"), Reason: "hobbies"},
		{FieldID: "f_3", Value: executor.Text("")},
		{FieldID: "f_4", Value: executor.Text("28")},
	}, fills)
}

func TestParseFillMappingEmpty(t *testing.T) {
	fills, err := ParseFillMapping(`{"fills":[]}`)
	require.NoError(t, err)
	assert.Empty(t, fills)
}

func TestParseFillMappingRejectsBadShape(t *testing.T) {
	for _, in := range []string{
		`{"fill":[]}`,
		`{"fills":{"fieldId":"f_1"}}`,
		`[{"fieldId":"f_1","value":"x"}]`,
		`{"fills":[{"fieldId":1,"value":"x"}]}`,
		`{"fills":[{"fieldId":"f_1","value":{"a":1}}]}`,
	} {
		_, err := ParseFillMapping(in)
		assert.ErrorIs(t, err, ErrBadMapping, in)
	}

	_, err := ParseFillMapping("I could not find any fields.")
	assert.ErrorIs(t, err, ErrNoJSON)
}
