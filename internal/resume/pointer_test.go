package resume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc() map[string]any {
	return map[string]any{
		"basic":     map[string]any{"name": "张三", "age": float64(28)},
		"a/b":       "slash",
		"x~y":       "tilde",
		"education": []any{map[string]any{"school": "复旦"}},
		"links":     []any{},
		"extra":     map[string]any{},
		"note":      nil,
	}
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, []Row{
		{Pointer: "/a~1b", Label: "a/b", Value: "slash"},
		{Pointer: "/basic/age", Label: "basic / age", Value: float64(28)},
		{Pointer: "/basic/name", Label: "basic / name", Value: "张三"},
		{Pointer: "/education/0/school", Label: "education / 0 / school", Value: "复旦"},
		{Pointer: "/extra", Label: "extra", Value: ""},
		{Pointer: "/links", Label: "links", Value: ""},
		{Pointer: "/note", Label: "note", Value: nil},
		{Pointer: "/x~0y", Label: "x~y", Value: "tilde"},
	}, Flatten(doc()))

	assert.Equal(t, []Row{{Pointer: "/", Label: "(root)", Value: "plain"}}, Flatten("plain"))
}

func TestSetByPointer(t *testing.T) {
	d := doc()

	require.NoError(t, SetByPointer(d, "/basic/name", "李四"))
	require.NoError(t, SetByPointer(d, "/a~1b", "changed"))
	require.NoError(t, SetByPointer(d, "/x~0y", "changed"))
	require.NoError(t, SetByPointer(d, "/education/0/school", "交大"))
	require.NoError(t, SetByPointer(d, "/basic/phone", "138"))

	assert.Equal(t, "李四", d["basic"].(map[string]any)["name"])
	assert.Equal(t, "138", d["basic"].(map[string]any)["phone"])
	assert.Equal(t, "changed", d["a/b"])
	assert.Equal(t, "changed", d["x~y"])
	assert.Equal(t, "交大", d["education"].([]any)[0].(map[string]any)["school"])

	for _, p := range []string{"/", "", "basic", "/missing/key", "/education/x", "/education/5/school", "/basic/name/deeper"} {
		assert.Error(t, SetByPointer(d, p, "v"), p)
	}
}
