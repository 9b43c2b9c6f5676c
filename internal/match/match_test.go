package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzy(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"上海", "上海", true},
		{" 上海 ", "上海", true},
		{"上海市", "上海", true},
		{"本科", "本科及以上", true},
		{"男", "女", false},
		{"", "x", false},
		{"x", "  ", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fuzzy(tt.a, tt.b), "Fuzzy(%q, %q)", tt.a, tt.b)
		assert.Equal(t, Fuzzy(tt.a, tt.b), Fuzzy(tt.b, tt.a), "symmetry for %q, %q", tt.a, tt.b)
	}
}

func TestPickBestPrefersExact(t *testing.T) {
	labels := []string{"上海市", "上海", "北京"}
	assert.Equal(t, 1, PickBest(labels, "上海"))
}

func TestPickBestFirstFuzzy(t *testing.T) {
	labels := []string{"北京", "上海市浦东", "上海市"}
	assert.Equal(t, 1, PickBest(labels, "上海"))
}

func TestPickBestNone(t *testing.T) {
	labels := []string{"北京", "广州"}
	assert.Equal(t, -1, PickBest(labels, "深圳"))
	assert.Equal(t, -1, PickBest(labels, ""))
	assert.Equal(t, -1, PickBest(labels, "   "))
	assert.Equal(t, -1, PickBest(nil, "北京"))
}

func TestPickBestSkipsEmptyLabels(t *testing.T) {
	assert.Equal(t, 1, PickBest([]string{"", "是"}, "是"))
}
