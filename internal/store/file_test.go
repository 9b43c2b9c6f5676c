package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTripAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	s, err := OpenFile(path)
	require.NoError(t, err)

	var missing string
	ok, err := s.Get(ctx, KeyActiveModel, &missing)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, KeyActiveModel, "builtin-deepseek"))
	require.NoError(t, s.Set(ctx, KeyResumeStructured, map[string]any{"name": "张三"}))

	reopened, err := OpenFile(path)
	require.NoError(t, err)

	var active string
	ok, err = reopened.Get(ctx, KeyActiveModel, &active)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "builtin-deepseek", active)

	var resume map[string]string
	_, err = reopened.Get(ctx, KeyResumeStructured, &resume)
	require.NoError(t, err)
	assert.Equal(t, "张三", resume["name"])

	require.NoError(t, reopened.Delete(ctx, KeyActiveModel))
	ok, err = reopened.Get(ctx, KeyActiveModel, &active)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileRejectsCorruptData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "etcd"})
	assert.ErrorContains(t, err, "unknown storage driver")
}
