package resume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePDFText(t *testing.T) {
	in := "张三  \n工程师\t\n\n\n\n教育经历\r\n复旦大学\n\n"
	assert.Equal(t, "张三\n工程师\n\n教育经历\n复旦大学", normalizePDFText(in))
}

func TestReadTextPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n 张三 \n"), 0o600))

	text, err := ReadText(path)
	require.NoError(t, err)
	assert.Equal(t, "张三", text)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o600))
	_, err = ReadText(empty)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = ReadText(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestReadTextRejectsBrokenPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	_, err := ReadText(path)
	assert.Error(t, err)
}
