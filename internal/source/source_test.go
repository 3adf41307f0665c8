package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deckText = "RUNSPEC\nDIMENS\n 10 10 3 /\n"

func writeGzip(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = io.WriteString(zw, deckText)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func writeZstd(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = io.WriteString(zw, deckText)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	return string(data)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "CASE.DATA")
	require.NoError(t, os.WriteFile(plain, []byte(deckText), 0o644))
	gz := filepath.Join(dir, "CASE.DATA.gz")
	writeGzip(t, gz)
	zst := filepath.Join(dir, "CASE.DATA.zst")
	writeZstd(t, zst)

	for _, path := range []string{plain, gz, zst} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			rc, err := Open(path)
			require.NoError(t, err)
			assert.Equal(t, deckText, readAll(t, rc))
		})
	}

	_, err := Open(filepath.Join(dir, "missing.DATA"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "broken.gz")
	require.NoError(t, os.WriteFile(bad, []byte("not gzip"), 0o644))
	_, err = Open(bad)
	assert.Error(t, err)
}

func TestFiles_CompressedFallback(t *testing.T) {
	dir := t.TempDir()
	writeGzip(t, filepath.Join(dir, "grid.inc.gz"))

	rc, err := Files{}.Open(context.Background(), filepath.Join(dir, "grid.inc"))
	require.NoError(t, err)
	assert.Equal(t, deckText, readAll(t, rc))

	_, err = Files{}.Open(context.Background(), filepath.Join(dir, "none.inc"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
