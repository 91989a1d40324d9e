package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArchive assembles an in-memory zip shaped like the released
// engine archive: one versioned directory plus macOS metadata noise.
func buildArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func serveArchive(t *testing.T, body []byte, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSourcePathURL_DownloadsAndUnpacks(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"mReasoner-r2/src/+mReasoner.lisp": "(defun noop () nil)",
		"mReasoner-r2/README":              "mental models",
		"__MACOSX/mReasoner-r2/._junk":     "metadata",
	})
	srv := serveArchive(t, archive, nil)

	dir := filepath.Join(t.TempDir(), "engine")
	src, err := SourcePathURL(context.Background(), dir, srv.URL)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "mReasoner-r2", "src"), src)

	content, err := os.ReadFile(filepath.Join(src, "+mReasoner.lisp"))
	require.NoError(t, err)
	assert.Equal(t, "(defun noop () nil)", string(content))
}

// An already populated directory never touches the network.
func TestSourcePathURL_ExistingDirSkipsDownload(t *testing.T) {
	var hits atomic.Int64
	srv := serveArchive(t, nil, &hits)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "mReasoner-r2", "src"), 0o750))

	src, err := SourcePathURL(context.Background(), dir, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "mReasoner-r2", "src"), src)
	assert.Zero(t, hits.Load())
}

func TestSourcePathURL_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := SourcePathURL(context.Background(), filepath.Join(t.TempDir(), "engine"), srv.URL)
	require.ErrorIs(t, err, ErrFetch)
}

// An archive that only ships metadata directories leaves nothing to
// return.
func TestSourcePathURL_NoSourceDirectory(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"__MACOSX/._junk": "metadata",
	})
	srv := serveArchive(t, archive, nil)

	_, err := SourcePathURL(context.Background(), filepath.Join(t.TempDir(), "engine"), srv.URL)
	require.ErrorIs(t, err, ErrFetch)
	assert.ErrorContains(t, err, "no source directory")
}

func TestSourcePathURL_RejectsEscapingEntries(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"../evil.txt": "outside",
	})
	srv := serveArchive(t, archive, nil)

	parent := t.TempDir()
	_, err := SourcePathURL(context.Background(), filepath.Join(parent, "engine"), srv.URL)
	require.ErrorIs(t, err, ErrFetch)
	assert.NoFileExists(t, filepath.Join(parent, "evil.txt"))
}
