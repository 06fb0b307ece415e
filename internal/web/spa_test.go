package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html": {Data: []byte("<html>pad</html>")},
		"app.js":     {Data: []byte("console.log(1)")},
	}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// TestFileServer_ServesFiles verifies existing files and the root index.
func TestFileServer_ServesFiles(t *testing.T) {
	h := NewFileServer(testFS(), zerolog.Nop())

	rec := get(t, h, "/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "console.log(1)", rec.Body.String())

	rec = get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pad")
	require.Contains(t, rec.Header().Get("Cache-Control"), "no-cache")
}

// TestFileServer_FallbackForClientRoutes verifies extensionless paths get index.html.
func TestFileServer_FallbackForClientRoutes(t *testing.T) {
	h := NewFileServer(testFS(), zerolog.Nop())

	rec := get(t, h, "/pad/settings")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "pad")
}

// TestFileServer_MissingAssetIs404 verifies a missing file with an extension is not masked.
func TestFileServer_MissingAssetIs404(t *testing.T) {
	h := NewFileServer(testFS(), zerolog.Nop())

	rec := get(t, h, "/missing.css")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

// TestHandler_Embedded verifies the embedded client is served when no dir is configured.
func TestHandler_Embedded(t *testing.T) {
	h := Handler("", zerolog.Nop())

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "app.js")

	rec = get(t, h, "/app.js")
	require.Equal(t, http.StatusOK, rec.Code)
}

// TestHandler_DiskDir verifies a static dir on disk takes precedence.
func TestHandler_DiskDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>disk</html>"), 0o600))

	rec := get(t, Handler(dir, zerolog.Nop()), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "disk")
}
