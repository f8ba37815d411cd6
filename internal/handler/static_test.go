package handler

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.css"), []byte("body { color: black; }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "index.html"), []byte("blog index"), 0o644))

	h := NewStaticHandler(dir)

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	t.Run("serves files", func(t *testing.T) {
		rec := serve(http.MethodGet, "/styles.css")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "color: black")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	})

	t.Run("serves directory index", func(t *testing.T) {
		rec := serve(http.MethodGet, "/blog/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "blog index", rec.Body.String())
	})

	t.Run("plain 404 without a 404 page", func(t *testing.T) {
		rec := serve(http.MethodGet, "/missing.js")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("custom 404 page", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, notFoundPage), []byte("nothing here"), 0o644))

		rec := serve(http.MethodGet, "/missing.js")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "nothing here", rec.Body.String())

		rec = serve(http.MethodPost, "/styles.css")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("directory without index is not listed", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
		rec := serve(http.MethodGet, "/assets/")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
