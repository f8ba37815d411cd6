package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

const notFoundPage = "404.html"

// StaticHandler serves files from a directory. Unknown paths get 404.html
// with a 404 status.
type StaticHandler struct {
	staticDir string
}

func NewStaticHandler(staticDir string) *StaticHandler {
	return &StaticHandler{staticDir: staticDir}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.notFound(w, r)
		return
	}

	filePath := filepath.Join(h.staticDir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

	info, err := os.Stat(filePath)
	if err == nil && info.IsDir() {
		filePath = filepath.Join(filePath, "index.html")
		info, err = os.Stat(filePath)
	}
	if err != nil || info.IsDir() {
		h.notFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

func (h *StaticHandler) notFound(w http.ResponseWriter, r *http.Request) {
	page, err := os.ReadFile(filepath.Join(h.staticDir, notFoundPage))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		w.Write(page)
	}
}
