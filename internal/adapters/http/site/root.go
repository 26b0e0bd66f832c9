// Package site serves the single-page app shell.
package site

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// Error constants.
var (
	ErrNilMux  = errors.New("site: mux is nil")
	ErrNoIndex = errors.New("site: index.html missing from app shell")
)

const (
	indexFile   = "index.html"
	assetPrefix = "/assets/"
)

// Register mounts the app shell at the root of mux.
func Register(_ context.Context, mux *http.ServeMux) error {
	if mux == nil {
		return ErrNilMux
	}
	h, err := NewRootHandler(FS())
	if err != nil {
		return err
	}
	mux.Handle("/", h)
	return nil
}

// RootHandler serves static files from the shell and answers every other GET
// with index.html so the client-side router can resolve the path.
type RootHandler struct {
	files fs.FS
	index []byte
	fs    http.Handler
}

// NewRootHandler creates a root handler over files, which must contain index.html.
func NewRootHandler(files fs.FS) (*RootHandler, error) {
	index, err := fs.ReadFile(files, indexFile)
	if err != nil {
		return nil, errors.Join(ErrNoIndex, err)
	}
	return &RootHandler{
		files: files,
		index: index,
		fs:    http.FileServer(http.FS(files)),
	}, nil
}

func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name != "" && name != indexFile {
		if info, err := fs.Stat(h.files, name); err == nil && !info.IsDir() {
			h.fs.ServeHTTP(w, r)
			return
		}
		// Missing assets are real 404s; only navigations fall back to the shell.
		if strings.HasPrefix(r.URL.Path, assetPrefix) || path.Ext(name) != "" {
			http.NotFound(w, r)
			return
		}
	}
	h.serveIndex(w)
}

func (h *RootHandler) serveIndex(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(h.index)
}
