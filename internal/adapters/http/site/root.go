// Package site serves the embedded documentation pages.
package site

import (
	"context"
	"net/http"
)

// Register attaches the documentation pages under /docs/ to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /docs/", http.StripPrefix("/docs", NewRootHandler()))
	mux.Handle("GET /docs", http.RedirectHandler("/docs/", http.StatusMovedPermanently))
}

// RootHandler serves the embedded documentation files.
type RootHandler struct {
	files http.Handler
}

// NewRootHandler creates a new root handler
func NewRootHandler() *RootHandler {
	return &RootHandler{files: http.FileServer(FS())}
}

// ServeHTTP serves the docs index for "/" and the pages below it.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.files.ServeHTTP(w, r)
}
