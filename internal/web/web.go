// Package web serves the landing page and its static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed views/index.html public
var assets embed.FS

// RegisterRoutes wires the landing page at / and assets under /public/.
func RegisterRoutes(mux *http.ServeMux) {
	public, err := fs.Sub(assets, "public")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /public/", http.StripPrefix("/public/", http.FileServerFS(public)))
	mux.HandleFunc("GET /{$}", index)
}

func index(w http.ResponseWriter, r *http.Request) {
	page, err := assets.ReadFile("views/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}
