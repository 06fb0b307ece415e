package web

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// FileServer serves static files and falls back to index.html for extensionless paths so client
// routes resolve. Missing files with an extension are 404.
type FileServer struct {
	files      fs.FS
	fileServer http.Handler
	log        zerolog.Logger
}

// NewFileServer serves files from fsys.
func NewFileServer(fsys fs.FS, log zerolog.Logger) *FileServer {
	return &FileServer{
		files:      fsys,
		fileServer: http.FileServer(http.FS(fsys)),
		log:        log,
	}
}

// Handler returns a file server for staticDir when it is a directory, otherwise for the
// embedded assets.
func Handler(staticDir string, log zerolog.Logger) http.Handler {
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			log.Debug().Str("dir", staticDir).Msg("serving static assets from disk")
			return NewFileServer(os.DirFS(staticDir), log)
		}
		log.Warn().Str("dir", staticDir).Msg("static dir not found, using embedded assets")
	}

	embedded, err := StaticFS()
	if err != nil {
		log.Error().Err(err).Msg("static assets unavailable")
		return http.NotFoundHandler()
	}
	return NewFileServer(embedded, log)
}

// ServeHTTP implements http.Handler.
func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name == "" {
		name = "."
	}

	f, err := s.files.Open(name)
	if err == nil {
		_ = f.Close()
		if strings.HasSuffix(name, ".html") || name == "." {
			setNoCache(w)
		}
		s.fileServer.ServeHTTP(w, r)
		return
	}
	if !errors.Is(err, fs.ErrNotExist) {
		s.log.Error().Err(err).Str("path", name).Msg("file system open")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if path.Ext(name) != "" {
		http.NotFound(w, r)
		return
	}
	setNoCache(w)
	r2 := r.Clone(r.Context())
	r2.URL.Path = "/"
	s.fileServer.ServeHTTP(w, r2)
}

func setNoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
