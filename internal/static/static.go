package static

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"catalog-cms/internal/handler"

	"github.com/rs/zerolog"
)

const indexFile = "index.html"

var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".json": "application/json; charset=utf-8",
	".webp": "image/webp",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
}

// ContentType returns the response content type for a file extension
// (including the leading dot).
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Handler serves files below a public root directory.
type Handler struct {
	root   string
	logger zerolog.Logger
}

// NewHandler creates a static file handler rooted at root.
func NewHandler(root string, logger zerolog.Logger) (*Handler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve public directory %q: %w", root, err)
	}

	return &Handler{
		root:   abs,
		logger: logger.With().Str("handler", "static").Logger(),
	}, nil
}

// Root returns the absolute public root.
func (h *Handler) Root() string {
	return h.root
}

// Resolve maps a URL path to a file system path inside the root. ok is
// false when the cleaned path escapes the root.
func (h *Handler) Resolve(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(urlPath, "/")
	if urlPath == "/" {
		rel = indexFile
	}

	resolved := filepath.Join(h.root, filepath.Clean(filepath.FromSlash(rel)))
	if resolved != h.root && !strings.HasPrefix(resolved, h.root+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}

// ServeHTTP serves the file named by the request path. Directories serve
// their index.html. Anything that cannot be served, including paths outside
// the root, gets the same 404.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resolved, ok := h.Resolve(r.URL.Path)
	if !ok {
		h.logger.Warn().Str("path", r.URL.Path).Msg("path escapes public directory")
		handler.WriteNotFound(w)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			h.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("stat failed")
		}
		handler.WriteNotFound(w)
		return
	}

	if info.IsDir() {
		resolved = filepath.Join(resolved, indexFile)
	}

	h.serveFile(w, r, resolved)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	f, err := os.Open(name)
	if err != nil {
		handler.WriteNotFound(w)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		handler.WriteNotFound(w)
		return
	}

	w.Header().Set("Content-Type", ContentType(filepath.Ext(name)))
	http.ServeContent(w, r, filepath.Base(name), info.ModTime(), f)
}
