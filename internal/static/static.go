// Package static serves the browser client's files from a fixed root.
package static

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/nikhilbhutani/caloriediary/internal/apperr"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".js":   "application/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
}

// ContentType maps a file name to its content type by extension.
func ContentType(name string) string {
	if ct, ok := mimeTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Responder resolves request paths against an fs.FS root.
type Responder struct {
	root fs.FS
}

func New(root fs.FS) *Responder {
	return &Responder{root: root}
}

// Resolve maps a URL path to a name inside the root. "/" becomes
// "index.html". Paths that would leave the root are rejected.
func Resolve(urlPath string) (string, bool) {
	if urlPath == "" || urlPath == "/" {
		return "index.html", true
	}
	if strings.Contains(urlPath, "\\") || strings.ContainsRune(urlPath, 0) {
		return "", false
	}
	for _, seg := range strings.Split(urlPath, "/") {
		if seg == ".." {
			return "", false
		}
	}
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return "index.html", true
	}
	return name, fs.ValidPath(name)
}

// Read loads the file for urlPath. Missing or out-of-root paths return an
// error wrapping fs.ErrNotExist.
func (s *Responder) Read(urlPath string) ([]byte, string, error) {
	name, ok := Resolve(urlPath)
	if !ok {
		return nil, "", apperr.Filesystem("static", "path outside document root", fs.ErrNotExist)
	}
	data, err := fs.ReadFile(s.root, name)
	if err != nil {
		return nil, "", apperr.Filesystem("static", "read "+name, err)
	}
	return data, ContentType(name), nil
}

func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.Read(r.URL.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeText(w, http.StatusNotFound, "Not found")
			return
		}
		slog.ErrorContext(r.Context(), "static file read failed", "path", r.URL.Path, "error", err)
		writeText(w, http.StatusInternalServerError, "Server error")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(body))
}
