package middleware

import (
	"net/http"
	"strings"

	"github.com/nkiryanov/gym/internal/apperrors"
	"github.com/nkiryanov/gym/internal/handlers/render"
)

// muxErrorWriter replaces plain text 404 and 405 replies of http.ServeMux with JSON ones
type muxErrorWriter struct {
	http.ResponseWriter
	r        *http.Request
	replaced bool
}

func (w *muxErrorWriter) WriteHeader(code int) {
	isText := strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain")

	if !isText || (code != http.StatusNotFound && code != http.StatusMethodNotAllowed) {
		w.ResponseWriter.WriteHeader(code)
		return
	}

	w.replaced = true
	w.Header().Del("X-Content-Type-Options")

	var err error
	if code == http.StatusMethodNotAllowed {
		err = apperrors.MethodNotSupported(w.r.Method)
	} else {
		err = apperrors.EntityNotFound("No endpoint %s %s", w.r.Method, w.r.URL.Path)
	}
	render.Error(w.ResponseWriter, err)
}

func (w *muxErrorWriter) Write(p []byte) (int, error) {
	if w.replaced {
		return len(p), nil
	}
	return w.ResponseWriter.Write(p)
}

func (w *muxErrorWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// JSONErrors makes routing failures look like every other API error
func JSONErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&muxErrorWriter{ResponseWriter: w, r: r}, r)
	})
}
