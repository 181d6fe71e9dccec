package middleware

import (
	"net/http"
)

// NoStore marks every API, metrics and websocket handshake response as
// uncacheable. Event listings and stats change on each ingest, so no proxy or
// browser may serve them from cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, max-age=0")
		h.Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}
