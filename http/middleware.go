package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request with the status and size written.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type mountPrefixKey struct{}

// MountPrefix returns the prefix removed by StripMountPrefix, or "".
func MountPrefix(ctx context.Context) string {
	p, _ := ctx.Value(mountPrefixKey{}).(string)
	return p
}

// StripMountPrefix removes prefix from the request path before calling next,
// so a delegated application sees paths relative to its mount point. The
// remaining path always starts with a slash. The removed prefix is available
// through MountPrefix.
func StripMountPrefix(prefix string, next http.Handler) http.Handler {
	prefix = strings.TrimRight(prefix, "/")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, prefix)
		if !strings.HasPrefix(rest, "/") {
			rest = "/" + rest
		}

		r2 := r.Clone(context.WithValue(r.Context(), mountPrefixKey{}, MountPrefix(r.Context())+prefix))
		r2.URL.Path = rest
		if r.URL.RawPath != "" {
			rawRest := strings.TrimPrefix(r.URL.RawPath, prefix)
			if !strings.HasPrefix(rawRest, "/") {
				rawRest = "/" + rawRest
			}
			r2.URL.RawPath = rawRest
		}
		next.ServeHTTP(w, r2)
	})
}
