package middleware

import (
	"net/http"
	"time"

	"gnap-as/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger deja en el contexto un logger con el request_id de chi
// (va después de chimw.RequestID) y loguea cada request al terminar.
func RequestLogger(base logger.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = logger.Nop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := base.With(map[string]any{"request_id": chimw.GetReqID(r.Context())})

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), l)))

			l.Debug("http request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}
