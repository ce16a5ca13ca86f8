package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"gnap-as/internal/platform/logger"
)

// Recover reemplaza a chimw.Recoverer: loguea el panic con el logger del
// request y responde 500 con el mismo cuerpo de error que los handlers.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.FromContext(r.Context(), nil).Error("panic recovered", map[string]any{
				"panic": rec,
				"stack": string(debug.Stack()),
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal"})
		}()

		next.ServeHTTP(w, r)
	})
}
