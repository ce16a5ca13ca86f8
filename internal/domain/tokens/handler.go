package tokens

import (
	"encoding/json"
	"net/http"

	"gnap-as/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/token", func(tr chi.Router) {
		tr.Post("/introspect", introspectHandler(svc))
		tr.Post("/revoke", revokeHandler(svc))
	})
}

// introspectHandler godoc
// @Summary  Introspect an access token
// @Tags     token
// @Accept   x-www-form-urlencoded
// @Produce  json
// @Param    token formData string true "Access token value"
// @Success  200 {object} Introspection
// @Router   /token/introspect [post]
func introspectHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		out, err := svc.IntrospectToken(r.Context(), r.PostForm.Get("token"))
		if err != nil {
			logger.FromContext(r.Context(), nil).Error("introspection failed", map[string]any{"err": err})
			writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// revokeHandler godoc
// @Summary  Revoke an access token
// @Tags     token
// @Accept   x-www-form-urlencoded
// @Param    token formData string true "Access token value"
// @Success  200
// @Failure  404 {object} map[string]string
// @Router   /token/revoke [post]
func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		ok, err := svc.RevokeToken(r.Context(), r.PostForm.Get("token"))
		if err != nil {
			logger.FromContext(r.Context(), nil).Error("revocation failed", map[string]any{"err": err})
			writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		if !ok {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
