package grants

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"gnap-as/internal/domain/clients"
	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/domain/resources"
	"gnap-as/internal/middleware"
	"gnap-as/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/grant", createGrantHandler(svc))

	r.Route("/grant/{grantID}", func(gr chi.Router) {
		gr.Get("/", continueGrantHandler(svc))
		gr.Post("/", continueGrantHandler(svc))
		gr.Put("/status", updateStatusHandler(svc))
	})
}

// grantRequest es el cuerpo de POST /grant.
type grantRequest struct {
	Client       *clients.Candidate            `json:"client,omitempty"`
	Access       []resources.Access            `json:"access,omitempty"`
	Interact     *interactions.InteractRequest `json:"interact,omitempty"`
	State        json.RawMessage               `json:"state,omitempty"`
	Capabilities []string                      `json:"capabilities,omitempty"`
}

type statusResponse struct {
	InstanceID string `json:"instance_id"`
	Status     Status `json:"status"`
}

// createGrantHandler godoc
// @Summary  Request a grant
// @Tags     grant
// @Accept   json
// @Produce  json
// @Param    Client-Assertion header string false "Signed client assertion (JWS)"
// @Param    body body grantRequest true "GNAP grant request"
// @Success  201 {object} Response
// @Failure  400,401 {object} map[string]string
// @Router   /grant [post]
func createGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		in := Input{
			Client:    req.Client,
			Assertion: middleware.GetAssertion(r.Context()),
			Access:    req.Access,
			State:     stateString(req.State),
		}
		if req.Interact != nil {
			ir := req.Interact.ToRequest()
			in.Interact = &ir
		}

		resp, err := svc.ProcessGrantRequest(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, resp)
	}
}

// continueGrantHandler godoc
// @Summary  Continue (poll) a grant
// @Tags     grant
// @Produce  json
// @Param    grantID path string true "Grant ID"
// @Param    Authorization header string true "GNAP <continuation token>"
// @Success  200 {object} Response
// @Failure  400,401,404 {object} map[string]string
// @Router   /grant/{grantID} [get]
// @Router   /grant/{grantID} [post]
func continueGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := middleware.GetToken(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "request_denied")
			return
		}

		resp, err := svc.ProcessContinuation(r.Context(), chi.URLParam(r, "grantID"), token)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// updateStatusHandler godoc
// @Summary  Overwrite a grant status
// @Tags     grant
// @Produce  json
// @Param    grantID path string true "Grant ID"
// @Param    status query string true "New status (case-insensitive)"
// @Param    Authorization header string true "GNAP <continuation token>"
// @Success  200 {object} statusResponse
// @Failure  400,401,404,409 {object} map[string]string
// @Router   /grant/{grantID}/status [put]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		grantID := chi.URLParam(r, "grantID")

		token, ok := middleware.GetToken(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "request_denied")
			return
		}
		if err := svc.CheckContinuation(grantID, token); err != nil {
			writeServiceError(w, r, err)
			return
		}

		status, ok := ParseStatus(r.URL.Query().Get("status"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		g, err := svc.UpdateGrantStatus(r.Context(), grantID, status)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, statusResponse{InstanceID: g.ID, Status: g.Status})
	}
}

// stateString guarda el JSON del cliente tal cual (null => vacío).
func stateString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidInteraction):
		writeError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAuthenticationFailed):
		writeError(w, http.StatusUnauthorized, "request_denied")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, ErrExpired):
		writeError(w, http.StatusBadRequest, "expired")
	case errors.Is(err, ErrConsentDenied):
		writeError(w, http.StatusForbidden, "user_denied")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		logger.FromContext(r.Context(), nil).Error("grant request failed", map[string]any{"err": err})
		writeError(w, http.StatusInternalServerError, "internal")
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
