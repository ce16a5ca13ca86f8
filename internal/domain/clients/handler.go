package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gnap-as/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/clients", func(cr chi.Router) {
		cr.Post("/", registerClientHandler(svc))
		cr.Get("/{clientID}", getClientHandler(svc))
		cr.Get("/instance/{instanceID}", getClientByInstanceHandler(svc))

		cr.Post("/{clientID}/information", createInformationHandler(svc))
		cr.Get("/{clientID}/information", getInformationHandler(svc))
		cr.Put("/information/{infoID}", updateInformationHandler(svc))
		cr.Delete("/information/{infoID}", deleteInformationHandler(svc))
	})
}

type clientResponse struct {
	ID          string          `json:"id"`
	InstanceID  string          `json:"instance_id,omitempty"`
	DisplayName string          `json:"display_name,omitempty"`
	KeyID       string          `json:"kid,omitempty"`
	JWK         json.RawMessage `json:"jwk,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// registerClientHandler godoc
// @Summary  Register or update a client
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    body body Candidate true "Client instance"
// @Success  201 {object} clientResponse
// @Failure  400 {object} map[string]string
// @Router   /clients [post]
func registerClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Candidate
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if strings.TrimSpace(req.KeyID()) == "" && strings.TrimSpace(req.InstanceID) == "" {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		c, err := svc.Register(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toClientResponse(c))
	}
}

func getClientHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func getClientByInstanceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.FindByInstanceID(r.Context(), chi.URLParam(r, "instanceID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	}
}

func toClientResponse(c Client) clientResponse {
	out := clientResponse{
		ID:          c.ID,
		InstanceID:  c.InstanceID,
		DisplayName: c.DisplayName,
		KeyID:       c.KeyID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.KeyJWK != "" {
		out.JWK = json.RawMessage(c.KeyJWK)
	}
	return out
}

type informationRequest struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	LogoURI string `json:"logo_uri"`
}

type informationResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name,omitempty"`
	URI       string    `json:"uri,omitempty"`
	LogoURI   string    `json:"logo_uri,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createInformationHandler godoc
// @Summary  Create client display information
// @Tags     clients
// @Accept   json
// @Produce  json
// @Param    clientID path string true "Client ID"
// @Param    body body informationRequest true "Display information"
// @Success  201 {object} informationResponse
// @Failure  400,404 {object} map[string]string
// @Router   /clients/{clientID}/information [post]
func createInformationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req informationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		info, err := svc.CreateInformation(r.Context(), chi.URLParam(r, "clientID"), Information{
			Name:    req.Name,
			URI:     req.URI,
			LogoURI: req.LogoURI,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toInformationResponse(info))
	}
}

func getInformationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := svc.GetInformationByClient(r.Context(), chi.URLParam(r, "clientID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInformationResponse(info))
	}
}

func updateInformationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req informationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		info, err := svc.UpdateInformation(r.Context(), Information{
			ID:      chi.URLParam(r, "infoID"),
			Name:    req.Name,
			URI:     req.URI,
			LogoURI: req.LogoURI,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toInformationResponse(info))
	}
}

func deleteInformationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteInformation(r.Context(), chi.URLParam(r, "infoID")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toInformationResponse(info Information) informationResponse {
	return informationResponse{
		ID:        info.ID,
		ClientID:  info.ClientID,
		Name:      strings.TrimSpace(info.Name),
		URI:       info.URI,
		LogoURI:   info.LogoURI,
		CreatedAt: info.CreatedAt,
		UpdatedAt: info.UpdatedAt,
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	default:
		logger.FromContext(r.Context(), nil).Error("client request failed", map[string]any{"err": err})
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
