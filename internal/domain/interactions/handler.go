package interactions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gnap-as/internal/domain/resources"
	"gnap-as/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

var (
	// ErrRejected: la interacción no valida contra el grant (id, vencimiento o nonce).
	ErrRejected = errors.New("interaction rejected")
	// ErrDenied: el usuario no dio consentimiento.
	ErrDenied = errors.New("consent denied")
	// ErrConflict: el grant cambió en paralelo.
	ErrConflict = errors.New("conflict")
)

// GrantView es lo que las páginas de interacción necesitan de un grant.
type GrantView struct {
	ID         string
	Status     string
	ClientName string
	Access     []resources.Access
}

type FinishInput struct {
	GrantID       string
	InteractionID string
	Nonce         string
	Approved      bool
	UserID        string
}

type FinishResult struct {
	GrantID     string
	Status      string
	RedirectURI string // vacío si el grant no tiene redirect
}

// GrantFlow evita importar el paquete grants (rompe ciclos).
// Los errores deben ser ErrNotFound, ErrInvalidInput, ErrRejected, ErrDenied o ErrConflict.
type GrantFlow interface {
	Lookup(ctx context.Context, grantID string) (GrantView, error)
	FinishInteraction(ctx context.Context, in FinishInput) (FinishResult, error)
}

func RegisterRoutes(r chi.Router, svc *Service, flow GrantFlow) {
	r.Route("/interact", func(ir chi.Router) {
		ir.Get("/redirect/{grantID}", redirectHandler(svc, flow))
		ir.Get("/app/{grantID}", appHandler(svc, flow))
		ir.Get("/user-code/{grantID}", userCodePageHandler(svc, flow))
		ir.Post("/user-code", userCodeSubmitHandler(svc))
		ir.Post("/consent/{grantID}", consentHandler(flow))
		ir.Get("/finish/{grantID}", finishHandler(flow))
	})
}

type interactionView struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type consentResponse struct {
	GrantID      string             `json:"grant_id"`
	Status       string             `json:"status"`
	ClientName   string             `json:"client_name,omitempty"`
	Access       []resources.Access `json:"access,omitempty"`
	Interactions []interactionView  `json:"interactions"`
}

type appLaunchResponse struct {
	GrantID    string `json:"grant_id"`
	ClientName string `json:"client_name"`
}

type userCodeResponse struct {
	GrantID       string `json:"grant_id"`
	InteractionID string `json:"interaction_id"`
	Code          string `json:"code,omitempty"`
	URI           string `json:"uri,omitempty"`
}

type finishResponse struct {
	GrantID string `json:"grant_id"`
	Status  string `json:"status"`
}

// redirectHandler godoc
// @Summary  Consent data for a redirect interaction
// @Tags     interact
// @Produce  json
// @Param    grantID path string true "Grant ID"
// @Success  200 {object} consentResponse
// @Failure  400,404 {object} map[string]string
// @Router   /interact/redirect/{grantID} [get]
func redirectHandler(svc *Service, flow GrantFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, active, ok := loadActive(w, r, svc, flow)
		if !ok {
			return
		}

		views := make([]interactionView, 0, len(active))
		for _, it := range active {
			views = append(views, interactionView{ID: it.ID, Type: it.Type, ExpiresAt: it.ExpiresAt})
		}

		writeJSON(w, http.StatusOK, consentResponse{
			GrantID:      g.ID,
			Status:       g.Status,
			ClientName:   g.ClientName,
			Access:       g.Access,
			Interactions: views,
		})
	}
}

func appHandler(svc *Service, flow GrantFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, _, ok := loadActive(w, r, svc, flow)
		if !ok {
			return
		}

		name := g.ClientName
		if name == "" {
			name = "Unknown Client"
		}
		writeJSON(w, http.StatusOK, appLaunchResponse{GrantID: g.ID, ClientName: name})
	}
}

func userCodePageHandler(svc *Service, flow GrantFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, active, ok := loadActive(w, r, svc, flow)
		if !ok {
			return
		}

		for _, it := range active {
			if it.Type == TypeUserCode {
				writeJSON(w, http.StatusOK, userCodeResponse{
					GrantID:       g.ID,
					InteractionID: it.ID,
					Code:          it.UserCode,
					URI:           it.URL,
				})
				return
			}
		}
		writeError(w, http.StatusBadRequest, "invalid_request")
	}
}

// userCodeSubmitHandler resuelve el código que tipeó el usuario a su grant.
func userCodeSubmitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		it, err := svc.LookupUserCode(r.Context(), r.PostForm.Get("code"))
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userCodeResponse{GrantID: it.GrantID, InteractionID: it.ID})
	}
}

// consentHandler godoc
// @Summary  Submit user consent for a grant
// @Tags     interact
// @Accept   x-www-form-urlencoded
// @Produce  json
// @Param    grantID path string true "Grant ID"
// @Param    approved formData bool true "Consent decision"
// @Param    interaction_id formData string true "Interaction ID"
// @Param    nonce formData string false "Interaction nonce"
// @Param    user_id formData string false "Resource owner"
// @Success  200 {object} finishResponse
// @Success  303
// @Failure  400,403,404 {object} map[string]string
// @Router   /interact/consent/{grantID} [post]
func consentHandler(flow GrantFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		approved, err := strconv.ParseBool(strings.TrimSpace(r.PostForm.Get("approved")))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request")
			return
		}

		res, err := flow.FinishInteraction(r.Context(), FinishInput{
			GrantID:       chi.URLParam(r, "grantID"),
			InteractionID: r.PostForm.Get("interaction_id"),
			Nonce:         r.PostForm.Get("nonce"),
			Approved:      approved,
			UserID:        strings.TrimSpace(r.PostForm.Get("user_id")),
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeFinish(w, r, res)
	}
}

func finishHandler(flow GrantFlow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		res, err := flow.FinishInteraction(r.Context(), FinishInput{
			GrantID:       chi.URLParam(r, "grantID"),
			InteractionID: q.Get("interact_ref"),
			Nonce:         q.Get("nonce"),
			Approved:      true,
		})
		if err != nil {
			writeFlowError(w, r, err)
			return
		}
		writeFinish(w, r, res)
	}
}

func loadActive(w http.ResponseWriter, r *http.Request, svc *Service, flow GrantFlow) (GrantView, []Interaction, bool) {
	grantID := chi.URLParam(r, "grantID")

	g, err := flow.Lookup(r.Context(), grantID)
	if err != nil {
		writeFlowError(w, r, err)
		return GrantView{}, nil, false
	}

	active, err := svc.FindActiveInteractions(r.Context(), g.ID)
	if err != nil {
		writeFlowError(w, r, err)
		return GrantView{}, nil, false
	}
	if len(active) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return GrantView{}, nil, false
	}
	return g, active, true
}

func writeFinish(w http.ResponseWriter, r *http.Request, res FinishResult) {
	if res.RedirectURI != "" {
		http.Redirect(w, r, res.RedirectURI, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, finishResponse{GrantID: res.GrantID, Status: res.Status})
}

func writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrRejected):
		writeError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, ErrDenied):
		writeError(w, http.StatusForbidden, "user_denied")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	default:
		logger.FromContext(r.Context(), nil).Error("interaction request failed", map[string]any{"err": err})
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
