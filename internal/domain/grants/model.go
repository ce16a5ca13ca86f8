package grants

import (
	"strings"
	"time"

	"gnap-as/internal/domain/clients"
	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/domain/resources"
	"gnap-as/internal/domain/tokens"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusApproved   Status = "APPROVED"
	StatusDenied     Status = "DENIED"
	StatusRevoked    Status = "REVOKED"
	StatusExpired    Status = "EXPIRED"
)

// ParseStatus no distingue mayúsculas.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusPending, StatusProcessing, StatusApproved, StatusDenied, StatusRevoked, StatusExpired:
		return st, true
	default:
		return "", false
	}
}

// Terminal: EXPIRED y REVOKED no vuelven a cambiar.
func (s Status) Terminal() bool {
	return s == StatusExpired || s == StatusRevoked
}

type GrantRequest struct {
	ID string // también es el instance_id externo

	ClientID string // vacío => grant anónimo
	Status   Status

	RedirectURI string
	State       string // opaco, tal cual llegó
	UserID      string // se liga en la interacción

	ExpiresAt time.Time

	// TokensIssuedAt marca que los access tokens ya se emitieron.
	TokensIssuedAt *time.Time

	// Version para locking optimista.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g GrantRequest) Expired(now time.Time) bool {
	return !g.ExpiresAt.After(now)
}

// Input es un grant request ya decodificado.
type Input struct {
	Client    *clients.Candidate
	Assertion string // Client-Assertion, opcional

	Access   []resources.Access
	Interact *interactions.Request
	State    string
}

// -------------------------
// Respuesta (wire GNAP)
// -------------------------

// DefaultWait es la espera sugerida entre polls, en segundos.
const DefaultWait = 5

type Continue struct {
	URI         string `json:"uri"`
	AccessToken string `json:"access_token"`
	Wait        int    `json:"wait,omitempty"`
}

type Response struct {
	InstanceID  string                `json:"instance_id"`
	Continue    *Continue             `json:"continue,omitempty"`
	Interact    *interactions.Summary `json:"interact,omitempty"`
	AccessToken []tokens.Response     `json:"access_token,omitempty"`
}
