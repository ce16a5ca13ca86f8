package tokens

import (
	"time"

	"gnap-as/internal/domain/resources"
)

const AccessTypeBearer = "bearer"

type AccessToken struct {
	ID      string
	GrantID string

	Value      string // JWT firmado
	AccessType string

	// ResourceServer es la clave del grupo ("default" si los recursos no traían server).
	ResourceServer string

	ClientID string
	Subject  string

	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	// No persistidos
	Resources []resources.Resource
	Label     string
}

func (t AccessToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// ExpiresIn en segundos, nunca negativo.
func (t AccessToken) ExpiresIn(now time.Time) int64 {
	d := t.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// GrantInfo es lo que el motor de tokens necesita saber del grant.
type GrantInfo struct {
	ID       string
	ClientID string
	UserID   string
}

// Response es un elemento de "access_token" en la respuesta del grant.
type Response struct {
	Value     string             `json:"value"`
	Label     string             `json:"label,omitempty"`
	Access    []resources.Access `json:"access,omitempty"`
	ExpiresIn int64              `json:"expires_in,omitempty"`
}

func (t AccessToken) ToResponse(now time.Time) Response {
	return Response{
		Value:     t.Value,
		Label:     t.Label,
		Access:    resources.ToAccessList(t.Resources),
		ExpiresIn: t.ExpiresIn(now),
	}
}

// Introspection es el resultado de introspección. Inactivo => solo active=false.
type Introspection struct {
	Active         bool               `json:"active"`
	GrantID        string             `json:"grant_id,omitempty"`
	ClientID       string             `json:"client_id,omitempty"`
	Subject        string             `json:"sub,omitempty"`
	IssuedAt       int64              `json:"iat,omitempty"`
	ExpiresIn      int64              `json:"expires_in,omitempty"`
	ResourceServer string             `json:"resource_server,omitempty"`
	Access         []resources.Access `json:"access,omitempty"`
}
