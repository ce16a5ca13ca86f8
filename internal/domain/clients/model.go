package clients

import (
	"encoding/json"
	"time"
)

// Client es la identidad persistida de quien pide grants.
type Client struct {
	ID string

	InstanceID  string // opcional, correlaciona requests del mismo cliente lógico
	DisplayName string

	KeyID  string // único entre clientes
	KeyJWK string // JWK serializada (JSON compacto)

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Information es la info de display extendida del cliente.
type Information struct {
	ID       string
	ClientID string

	Name    string
	URI     string
	LogoURI string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Candidate es el bloque "client" que llega en un grant request.
type Candidate struct {
	InstanceID string   `json:"instance_id,omitempty"`
	Key        *Key     `json:"key,omitempty"`
	Display    *Display `json:"display,omitempty"`
}

type Key struct {
	KeyID   string          `json:"kid,omitempty"`
	Proof   string          `json:"proof,omitempty"`
	JWK     json.RawMessage `json:"jwk,omitempty"`
	JWKSURI string          `json:"jwks,omitempty"` // clave por referencia
}

type Display struct {
	Name    string `json:"name,omitempty"`
	URI     string `json:"uri,omitempty"`
	LogoURI string `json:"logo_uri,omitempty"`
}

func (c Candidate) KeyID() string {
	if c.Key == nil {
		return ""
	}
	return c.Key.KeyID
}
