package interactions

import (
	"strings"
	"time"
)

type Type string

const (
	TypeRedirect    Type = "REDIRECT"
	TypeApp         Type = "APP"
	TypeUserCode    Type = "USER_CODE"
	TypeUserCodeURI Type = "USER_CODE_URI"
)

type HashMethod string

const (
	HashSHA256 HashMethod = "sha-256"
	HashSHA384 HashMethod = "sha-384"
	HashSHA512 HashMethod = "sha-512"
)

// ParseHashMethod acepta sha-256/384/512 (y sha256, sin guion). Vacío => sha-256.
func ParseHashMethod(s string) (HashMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sha-256", "sha256":
		return HashSHA256, true
	case "sha-384", "sha384":
		return HashSHA384, true
	case "sha-512", "sha512":
		return HashSHA512, true
	default:
		return "", false
	}
}

type Interaction struct {
	ID      string
	GrantID string

	Type Type
	URL  string

	Nonce      string
	HashMethod HashMethod // compartido por todo el batch del grant

	// UserCode solo para TypeUserCode.
	UserCode string

	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired: vencida si expiresAt <= now.
func (i Interaction) Expired(now time.Time) bool {
	return !i.ExpiresAt.After(now)
}

// -------------------------
// Modos (variante cerrada)
// -------------------------

// Mode es uno de los canales de interacción que el cliente puede pedir.
type Mode interface {
	Type() Type
	isMode()
}

type RedirectMode struct {
	URI   string
	Nonce string
}

type AppMode struct {
	URI   string
	Nonce string
}

type UserCodeMode struct{}

type UserCodeURIMode struct {
	URI string
}

func (RedirectMode) Type() Type    { return TypeRedirect }
func (AppMode) Type() Type         { return TypeApp }
func (UserCodeMode) Type() Type    { return TypeUserCode }
func (UserCodeURIMode) Type() Type { return TypeUserCodeURI }

func (RedirectMode) isMode()    {}
func (AppMode) isMode()         {}
func (UserCodeMode) isMode()    {}
func (UserCodeURIMode) isMode() {}

// Request es el bloque "interact" ya decodificado. Finish es el método de hash
// pedido para el callback de fin; vacío significa sin callback.
type Request struct {
	Modes  []Mode
	Finish string
}

// RedirectURI devuelve la URI del primer modo redirect, si lo hay.
func (r Request) RedirectURI() string {
	for _, m := range r.Modes {
		if rm, ok := m.(RedirectMode); ok {
			return rm.URI
		}
	}
	return ""
}

// -------------------------
// Proyección a wire GNAP
// -------------------------

type UserCode struct {
	Code string `json:"code,omitempty"`
	URI  string `json:"uri,omitempty"`
}

type FinishDescriptor struct {
	URI    string `json:"uri,omitempty"`
	Method string `json:"method,omitempty"`
}

// Summary es el bloque "interact" de la respuesta.
type Summary struct {
	Redirect string            `json:"redirect,omitempty"`
	App      string            `json:"app,omitempty"`
	UserCode *UserCode         `json:"user_code,omitempty"`
	Finish   *FinishDescriptor `json:"finish,omitempty"`
}

func (s Summary) Empty() bool {
	return s.Redirect == "" && s.App == "" && s.UserCode == nil && s.Finish == nil
}

// -------------------------
// Wire de entrada
// -------------------------

type ModeURI struct {
	URI   string `json:"uri,omitempty"`
	Nonce string `json:"nonce,omitempty"`
}

// InteractRequest es el bloque "interact" tal como llega en el JSON del grant.
type InteractRequest struct {
	Redirect    *ModeURI `json:"redirect,omitempty"`
	App         *ModeURI `json:"app,omitempty"`
	UserCode    bool     `json:"user_code,omitempty"`
	UserCodeURI string   `json:"user_code_uri,omitempty"`
	Finish      string   `json:"finish,omitempty"`
}

// ToRequest arma la variante cerrada de modos en orden fijo.
func (in InteractRequest) ToRequest() Request {
	req := Request{Finish: strings.TrimSpace(in.Finish)}
	if in.Redirect != nil {
		req.Modes = append(req.Modes, RedirectMode{URI: strings.TrimSpace(in.Redirect.URI), Nonce: in.Redirect.Nonce})
	}
	if in.App != nil {
		req.Modes = append(req.Modes, AppMode{URI: strings.TrimSpace(in.App.URI), Nonce: in.App.Nonce})
	}
	if in.UserCode {
		req.Modes = append(req.Modes, UserCodeMode{})
	}
	if uri := strings.TrimSpace(in.UserCodeURI); uri != "" {
		req.Modes = append(req.Modes, UserCodeURIMode{URI: uri})
	}
	return req
}
