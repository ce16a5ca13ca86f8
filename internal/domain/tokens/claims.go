package tokens

import (
	"gnap-as/internal/domain/resources"

	"github.com/golang-jwt/jwt/v5"
)

const TokenTypeContinuation = "continuation"

// ContinuationClaims: sub = grant id.
type ContinuationClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// AccessClaim es un item del claim "access". A diferencia de resources.Access,
// no repite el resource server (ya va en aud).
type AccessClaim struct {
	Type      string   `json:"type"`
	Actions   []string `json:"actions,omitempty"`
	Locations []string `json:"locations,omitempty"`
	DataTypes []string `json:"datatypes,omitempty"`
}

// AccessClaims: sub = user id (si hay), aud = resource server, jti = token id.
type AccessClaims struct {
	jwt.RegisteredClaims
	GrantID  string        `json:"grant_id"`
	ClientID string        `json:"client_id,omitempty"`
	Access   []AccessClaim `json:"access"`
}

func toAccessClaims(in []resources.Resource) []AccessClaim {
	out := make([]AccessClaim, 0, len(in))
	for _, r := range in {
		out = append(out, AccessClaim{
			Type:      r.Type,
			Actions:   r.Actions,
			Locations: r.Locations,
			DataTypes: r.DataTypes,
		})
	}
	return out
}
