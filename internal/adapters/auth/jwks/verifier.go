package jwks

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"gnap-as/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

var (
	ErrAssertionEmpty   = errors.New("assertion is empty")
	ErrInvalidKey       = errors.New("invalid client jwk")
	ErrUnsupportedKey   = errors.New("unsupported key family")
	ErrKeyIDMismatch    = errors.New("assertion kid does not match client key")
	ErrInvalidSignature = errors.New("assertion signature invalid")
)

var (
	rsaMethods     = []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	ecdsaMethods   = []string{"ES256", "ES384", "ES512"}
	ed25519Methods = []string{"EdDSA"}
)

// Verifier implementa auth.AssertionVerifier: la aserción es un JWT compacto
// firmado con la clave privada que corresponde a la JWK registrada.
type Verifier struct{}

func NewVerifier() *Verifier {
	return &Verifier{}
}

func (v *Verifier) Verify(ctx context.Context, jwkJSON, assertion, keyID string) (auth.Claims, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return auth.Claims{}, ErrAssertionEmpty
	}

	pub, methods, err := publicKey(jwkJSON)
	if err != nil {
		return auth.Claims{}, err
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(assertion, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid != keyID {
			return nil, ErrKeyIDMismatch
		}
		return pub, nil
	}, jwt.WithValidMethods(methods))
	if err != nil {
		if errors.Is(err, ErrKeyIDMismatch) {
			return auth.Claims{}, ErrKeyIDMismatch
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if !token.Valid {
		return auth.Claims{}, ErrInvalidSignature
	}

	return auth.Claims{
		KeyID:   keyID,
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}, nil
}

// publicKey parsea la JWK, se queda con la parte pública y devuelve los
// algoritmos aceptados para su familia.
func publicKey(jwkJSON string) (any, []string, error) {
	key, err := jwk.ParseKey([]byte(jwkJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	switch k := raw.(type) {
	case *rsa.PublicKey:
		return k, rsaMethods, nil
	case *rsa.PrivateKey:
		return &k.PublicKey, rsaMethods, nil
	case *ecdsa.PublicKey:
		return k, ecdsaMethods, nil
	case *ecdsa.PrivateKey:
		return &k.PublicKey, ecdsaMethods, nil
	case ed25519.PublicKey:
		return k, ed25519Methods, nil
	case ed25519.PrivateKey:
		return k.Public(), ed25519Methods, nil
	default:
		return nil, nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, raw)
	}
}
