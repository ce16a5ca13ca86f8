package tokens

import (
	"crypto/rand"
	"errors"
	"fmt"
)

// KeyProvider entrega la clave simétrica con la que se firman continuation y
// access tokens. Inmutable una vez construida.
type KeyProvider interface {
	SigningKey() []byte
}

type staticKey struct {
	key []byte
}

func (k staticKey) SigningKey() []byte { return k.key }

// NewEphemeralKey genera 32 bytes aleatorios. La clave vive lo que vive el
// proceso: al reiniciar, todos los tokens emitidos dejan de validar.
func NewEphemeralKey() (KeyProvider, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("tokens: generate signing key: %w", err)
	}
	return staticKey{key: b}, nil
}

// NewStaticKey usa una clave fija (tests).
func NewStaticKey(key []byte) (KeyProvider, error) {
	if len(key) < 32 {
		return nil, errors.New("tokens: signing key must be at least 32 bytes")
	}
	cp := make([]byte, len(key))
	copy(cp, key)
	return staticKey{key: cp}, nil
}
