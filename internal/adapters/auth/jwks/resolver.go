package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gnap-as/internal/platform/httpclient"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

var ErrKeyNotFound = errors.New("key id not found in jwks")

const jwksAccept = "application/jwk-set+json, application/json"

// Resolver implementa clients.KeyResolver bajando el JWKS publicado por el cliente.
type Resolver struct {
	http *httpclient.Client
}

func NewResolver(c *httpclient.Client) *Resolver {
	if c == nil {
		c = httpclient.New(0)
	}
	return &Resolver{http: c}
}

// ResolveKey devuelve la JWK con ese kid. Sin kid, solo vale un set de una clave.
func (r *Resolver) ResolveKey(ctx context.Context, jwksURI, keyID string) (json.RawMessage, error) {
	raw, err := r.http.Get(ctx, jwksURI, jwksAccept)
	if err != nil {
		return nil, fmt.Errorf("jwks: fetch: %w", err)
	}

	set, err := jwk.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("jwks: parse: %w", err)
	}

	var (
		key jwk.Key
		ok  bool
	)
	if kid := strings.TrimSpace(keyID); kid != "" {
		key, ok = set.LookupKeyID(kid)
	} else if set.Len() == 1 {
		key, ok = set.Key(0)
	}
	if !ok {
		return nil, ErrKeyNotFound
	}

	b, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("jwks: serialize key: %w", err)
	}
	return b, nil
}
