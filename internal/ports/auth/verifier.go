package auth

import "context"

// AssertionVerifier verifica una aserción (JWT compacto) contra la JWK
// guardada del cliente. Falla si el kid del header no coincide con keyID,
// si la familia de la clave no está soportada o si la firma no valida.
type AssertionVerifier interface {
	Verify(ctx context.Context, jwkJSON, assertion, keyID string) (Claims, error)
}
