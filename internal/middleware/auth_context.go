package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	tokenKey     ctxKey = "gnap_token"
	assertionKey ctxKey = "client_assertion"
)

// AssertionHeader lleva la aserción firmada (JWT compacto) del cliente.
const AssertionHeader = "Client-Assertion"

// AuthContext:
// - Authorization "GNAP <token>" o "Bearer <token>" => guarda el token.
// - Client-Assertion => guarda la aserción.
// - No valida nada; los handlers deciden 401.
func AuthContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token := gnapToken(r.Header.Get("Authorization")); token != "" {
				ctx = context.WithValue(ctx, tokenKey, token)
			}
			if a := strings.TrimSpace(r.Header.Get(AssertionHeader)); a != "" {
				ctx = context.WithValue(ctx, assertionKey, a)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}

func GetAssertion(ctx context.Context) string {
	a, _ := ctx.Value(assertionKey).(string)
	return a
}

func gnapToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "GNAP") && !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
