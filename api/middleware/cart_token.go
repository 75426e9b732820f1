package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CartTokenHeader carries the opaque token identifying a guest cart.
const CartTokenHeader = "X-Cart-Token"

type cartTokenKey struct{}

// CartToken resolves the client's cart token, minting one when the request
// arrives without it. The token (new or existing) is echoed on the response
// so the storefront can persist it.
func CartToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(CartTokenHeader))
			if token == "" {
				token = uuid.NewString()
			}

			w.Header().Set(CartTokenHeader, token)
			ctx := context.WithValue(r.Context(), cartTokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartTokenFromContext returns the resolved cart token, or "" outside the
// CartToken middleware.
func CartTokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(cartTokenKey{}).(string); ok {
		return token
	}
	return ""
}
