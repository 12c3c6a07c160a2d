package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"ProductCatalog/pkg/kit"
)

type ctxKey string

const claimsKey ctxKey = "claims"

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

// RequireRole admits requests carrying a valid bearer token with role. A nil
// maker disables the check.
func RequireRole(t *TokenMaker, role string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if t == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
				return
			}

			claims, err := t.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			if claims.Role != role {
				if log != nil {
					log.Warn("write denied", zap.String("subject", claims.Subject), zap.String("role", claims.Role))
				}
				kit.WriteError(w, r, http.StatusForbidden, "Forbidden", "role "+role+" required")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}
