package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/burnick/demoapp-sub000/internal/http/errors"
	"github.com/burnick/demoapp-sub000/internal/token"
)

// RequireAuth validates Authorization: Bearer <JWT> and stores the subject
// in the context. Missing or invalid tokens get a 401.
func RequireAuth(issuer *token.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token", error_description="missing bearer token"`)
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := issuer.ParseAccess(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithUserID(r.Context(), claims.Subject)
			ctx = WithEmail(ctx, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
