package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/auth"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/authz"
)

type ctxKey int

const authCtxKey ctxKey = 0

const sessionCookie = "token"

// CallerFrom returns the authenticated caller placed by RequireAuth.
func CallerFrom(ctx context.Context) (authz.AuthContext, bool) {
	c, ok := ctx.Value(authCtxKey).(authz.AuthContext)
	return c, ok
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth verifies the session token from the Authorization header or
// the token cookie and threads the AuthContext through the request context.
type RequireAuth struct {
	Auth *auth.Service
}

func (m RequireAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, Envelope{Success: false, Error: "token requerido"})
			return
		}
		claims, err := m.Auth.VerifyToken(token)
		if err != nil {
			writeJSON(w, statusOf(apperr.KindUnauthorized), Envelope{Success: false, Error: apperr.ClientMessage(err)})
			return
		}
		ctx := context.WithValue(r.Context(), authCtxKey, claims.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
