package middleware

import (
	"net/http"
	"strings"

	"github.com/turnosapp/turnos/pkg/auth"
	"github.com/turnosapp/turnos/pkg/logger"
	"github.com/turnosapp/turnos/pkg/response"
)

// Authenticate is the Auth Gate. It requires `Authorization: Bearer <token>`,
// verifies the token, resolves the user it names and attaches the resulting
// auth.Identity to the request context. Every failure is a 401.
func Authenticate(resolver auth.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			identity, err := resolver.ResolveIdentity(r.Context(), claims.UserID)
			if err != nil {
				logger.WithCtx(r.Context()).Warn("token user rejected", "user_id", claims.UserID, "error", err)
				response.Unauthorized(w, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
