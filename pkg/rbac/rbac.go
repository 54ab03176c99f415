// Package rbac provides role-based access control on top of the Auth Gate.
package rbac

import (
	"net/http"

	"github.com/turnosapp/turnos/pkg/auth"
	"github.com/turnosapp/turnos/pkg/response"
)

// HasRole allows the request only when the caller's role is in roles.
// Authenticate must run first; a request without identity is a 401.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromCtx(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}
			if _, permitted := allowed[id.Role]; !permitted {
				response.Forbidden(w, "Access denied for role "+id.Role)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
