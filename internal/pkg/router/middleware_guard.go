package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
	"github.com/ItsCrotix/NOR-Backend/internal/pkg/rbac"
)

const msgForbidden = "Forbidden"

// guard builds a middleware that lets the request through when allow
// returns true for the caller's claims. Requests without claims get 401.
func guard(allow func(r *http.Request, claims *jwt.Claims) bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := jwt.GetAuth(r.Context())
			if claims == nil {
				writeJSON(w, errorResponse{Message: msgUnauthorized}, http.StatusUnauthorized)
				return
			}

			if !allow(r, claims) {
				writeJSON(w, errorResponse{Message: msgForbidden}, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole admits callers whose role ranks at least min.
func RequireRole(min rbac.Role) Middleware {
	return guard(func(_ *http.Request, claims *jwt.Claims) bool {
		return claims.Role.AtLeast(min)
	})
}

// RequireSelfOrAdmin admits the identity named by the path parameter param,
// and any admin.
func RequireSelfOrAdmin(param string) Middleware {
	return guard(func(r *http.Request, claims *jwt.Claims) bool {
		return claims.Role.AtLeast(rbac.RoleAdmin) || isSelf(r, claims, param)
	})
}

// RequireSelf admits only the identity named by the path parameter param.
func RequireSelf(param string) Middleware {
	return guard(func(r *http.Request, claims *jwt.Claims) bool {
		return isSelf(r, claims, param)
	})
}

func isSelf(r *http.Request, claims *jwt.Claims, param string) bool {
	id := httprouter.ParamsFromContext(r.Context()).ByName(param)
	return id != "" && id == claims.UserID
}
