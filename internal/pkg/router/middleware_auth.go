package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/jwt"
)

const msgUnauthorized = "Unauthorized"

func bearerToken(r *http.Request) string {
	p := strings.Fields(r.Header.Get("Authorization"))
	if len(p) != 2 || !strings.EqualFold(p[0], "Bearer") {
		return ""
	}
	return p[1]
}

// middlewareAuthentication verifies the bearer token on every non-public
// route. Expired, forged and missing tokens get the same 401.
func middlewareAuthentication(verifier AccessVerifier, public map[string]map[string]struct{}) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skip := public[r.Method][matchedRoutePath(r)]; skip {
				next.ServeHTTP(w, r)
				return
			}

			token := bearerToken(r)
			if token == "" || verifier == nil {
				writeJSON(w, errorResponse{Message: msgUnauthorized}, http.StatusUnauthorized)
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				slog.DebugContext(r.Context(), "access token rejected", "error", err)
				writeJSON(w, errorResponse{Message: msgUnauthorized}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(r.Context(), claims)))
		})
	}
}
