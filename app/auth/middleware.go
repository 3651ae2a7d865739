// Package auth guards the mutating catalog routes with a shared bearer token.
package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fishingindustry/catalog/app/api"
)

// RequireToken rejects requests whose Authorization header does not carry
// token as a bearer credential. With an empty token every request is
// refused with 503, so writes stay closed until ADMIN_TOKEN is set.
func RequireToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	if token == "" {
		logger.Warn("ADMIN_TOKEN is not set, write endpoints are disabled")
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				api.WriteError(w, http.StatusServiceUnavailable, "Write access is not configured")
			})
		}
	}
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearer(r)
			if !ok || subtle.ConstantTimeCompare([]byte(got), expected) != 1 {
				logger.Warn("unauthorized request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
				w.Header().Set("WWW-Authenticate", `Bearer realm="catalog"`)
				api.WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	scheme, credential, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(credential), true
}
