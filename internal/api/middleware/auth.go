package middleware

import (
	"crypto/subtle"
	"net/http"

	"codetrack/internal/common"
)

// RequireAPIKey guards the admin surface with a static key in the
// X-API-Key header. An unconfigured key locks the surface entirely
// rather than leaving it open.
func RequireAPIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				common.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
