package middleware

import "net/http"

// APIToken guards write routes with a bearer token. An empty token disables
// the check.
func APIToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "Non autorisé")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
