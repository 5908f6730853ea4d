package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest reads the token from the "token" query parameter, which browsers can set
// on a websocket URL, or from a standard "Bearer <token>" Authorization header.
func TokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
