package produto

import (
	"net/http"
	"strings"
)

// bearerToken extrai o token do header Authorization.
// Retorna ok=false quando o header está ausente ou não é do tipo Bearer.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, prefix)), true
}
