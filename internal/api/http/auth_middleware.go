package httpapi

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// operatorAuth checks bearer tokens against a bcrypt hash.
type operatorAuth struct {
	hash []byte
}

func newOperatorAuth(hash string) *operatorAuth {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil
	}
	return &operatorAuth{hash: []byte(hash)}
}

func (a *operatorAuth) verify(token string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(token)) == nil
}

// requireOperator rejects requests without a valid operator token. The
// X-Actor header, when present, names the operator for attribution.
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth != nil && !s.auth.verify(extractToken(r)) {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid operator token")
			return
		}
		actor := strings.TrimSpace(r.Header.Get("X-Actor"))
		if actor == "" {
			actor = "operator"
		}
		ctx := withOperator(r.Context(), &Operator{Name: actor})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// trustedCaller reports whether r carries a valid operator token. With auth
// disabled every caller is trusted.
func (s *Server) trustedCaller(r *http.Request) bool {
	return s.auth == nil || s.auth.verify(extractToken(r))
}

func extractToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	}
	return ""
}
