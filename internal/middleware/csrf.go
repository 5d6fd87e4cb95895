package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// CSRFVerifier checks a client-supplied token against the session it claims
// to belong to.
type CSRFVerifier interface {
	VerifyCSRF(token string, sessionToken uuid.UUID) error
}

// CSRF rejects mutating requests whose X-CSRF-Token header does not verify
// against the caller's session. Run after SessionAuth and RequireLogin.
func CSRF(verifier CSRFVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}
			sess := SessionFromCtx(r.Context())
			if sess == nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"login required"}`, http.StatusUnauthorized)
				return
			}
			if err := verifier.VerifyCSRF(r.Header.Get("X-CSRF-Token"), sess.Token); err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"invalid csrf token"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
