package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/paydue/backend/internal/models"
)

type contextKey string

const ctxSessionKey contextKey = "session"

// SessionCookie is the name of the session cookie.
const SessionCookie = "sid"

// SessionLoader resolves a cookie token to a live session. Expired or
// unknown tokens come back as (nil, nil).
type SessionLoader interface {
	Get(ctx context.Context, token uuid.UUID) (*models.Session, error)
}

// SessionAuth reads the session cookie and, when it resolves to a live
// session, puts the session into the request context. It never rejects the
// request itself; RequireLogin and RequireLogout decide that per route.
func SessionAuth(sessions SessionLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			token, err := uuid.Parse(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := sessions.Get(r.Context(), token)
			if err != nil || sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// SessionFromCtx returns the authenticated session or nil.
func SessionFromCtx(ctx context.Context) *models.Session {
	sess, _ := ctx.Value(ctxSessionKey).(*models.Session)
	return sess
}

// WithSession returns a context carrying the given session.
func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sess)
}

// RequireLogin rejects requests that carry no live session.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"login required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLogout short-circuits login/signup for callers that already have a
// session; the payload mirrors the redirect the client follows after login.
func RequireLogout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromCtx(r.Context()) != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"redirect":"/display"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
