package router

import (
	"net/http"

	"github.com/paydue/backend/internal/accounts"
	"github.com/paydue/backend/internal/middleware"
	"github.com/paydue/backend/internal/payments"
)

// New returns the API handler under /api/v1. The caller wraps it with
// middleware.SessionAuth so the login gates here see the resolved session.
func New(authHandler *accounts.Handler, payHandler *payments.Handler, csrf middleware.CSRFVerifier) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	guard := middleware.CSRF(csrf)
	loggedIn := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireLogin(guard(h))
	}
	loggedOut := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireLogout(h)
	}

	mux.Handle(base+"/auth/signup", loggedOut(methodPOST(authHandler.Signup)))
	mux.Handle(base+"/auth/login", loggedOut(methodPOST(authHandler.Login)))
	mux.Handle(base+"/auth/logout", middleware.RequireLogin(methodGET(authHandler.Logout)))
	mux.Handle(base+"/auth/password", loggedIn(methodPUT(authHandler.UpdatePassword)))
	mux.Handle(base+"/auth/token", middleware.RequireLogin(methodGET(authHandler.CSRFToken)))

	mux.Handle(base+"/payments", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			payHandler.GetAll(w, r)
		case http.MethodPost:
			payHandler.Create(w, r)
		case http.MethodPut:
			payHandler.Update(w, r)
		case http.MethodDelete:
			payHandler.Delete(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))
	mux.Handle(base+"/payments/search", middleware.RequireLogin(methodGET(payHandler.Search)))
	mux.Handle(base+"/payments/filter", middleware.RequireLogin(methodGET(payHandler.Filter)))
	mux.Handle(base+"/payments/pending", loggedIn(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			payHandler.GetPending(w, r)
		case http.MethodPost:
			payHandler.CreatePending(w, r)
		case http.MethodDelete:
			payHandler.DeletePending(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}))

	return mux
}

func methodGET(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func methodPOST(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func methodPUT(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}
