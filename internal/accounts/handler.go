package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/paydue/backend/internal/middleware"
	"github.com/paydue/backend/internal/models"
)

type SignupRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordUpdateRequest struct {
	OldPassword  string `json:"oldPassword"`
	NewPassword  string `json:"newPassword"`
	NewPassword2 string `json:"newPassword2"`
}

// Sessions is the slice of the session bridge the auth handlers use.
type Sessions interface {
	Create(ctx context.Context, acc *models.Account) (*models.Session, error)
	Delete(ctx context.Context, token uuid.UUID) error
	IssueCSRF(token uuid.UUID) (string, error)
}

type Handler struct {
	svc      Service
	sessions Sessions
	log      *slog.Logger
}

func NewHandler(svc Service, sessions Sessions, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, sessions: sessions, log: log}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Username == "" || req.Password == "" || req.Password2 == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}
	if req.Password != req.Password2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Passwords do not match"})
		return
	}

	acc, err := h.svc.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid username"})
		case errors.Is(err, ErrDuplicateUsername):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username already exists"})
		default:
			h.log.Error("signup failed", "error", err)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
		}
		return
	}

	if !h.startSession(w, r, acc) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/display"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}

	acc, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Error("login failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
		return
	}
	if acc == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Wrong username or password"})
		return
	}

	if !h.startSession(w, r, acc) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/display"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil {
		if err := h.sessions.Delete(r.Context(), sess.Token); err != nil {
			h.log.Error("session delete failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/"})
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req PasswordUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" || req.NewPassword2 == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}
	if req.NewPassword != req.NewPassword2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Passwords do not match"})
		return
	}

	acc, err := h.svc.Authenticate(r.Context(), sess.Username, req.OldPassword)
	if err != nil {
		h.log.Error("password check failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
		return
	}
	if acc == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Wrong password"})
		return
	}

	updated, err := h.svc.UpdatePassword(r.Context(), acc.ID, req.NewPassword)
	if err != nil {
		h.log.Error("password update failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
		return
	}
	if updated == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account does not exist"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password Updated"})
}

// CSRFToken hands the client a one-time token bound to its session, for use
// on mutating requests.
func (h *Handler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	tok, err := h.sessions.IssueCSRF(sess.Token)
	if err != nil {
		h.log.Error("csrf token issue failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
}

// startSession creates the session row and sets the cookie. Writes the
// error response itself and returns false on failure.
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, acc *models.Account) bool {
	sess, err := h.sessions.Create(r.Context(), acc)
	if err != nil {
		h.log.Error("session create failed", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token.String(),
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
