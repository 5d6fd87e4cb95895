package payments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/paydue/backend/internal/middleware"
	"github.com/paydue/backend/internal/models"
	"github.com/paydue/backend/internal/query"
)

type PaymentRequest struct {
	Name     string   `json:"name"`
	Cost     *float64 `json:"cost"`
	DueDate  string   `json:"dueDate"`
	Priority string   `json:"priority"`
}

type NameRequest struct {
	Name string `json:"name"`
}

// Sessions is the slice of the session bridge the payment handlers use for
// the pending-edit slot.
type Sessions interface {
	SetPendingPayment(ctx context.Context, token uuid.UUID, pp *models.PendingPayment) error
	ClearPendingPayment(ctx context.Context, token uuid.UUID) error
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

// GetAll lists every payment for the authenticated owner.
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	docs, err := h.svc.FindAll(r.Context(), sess.AccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payload(docs)})
}

// Search returns the single named payment as a one-element list, or an
// empty list when there is no match, to keep the response shape uniform.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	name := r.URL.Query().Get("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payment name is required"})
		return
	}
	doc, err := h.svc.FindOne(r.Context(), name, sess.AccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusOK, map[string]any{"payments": []models.Payment{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": []models.Payment{*doc}})
}

// Filter lists payments matching the date/priority filters with the
// requested sort. With no parameters at all it behaves like GetAll.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	q := r.URL.Query()
	params := query.Params{
		Date:     q["date"],
		Priority: q["priority"],
		CostSort: q.Get("cost"),
		WordSort: q.Get("word"),
	}
	docs, err := h.svc.Filter(r.Context(), sess.AccountID, params)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": payload(docs)})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Name == "" || req.Cost == nil || req.DueDate == "" || req.Priority == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}

	if _, err := h.svc.Create(r.Context(), sess.AccountID, Input(req)); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payment already exists"})
			return
		}
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Payment Created", "success": true})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Name == "" || req.Cost == nil || req.DueDate == "" || req.Priority == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "All fields are required"})
		return
	}

	doc, err := h.svc.Update(r.Context(), sess.AccountID, Input(req))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No payment found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Payment Updated", "success": true})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payment name is required"})
		return
	}

	doc, err := h.svc.Delete(r.Context(), sess.AccountID, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No payment found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment Deleted"})
}

// CreatePending stages the named payment in the session so the create form
// can pre-fill for editing; the client then follows the redirect.
func (h *Handler) CreatePending(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payment name is required"})
		return
	}

	doc, err := h.svc.FindOne(r.Context(), req.Name, sess.AccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No payment found"})
		return
	}

	pp := &models.PendingPayment{
		Name:     doc.Name,
		Cost:     doc.Cost,
		DueDate:  doc.DueDate,
		Priority: doc.Priority,
	}
	if err := h.sessions.SetPendingPayment(r.Context(), sess.Token, pp); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": "/create"})
}

// GetPending returns the staged payment, which may be null. Reading does
// not clear the slot.
func (h *Handler) GetPending(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"payment": sess.PendingPayment})
}

// DeletePending clears the staged payment.
func (h *Handler) DeletePending(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if err := h.sessions.ClearPendingPayment(r.Context(), sess.Token); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps service failures: validation messages go to the client,
// anything else is logged and surfaced as a generic failure.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
		return
	}
	h.log.Error("payment operation failed", "error", err)
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "An error occurred"})
}

// payload keeps empty results as [] rather than null.
func payload(docs []models.Payment) []models.Payment {
	if docs == nil {
		return []models.Payment{}
	}
	return docs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
