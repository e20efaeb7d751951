package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/httputil"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/middleware"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/validator"
)

// SessionHandler drives the delete confirmation and comment edit flows.
type SessionHandler struct {
	service *service.SessionService
	logger  *slog.Logger
}

// NewSessionHandler creates a session HTTP handler.
func NewSessionHandler(svc *service.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: svc, logger: logger}
}

// UpdateDraftRequest is the body of PUT .../edit. A blank draft is accepted
// here and rejected on save.
type UpdateDraftRequest struct {
	Text string `json:"text" validate:"max=5000"`
}

func (h *SessionHandler) writeSession(w http.ResponseWriter, r *http.Request, v *service.SessionView, err error) {
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, v)
}

// GetSession handles GET /api/v1/products/{productId}/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"))
	h.writeSession(w, r, v, err)
}

// RequestDelete handles POST .../reviews/{reviewId}/delete-request
func (h *SessionHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.RequestDelete(r.Context(), middleware.ClientIDFromRequest(r),
		chi.URLParam(r, "productId"), chi.URLParam(r, "reviewId"))
	h.writeSession(w, r, v, err)
}

// ConfirmDelete handles POST /api/v1/products/{productId}/delete/confirm
func (h *SessionHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ConfirmDelete(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// CancelDelete handles POST /api/v1/products/{productId}/delete/cancel
func (h *SessionHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.CancelDelete(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"))
	h.writeSession(w, r, v, err)
}

// BeginEdit handles POST .../reviews/{reviewId}/edit
func (h *SessionHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.BeginEdit(r.Context(), middleware.ClientIDFromRequest(r),
		chi.URLParam(r, "productId"), chi.URLParam(r, "reviewId"))
	h.writeSession(w, r, v, err)
}

// UpdateDraft handles PUT /api/v1/products/{productId}/edit
func (h *SessionHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req UpdateDraftRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	v, err := h.service.UpdateDraft(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"), req.Text)
	h.writeSession(w, r, v, err)
}

// SaveEdit handles POST /api/v1/products/{productId}/edit/save
func (h *SessionHandler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	rv, err := h.service.SaveEdit(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rv)
}

// CancelEdit handles POST /api/v1/products/{productId}/edit/cancel
func (h *SessionHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.CancelEdit(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"))
	h.writeSession(w, r, v, err)
}
