package http

import (
	"log/slog"
	"net/http"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/httputil"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/middleware"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/validator"
)

// UserHandler handles registration of the client's active user.
type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

// NewUserHandler creates a user HTTP handler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// RegisterRequest is the body of POST /api/v1/users.
type RegisterRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

// Register handles POST /api/v1/users
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), middleware.ClientIDFromRequest(r), req.Name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, user)
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Current(r.Context(), middleware.ClientIDFromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, user)
}

// Logout handles DELETE /api/v1/users/me
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), middleware.ClientIDFromRequest(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
