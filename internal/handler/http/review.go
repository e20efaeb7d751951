package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/httputil"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/middleware"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/validator"
)

// ReviewHandler handles listing, adding and reacting to reviews.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// AddReviewRequest is the body of POST .../reviews. Rating and comment are
// checked by the service so the user sees the widget's own messages.
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"gte=0"`
	Comment string `json:"comment" validate:"max=5000"`
}

// --- Handlers ---

// parseView reads the stars and order query parameters.
func parseView(r *http.Request) (domain.View, error) {
	var view domain.View
	if v := r.URL.Query().Get("stars"); v != "" {
		stars, err := strconv.Atoi(v)
		if err != nil {
			return view, fmt.Errorf("stars must be a number between 0 and %d", domain.MaxRating)
		}
		view.Stars = stars
	}
	order, err := domain.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		return view, err
	}
	view.Order = order
	return view, view.Validate()
}

// ListReviews handles GET /api/v1/products/{productId}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	view, err := parseView(r)
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	page, err := h.service.List(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"), view)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, page)
}

// Summary handles GET /api/v1/products/{productId}/reviews/summary
func (h *ReviewHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summary(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sum)
}

// AddReview handles POST /api/v1/products/{productId}/reviews
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	var req AddReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	rv, err := h.service.Add(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"), service.AddReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, rv)
}

// Like handles POST /api/v1/products/{productId}/reviews/{reviewId}/like
func (h *ReviewHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.writeReview(w, r, h.service.ToggleLike)
}

// Dislike handles POST /api/v1/products/{productId}/reviews/{reviewId}/dislike
func (h *ReviewHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	h.writeReview(w, r, h.service.ToggleDislike)
}

// Report handles POST /api/v1/products/{productId}/reviews/{reviewId}/report
func (h *ReviewHandler) Report(w http.ResponseWriter, r *http.Request) {
	h.writeReview(w, r, h.service.Report)
}

type reviewAction func(ctx context.Context, clientID, productID, reviewID string) (*service.ReviewView, error)

func (h *ReviewHandler) writeReview(w http.ResponseWriter, r *http.Request, action reviewAction) {
	rv, err := action(r.Context(), middleware.ClientIDFromRequest(r), chi.URLParam(r, "productId"), chi.URLParam(r, "reviewId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rv)
}
