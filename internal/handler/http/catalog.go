package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/service"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/httputil"
)

// CatalogHandler serves the storefront product grid.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// ProductResponse is a catalog entry with its display price.
type ProductResponse struct {
	domain.Product
	PriceLabel string `json:"price_label"`
}

func newProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{Product: p, PriceLabel: p.PriceLabel()}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.service.List(r.Context())
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	httputil.WriteData(w, http.StatusOK, out)
}

// GetProduct handles GET /api/v1/products/{productId}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newProductResponse(*p))
}
