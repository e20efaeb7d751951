package service

import (
	"context"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/internal/domain"
	apperrors "github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/errors"
)

// CatalogService serves the storefront product grid.
type CatalogService struct{}

// NewCatalogService creates a catalog service.
func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

// List returns every product.
func (s *CatalogService) List(context.Context) []domain.Product {
	return domain.Catalog()
}

// Get returns one product.
func (s *CatalogService) Get(_ context.Context, productID string) (*domain.Product, error) {
	p, ok := domain.FindProduct(productID)
	if !ok {
		return nil, apperrors.NotFound("product", productID)
	}
	return &p, nil
}
