package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ericfisherdev/catalogapi/internal/domain/model"
	"github.com/ericfisherdev/catalogapi/internal/domain/port/driven"
)

// CatalogService validates catalog requests and forwards them to the product store.
type CatalogService struct {
	store  driven.ProductStore
	logger *slog.Logger
}

// NewCatalogService creates a CatalogService backed by store.
func NewCatalogService(store driven.ProductStore, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// AddProducts validates a decoded payload and inserts every product it
// describes. Validation failures are returned as *ValidationError and nothing
// is written.
func (s *CatalogService) AddProducts(ctx context.Context, payload any) (model.InsertResult, error) {
	products, err := ParseProductPayload(payload)
	if err != nil {
		return model.InsertResult{}, err
	}

	result, err := s.store.Insert(ctx, products)
	if err != nil {
		return model.InsertResult{}, fmt.Errorf("add products: %w", err)
	}

	s.logger.InfoContext(ctx, "products added", "count", len(result.IDs), "affected_rows", result.AffectedRows)
	return result, nil
}

// FilterProducts validates list query parameters and returns matching products.
func (s *CatalogService) FilterProducts(ctx context.Context, query url.Values) ([]model.Product, error) {
	filter, err := ParseProductFilter(query)
	if err != nil {
		return nil, err
	}

	products, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("filter products: %w", err)
	}
	return products, nil
}
