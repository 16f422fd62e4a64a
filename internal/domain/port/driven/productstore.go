package driven

import (
	"context"

	"github.com/ericfisherdev/catalogapi/internal/domain/model"
)

// ProductStore defines the driven port for product persistence.
type ProductStore interface {
	// Insert stores all products as one unit. Either every product is written
	// or none is.
	Insert(ctx context.Context, products []model.Product) (model.InsertResult, error)

	// List returns products matching every non-empty field of filter, ordered by ID.
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
}
