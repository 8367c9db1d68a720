// Package store provides an interface for product storage operations.
package store

import (
	"context"

	"github.com/pvolkov/product-store/internal/product"
)

// ProductStore is an interface for product storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*product.Product, error)

	// FindAll returns every persisted product ordered by ID.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]product.Product, error)

	// FindByName returns products whose name matches exactly (case-sensitive).
	FindByName(ctx context.Context, name string) ([]product.Product, error)

	// FindByCategory returns products of the given category.
	FindByCategory(ctx context.Context, category product.Category) ([]product.Product, error)

	// FindByAvailability returns products matching the availability flag.
	FindByAvailability(ctx context.Context, available bool) ([]product.Product, error)

	// Create persists a new product and assigns it a fresh ID.
	// The ID field of the input is ignored.
	Create(ctx context.Context, p product.Product) (*product.Product, error)

	// Update replaces every field of an existing product except its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, p product.Product) (*product.Product, error)

	// DeleteByID removes a product by its ID. Deleting an absent ID is a no-op.
	DeleteByID(ctx context.Context, id int64) error
}
