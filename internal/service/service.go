// Package service provides the implementation of product-related business logic.
package service

import (
	"context"
	"fmt"

	"github.com/pvolkov/product-store/internal/product"
	"github.com/pvolkov/product-store/internal/store"
	"github.com/shopspring/decimal"
)

// ProductService defines the methods for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*ProductDto, error)

	// FindAll returns every product.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// FindByName returns products whose name matches exactly.
	FindByName(ctx context.Context, name string) ([]ProductDto, error)

	// FindByCategory returns products of the named category.
	// Returns a ValidationError if the category name is not in the known set.
	FindByCategory(ctx context.Context, category string) ([]ProductDto, error)

	// FindByAvailability returns products matching the availability flag.
	FindByAvailability(ctx context.Context, available bool) ([]ProductDto, error)

	// Create adds a new product to the system.
	Create(ctx context.Context, payload ProductPayload) (*ProductDto, error)

	// Update replaces every field of an existing product except its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id int64, payload ProductPayload) (*ProductDto, error)

	// DeleteByID removes a product by its ID. Deleting an absent ID succeeds.
	DeleteByID(ctx context.Context, id int64) error
}

// Service implements ProductService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
}

// NewService creates a new instance of ProductService with the provided repository.
func NewService(repo store.ProductStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductPayload represents the request body for creating or fully replacing
// a product. Pointer fields distinguish an omitted key from a zero value so
// missing required keys fail validation instead of defaulting silently.
type ProductPayload struct {
	Name        string           `json:"name"        validate:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"       validate:"required"`
	Available   *bool            `json:"available"   validate:"required"`
	Category    string           `json:"category"    validate:"required"`
}

// ProductDto represents the serialized form of a product. Category carries
// the symbolic name and Price a quoted decimal string, preserving two
// decimal places exactly.
type ProductDto struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
	Category    string          `json:"category"`
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*ProductDto, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}

	return toDto(p), nil
}

// FindAll retrieves a list of all products and returns them as ProductDTOs.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return toDtos(products), nil
}

// FindByName retrieves products matching the given name exactly.
func (s *Service) FindByName(ctx context.Context, name string) ([]ProductDto, error) {
	products, err := s.repository.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by name %q: %w", name, err)
	}
	return toDtos(products), nil
}

// FindByCategory retrieves products of the named category.
// An unknown category name yields a ValidationError, never an empty result.
func (s *Service) FindByCategory(ctx context.Context, category string) ([]ProductDto, error) {
	cat, err := product.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	products, err := s.repository.FindByCategory(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by category %s: %w", cat, err)
	}
	return toDtos(products), nil
}

// FindByAvailability retrieves products matching the availability flag.
func (s *Service) FindByAvailability(ctx context.Context, available bool) ([]ProductDto, error) {
	products, err := s.repository.FindByAvailability(ctx, available)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products by availability %t: %w", available, err)
	}
	return toDtos(products), nil
}

// Create creates a new product and returns it with its store-assigned ID.
func (s *Service) Create(ctx context.Context, payload ProductPayload) (*ProductDto, error) {
	p, err := toEntity(payload)
	if err != nil {
		return nil, err
	}
	created, err := s.repository.Create(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return toDto(created), nil
}

// Update fully replaces an existing product and returns the updated entity.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Update(ctx context.Context, id int64, payload ProductPayload) (*ProductDto, error) {
	p, err := toEntity(payload)
	if err != nil {
		return nil, err
	}
	updated, err := s.repository.Update(ctx, id, *p)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %d: %w", id, err)
	}

	return toDto(updated), nil
}

// DeleteByID deletes a product by its ID. Deleting an absent ID succeeds.
func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	return s.repository.DeleteByID(ctx, id)
}

// toEntity converts a validated payload into a Product entity.
// The category name is resolved against the closed set here so that a bad
// label surfaces as a ValidationError before the store is touched.
func toEntity(payload ProductPayload) (*product.Product, error) {
	cat, err := product.ParseCategory(payload.Category)
	if err != nil {
		return nil, err
	}
	return &product.Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       *payload.Price,
		Available:   *payload.Available,
		Category:    cat,
	}, nil
}

// toDto converts a product.Product to a ProductDto.
func toDto(p *product.Product) *ProductDto {
	return &ProductDto{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Available:   p.Available,
		Category:    p.Category.String(),
	}
}

func toDtos(products []product.Product) []ProductDto {
	productDTOs := make([]ProductDto, len(products))
	for i, item := range products {
		productDTOs[i] = *toDto(&item)
	}
	return productDTOs
}
