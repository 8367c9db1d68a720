package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pvolkov/product-store/internal/product"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = "id, name, description, price, available, category"

// scanProduct reads one row into a Product, mapping the stored category name
// back onto the closed set.
func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	var category string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Available, &category); err != nil {
		return nil, err
	}
	cat, err := product.ParseCategory(category)
	if err != nil {
		return nil, fmt.Errorf("stored category is not in the known set: %w", err)
	}
	p.Category = cat
	return &p, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *PgStore) FindByID(ctx context.Context, id int64) (*product.Product, error) {
	row := s.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return p, nil
}

// FindAll retrieves every persisted product ordered by ID.
func (s *PgStore) FindAll(ctx context.Context) ([]product.Product, error) {
	return s.query(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
}

// FindByName returns products whose name matches exactly (case-sensitive).
func (s *PgStore) FindByName(ctx context.Context, name string) ([]product.Product, error) {
	return s.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE name = $1 ORDER BY id", name)
}

// FindByCategory returns products of the given category.
func (s *PgStore) FindByCategory(ctx context.Context, category product.Category) ([]product.Product, error) {
	return s.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE category = $1 ORDER BY id", category.String())
}

// FindByAvailability returns products matching the availability flag.
func (s *PgStore) FindByAvailability(ctx context.Context, available bool) ([]product.Product, error) {
	return s.query(ctx,
		"SELECT "+productColumns+" FROM products WHERE available = $1 ORDER BY id", available)
}

// Create persists a new product and returns it with its store-assigned ID.
func (s *PgStore) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	row := s.db.QueryRow(ctx,
		`INSERT INTO products (name, description, price, available, category)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.Available, p.Category.String())
	created, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return created, nil
}

// Update replaces every field of an existing product except its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *PgStore) Update(ctx context.Context, id int64, p product.Product) (*product.Product, error) {
	row := s.db.QueryRow(ctx,
		`UPDATE products
		 SET name = $2, description = $3, price = $4, available = $5, category = $6
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, p.Name, p.Description, p.Price, p.Available, p.Category.String())
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its unique identifier.
// Deleting an ID that does not exist is not an error.
func (s *PgStore) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	return nil
}

// query runs a multi-row select and collects the results.
func (s *PgStore) query(ctx context.Context, sql string, args ...any) ([]product.Product, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]product.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}
