// Package product defines the Product entity and its closed category set.
package product

import "github.com/shopspring/decimal"

// Product is the persistent representation of a catalog entry.
// ID is assigned by the store on creation and never changes afterwards.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Available   bool
	Category    Category
}
