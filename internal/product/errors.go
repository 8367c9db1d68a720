package product

import (
	"errors"
	"fmt"
)

// ErrProductNotFound signals that no product exists for the requested ID.
// Absence is a normal outcome; callers decide whether it is an error.
var ErrProductNotFound = errors.New("product not found")

// ValidationError reports a malformed or semantically invalid payload field.
// It is distinguishable from ErrProductNotFound and from internal failures so
// the HTTP layer can map it to a client error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid product: field %q: %s", e.Field, e.Reason)
}
