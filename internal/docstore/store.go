// Package docstore is the generic document-collection boundary the repositories
// persist through. A document is a flat Record keyed by field name; every
// implementation assigns ids on Insert and reports missing documents with
// ErrNotFound.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// IDField is the record key carrying the document id on reads.
const IDField = "id"

var ErrNotFound = errors.New("docstore: document not found")

// Record is a raw document. A field the stored document lacks is either absent
// from the map or nil, never zero valued.
type Record map[string]any

// Filter is an equality condition on a single field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// Store is implemented by Memory, SQL and Redis.
type Store interface {
	// Query returns the documents matching every filter, in insertion order.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Record, error)

	// GetByID returns a single document or ErrNotFound.
	GetByID(ctx context.Context, collection, id string) (Record, error)

	// Insert stores a new document and returns its assigned id.
	Insert(ctx context.Context, collection string, rec Record) (string, error)

	// Replace overwrites the whole document at id.
	Replace(ctx context.Context, collection, id string, rec Record) error

	// Patch updates only the given fields of the document at id.
	Patch(ctx context.Context, collection, id string, fields Record) error

	// Delete removes the document at id.
	Delete(ctx context.Context, collection, id string) error
}

// NewID returns a time-ordered UUIDv7 so that sorting by id follows insertion order.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Clone returns a shallow copy of r without the id field.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// Matches reports whether r satisfies every filter.
func (r Record) Matches(filters ...Filter) bool {
	for _, f := range filters {
		v, ok := r[f.Field]
		if !ok || !valuesEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// valuesEqual compares by printed form so that an int filter matches the
// float64 a JSON round trip produces.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
