package store

import (
	"context"

	"github.com/google/uuid"
)

// EntityStore is the persistence contract shared by all soft-deletable
// entity types. Concrete stores (e.g. the user store) satisfy it in
// addition to their entity-specific lookups, which lets the generic
// entity service drive any of them.
//
// "Active-scoped" methods treat soft-deleted rows (active = false) as
// absent and return ErrNotFound for them.
type EntityStore[T any] interface {
	// Create saves a new entity. Returns a Duplicate-class error if a
	// unique constraint is violated.
	Create(ctx context.Context, entity *T) error

	// Update overwrites an existing entity's row with the given value.
	// Returns ErrNotFound if the entity does not exist.
	Update(ctx context.Context, entity *T) error

	// GetByID retrieves an entity regardless of its active flag.
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)

	// GetActiveByID retrieves an entity, active-scoped.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*T, error)

	// ListActive returns all active entities, order unspecified.
	ListActive(ctx context.Context) ([]*T, error)

	// FindPage returns one page of entities matching the filter, with
	// total-count metadata. A nil or empty filter matches everything;
	// active filtering is the caller's choice, expressed via the filter.
	FindPage(ctx context.Context, filter *Filter, req PageRequest) (Page[*T], error)

	// SoftDelete marks an entity inactive. Returns ErrNotFound if no
	// active entity has the id.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Delete permanently removes an entity. Returns ErrNotFound if the
	// id is absent, regardless of the active flag.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithQuerier returns a store bound to the given connection or
	// transaction, so multiple operations can share one unit of work.
	WithQuerier(q DBTX) EntityStore[T]
}
