package service

// Mapper converts between a domain entity T and its transport
// representation D. Implementations decide which DTO fields are
// writable and which entity fields are exposed.
type Mapper[T any, D any] interface {
	// ToEntity builds a new entity from a DTO. Returns an error when the
	// DTO cannot produce a valid entity.
	ToEntity(dto D) (*T, error)

	// ToDTO projects an entity into its transport form.
	ToDTO(entity *T) D

	// Merge applies a partial DTO onto an existing entity. Zero-valued
	// DTO fields leave the corresponding entity fields unchanged.
	Merge(entity *T, dto D) error
}
