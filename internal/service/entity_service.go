package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/platform/logger"
	"github.com/rosterhq/roster-api/internal/store"
)

// EntityService implements the lifecycle operations shared by all
// soft-deletable entities: create, partial update, soft delete, hard
// delete, lookups and pagination. Entity-specific services compose it
// and add their own operations on top.
//
// All reads through this service are active-scoped: soft-deleted
// entities behave as if they do not exist. Callers that need to see
// inactive rows go through FindPageFiltered with an explicit filter.
type EntityService[T any, D any] struct {
	db     *sql.DB
	store  store.EntityStore[T]
	mapper Mapper[T, D]
	logger *slog.Logger
}

// NewEntityService creates an EntityService backed by the given store
// and mapper.
func NewEntityService[T any, D any](
	db *sql.DB,
	entityStore store.EntityStore[T],
	mapper Mapper[T, D],
	log *slog.Logger,
) *EntityService[T, D] {
	if log == nil {
		log = slog.Default()
	}
	return &EntityService[T, D]{
		db:     db,
		store:  entityStore,
		mapper: mapper,
		logger: log.With(slog.String("component", "entity_service")),
	}
}

// Save creates a new entity from the DTO and returns its stored form.
func (s *EntityService[T, D]) Save(ctx context.Context, dto D) (D, error) {
	var zero D

	entity, err := s.mapper.ToEntity(dto)
	if err != nil {
		return zero, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.store.WithQuerier(tx).Create(ctx, entity)
	})
	if err != nil {
		return zero, fmt.Errorf("failed to save entity: %w", err)
	}

	return s.mapper.ToDTO(entity), nil
}

// Update applies a partial DTO onto the entity with the given id.
// Zero-valued DTO fields leave the stored values untouched. The read
// and write happen in one transaction so concurrent updates cannot
// interleave between them.
func (s *EntityService[T, D]) Update(ctx context.Context, id uuid.UUID, dto D) (D, error) {
	var zero D
	var entity *T

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.store.WithQuerier(tx)

		var err error
		entity, err = txStore.GetActiveByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.mapper.Merge(entity, dto); err != nil {
			return err
		}

		return txStore.Update(ctx, entity)
	})
	if err != nil {
		return zero, err
	}

	return s.mapper.ToDTO(entity), nil
}

// SoftDelete marks the entity inactive. It remains retrievable only by
// unscoped lookups and can be purged later with Delete.
func (s *EntityService[T, D]) SoftDelete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	log.Info("entity soft-deleted", slog.String("id", id.String()))
	return nil
}

// Delete permanently removes the entity, active or not.
func (s *EntityService[T, D]) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Info("entity permanently deleted", slog.String("id", id.String()))
	return nil
}

// FindByID returns the active entity with the given id.
func (s *EntityService[T, D]) FindByID(ctx context.Context, id uuid.UUID) (D, error) {
	var zero D
	entity, err := s.store.GetActiveByID(ctx, id)
	if err != nil {
		return zero, err
	}
	return s.mapper.ToDTO(entity), nil
}

// FindAll returns every active entity, unpaginated.
func (s *EntityService[T, D]) FindAll(ctx context.Context) ([]D, error) {
	entities, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]D, len(entities))
	for i, e := range entities {
		dtos[i] = s.mapper.ToDTO(e)
	}
	return dtos, nil
}

// FindPage returns one page of active entities.
func (s *EntityService[T, D]) FindPage(
	ctx context.Context,
	req store.PageRequest,
) (store.Page[D], error) {
	active := true
	filter := new(store.Filter).EqBool("active", &active)
	return s.FindPageFiltered(ctx, filter, req)
}

// FindPageFiltered returns one page of entities matching the filter.
// The filter decides active scoping; a nil filter matches every row.
func (s *EntityService[T, D]) FindPageFiltered(
	ctx context.Context,
	filter *store.Filter,
	req store.PageRequest,
) (store.Page[D], error) {
	page, err := s.store.FindPage(ctx, filter, req)
	if err != nil {
		return store.Page[D]{}, err
	}
	return store.MapPage(page, func(e *T) D {
		return s.mapper.ToDTO(e)
	}), nil
}
