package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// It covers the generic entity operations plus user-specific lookups.
type UserStore interface {
	// Create saves a new user to the store. The caller must hash the
	// password first; plaintext never reaches this layer.
	// Returns ErrEmailExists or ErrUsernameExists on unique violations.
	Create(ctx context.Context, user *domain.User) error

	// Update overwrites an existing user's row.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists/ErrUsernameExists on unique violations.
	Update(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by id regardless of the active flag.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetActiveByID retrieves a user by id, active-scoped.
	GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves an active user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByEmail retrieves an active user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByUsername reports whether any user (active or not) has the username.
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ExistsByEmail reports whether any user (active or not) has the email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ListActive returns all active users.
	ListActive(ctx context.Context) ([]*domain.User, error)

	// ListByRole returns all active users with the given role.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)

	// FindPage returns one page of users matching the filter with
	// total-count metadata. A nil filter matches everything.
	FindPage(ctx context.Context, filter *Filter, req PageRequest) (Page[*domain.User], error)

	// SoftDelete marks a user inactive. Returns ErrUserNotFound if no
	// active user has the id.
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Delete permanently removes a user. Returns ErrUserNotFound if the
	// id is absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a UserStore bound to the provided transaction, so
	// multiple operations can execute within a single unit of work.
	WithTx(tx *sql.Tx) UserStore
}
