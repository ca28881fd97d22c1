package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/platform/logger"
	"github.com/rosterhq/roster-api/internal/store"
)

// userColumns is the canonical column list for user queries; scanUser
// must stay in sync with it.
const userColumns = `id, full_name, date_of_birth, phone_number, school, email, username,
		hashed_password, role, active, avatar_path, created_at, updated_at`

// sortColumns whitelists the sort keys accepted from page requests.
// Anything not listed falls back to the primary key.
var sortColumns = map[string]string{
	"id":            "id",
	"full_name":     "full_name",
	"email":         "email",
	"username":      "username",
	"role":          "role",
	"date_of_birth": "date_of_birth",
	"created_at":    "created_at",
	"updated_at":    "updated_at",
}

// PostgresUserStore implements store.UserStore and the generic
// store.EntityStore for users, backed by a PostgreSQL database.
type PostgresUserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// user store. It accepts a database connection or transaction managed
// by the caller. If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure PostgresUserStore satisfies both store contracts
var (
	_ store.UserStore                = (*PostgresUserStore)(nil)
	_ store.EntityStore[domain.User] = (*PostgresUserStore)(nil)
)

// WithTx implements store.UserStore.WithTx
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return NewPostgresUserStore(tx, s.logger)
}

// WithQuerier implements store.EntityStore.WithQuerier
func (s *PostgresUserStore) WithQuerier(q store.DBTX) store.EntityStore[domain.User] {
	return NewPostgresUserStore(q, s.logger)
}

// scanner abstracts *sql.Row and *sql.Rows for scanUser.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var user domain.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.DateOfBirth,
		&user.PhoneNumber,
		&user.School,
		&user.Email,
		&user.Username,
		&user.HashedPassword,
		&role,
		&user.Active,
		&user.AvatarPath,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}

// Create implements store.UserStore.Create
// Returns store.ErrEmailExists or store.ErrUsernameExists on unique
// constraint violations.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	query := `
		INSERT INTO users (id, full_name, date_of_birth, phone_number, school, email,
			username, hashed_password, role, active, avatar_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.FullName,
		user.DateOfBirth,
		user.PhoneNumber,
		user.School,
		user.Email,
		user.Username,
		user.HashedPassword,
		string(user.Role),
		user.Active,
		user.AvatarPath,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapUserError(err)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// Update implements store.UserStore.Update
// The username column is deliberately excluded; usernames are fixed at
// creation time.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET full_name = $1, date_of_birth = $2, phone_number = $3, school = $4,
			email = $5, hashed_password = $6, role = $7, active = $8,
			avatar_path = $9, updated_at = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.FullName,
		user.DateOfBirth,
		user.PhoneNumber,
		user.School,
		user.Email,
		user.HashedPassword,
		string(user.Role),
		user.Active,
		user.AvatarPath,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapUserError(err)
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		log.Debug("user not found for update", slog.String("user_id", user.ID.String()))
		return store.ErrUserNotFound
	}

	log.Info("user updated successfully", slog.String("user_id", user.ID.String()))
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, where)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String("where", where))
		return nil, err
	}
	return user, nil
}

// GetByID implements store.UserStore.GetByID
// It retrieves a user regardless of the active flag.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id = $1", id)
}

// GetActiveByID implements store.UserStore.GetActiveByID
func (s *PostgresUserStore) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id = $1 AND active = TRUE", id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "username = $1 AND active = TRUE", username)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email = $1 AND active = TRUE", email)
}

func (s *PostgresUserStore) exists(ctx context.Context, where string, arg any) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM users WHERE %s)`, where)

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		log.Error("failed to check user existence",
			slog.String("error", err.Error()),
			slog.String("where", where))
		return false, err
	}
	return exists, nil
}

// ExistsByUsername implements store.UserStore.ExistsByUsername
// Soft-deleted users still hold their username.
func (s *PostgresUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = $1", username)
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
// Soft-deleted users still hold their email.
func (s *PostgresUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, "email = $1", email)
}

func (s *PostgresUserStore) list(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// ListActive implements store.UserStore.ListActive
func (s *PostgresUserStore) ListActive(ctx context.Context) ([]*domain.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE active = TRUE ORDER BY id`, userColumns)
	return s.list(ctx, query)
}

// ListByRole implements store.UserStore.ListByRole
func (s *PostgresUserStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM users WHERE role = $1 AND active = TRUE ORDER BY id`, userColumns)
	return s.list(ctx, query, string(role))
}

// FindPage implements store.UserStore.FindPage
// It runs a count query and a page query under the same filter, then
// assembles the pagination metadata.
func (s *PostgresUserStore) FindPage(
	ctx context.Context,
	filter *store.Filter,
	req store.PageRequest,
) (store.Page[*domain.User], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := renderFilter(filter, 1)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM users %s`, where)
	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return store.Page[*domain.User]{}, err
	}

	sortCol, ok := sortColumns[req.SortBy]
	if !ok {
		sortCol = "id"
	}
	dir := "ASC"
	if req.SortDir == store.SortDesc {
		dir = "DESC"
	}

	pageQuery := fmt.Sprintf(
		`SELECT %s FROM users %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		userColumns, where, sortCol, dir, len(args)+1, len(args)+2)
	pageArgs := append(args, req.Size, req.Offset())

	users, err := s.list(ctx, pageQuery, pageArgs...)
	if err != nil {
		return store.Page[*domain.User]{}, err
	}

	log.Debug("user page retrieved",
		slog.Int("page", req.Number),
		slog.Int("size", req.Size),
		slog.Int64("total", total))

	return store.NewPage(users, req, total), nil
}

// SoftDelete implements store.UserStore.SoftDelete
// An already-inactive user counts as not found.
func (s *PostgresUserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE users
		SET active = FALSE, updated_at = $1
		WHERE id = $2 AND active = TRUE
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to soft-delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		log.Debug("user not found for soft delete", slog.String("user_id", id.String()))
		return store.ErrUserNotFound
	}

	log.Info("user soft-deleted", slog.String("user_id", id.String()))
	return nil
}

// Delete implements store.UserStore.Delete
// It permanently removes the row, active or not.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		log.Debug("user not found for delete", slog.String("user_id", id.String()))
		return store.ErrUserNotFound
	}

	log.Info("user permanently deleted", slog.String("user_id", id.String()))
	return nil
}
