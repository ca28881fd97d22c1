package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/dto"
	"github.com/rosterhq/roster-api/internal/platform/logger"
	"github.com/rosterhq/roster-api/internal/service/auth"
	"github.com/rosterhq/roster-api/internal/store"
)

// UserService manages user accounts. The generic entity lifecycle is
// inherited from EntityService; user-specific concerns live here:
// username generation, uniqueness checks, password hashing and
// credential changes.
type UserService struct {
	*EntityService[domain.User, dto.UserDTO]
	db     *sql.DB
	users  store.UserStore
	hasher auth.PasswordHasher
	mapper userMapper
	logger *slog.Logger
}

// NewUserService creates a UserService. The users and entities
// arguments are typically the same concrete store, passed through its
// two interfaces.
func NewUserService(
	db *sql.DB,
	users store.UserStore,
	entities store.EntityStore[domain.User],
	hasher auth.PasswordHasher,
	log *slog.Logger,
) *UserService {
	if log == nil {
		log = slog.Default()
	}
	mapper := userMapper{}
	return &UserService{
		EntityService: NewEntityService[domain.User, dto.UserDTO](db, entities, mapper, log),
		db:            db,
		users:         users,
		hasher:        hasher,
		mapper:        mapper,
		logger:        log.With(slog.String("component", "user_service")),
	}
}

// CreateUser registers a new user account. When the request carries no
// username, one is generated from the full name. Email and explicit
// usernames must be unique across all accounts, soft-deleted ones
// included. The uniqueness checks, username generation and insert run
// in one transaction.
func (s *UserService) CreateUser(
	ctx context.Context,
	req dto.UserCreateRequest,
) (dto.UserDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return dto.UserDTO{}, err
	}

	var user *domain.User
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		emailTaken, err := txUsers.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return fmt.Errorf("failed to check email availability: %w", err)
		}
		if emailTaken {
			return ErrEmailTaken
		}

		username := req.Username
		if username != "" {
			usernameTaken, err := txUsers.ExistsByUsername(ctx, username)
			if err != nil {
				return fmt.Errorf("failed to check username availability: %w", err)
			}
			if usernameTaken {
				return ErrUsernameTaken
			}
		} else {
			username, err = generateUsername(ctx, txUsers, req.FullName)
			if err != nil {
				return err
			}
		}

		user, err = domain.NewUser(req.FullName, req.Email, username, req.Password, role)
		if err != nil {
			return err
		}
		if req.DateOfBirth != nil {
			user.DateOfBirth = *req.DateOfBirth
		}
		user.PhoneNumber = req.PhoneNumber
		user.School = req.School
		if err := user.Validate(); err != nil {
			return err
		}

		hashed, err := s.hasher.Hash(req.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
		user.Password = ""

		return txUsers.Create(ctx, user)
	})
	if err != nil {
		return dto.UserDTO{}, err
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))

	return s.mapper.ToDTO(user), nil
}

// UpdateUser applies a partial update to an active user. Absent
// request fields leave the stored values untouched; username and
// password cannot be changed through this path.
func (s *UserService) UpdateUser(
	ctx context.Context,
	id uuid.UUID,
	req dto.UserUpdateRequest,
) (dto.UserDTO, error) {
	return s.Update(ctx, id, req.DTO())
}

// ChangePassword verifies the current password and replaces it with
// the new one. Returns ErrWrongPassword when the current password does
// not match.
func (s *UserService) ChangePassword(
	ctx context.Context,
	id uuid.UUID,
	req dto.ChangePasswordRequest,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(req.NewPassword) < 6 {
		return domain.ErrPasswordTooShort
	}
	if len(req.NewPassword) > 72 {
		return domain.ErrPasswordTooLong
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		user, err := txUsers.GetActiveByID(ctx, id)
		if err != nil {
			return err
		}

		if err := s.hasher.Compare(user.HashedPassword, req.CurrentPassword); err != nil {
			return ErrWrongPassword
		}

		hashed, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed

		return txUsers.Update(ctx, user)
	})
	if err != nil {
		return err
	}

	log.Info("password changed", slog.String("user_id", id.String()))
	return nil
}

// FindByUsername returns the active user with the given username.
func (s *UserService) FindByUsername(ctx context.Context, username string) (dto.UserDTO, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return dto.UserDTO{}, err
	}
	return s.mapper.ToDTO(user), nil
}

// FindByEmail returns the active user with the given email address.
func (s *UserService) FindByEmail(ctx context.Context, email string) (dto.UserDTO, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return dto.UserDTO{}, err
	}
	return s.mapper.ToDTO(user), nil
}

// ListByRole returns all active users holding the given role.
func (s *UserService) ListByRole(ctx context.Context, role domain.Role) ([]dto.UserDTO, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	dtos := make([]dto.UserDTO, len(users))
	for i, u := range users {
		dtos[i] = s.mapper.ToDTO(u)
	}
	return dtos, nil
}

// Search returns one page of users matching the criteria. All clauses
// are optional and combined with AND; an empty criteria set pages
// through every user, active or not, unless the Active clause says
// otherwise.
func (s *UserService) Search(
	ctx context.Context,
	criteria dto.SearchCriteria,
	req store.PageRequest,
) (store.Page[dto.UserDTO], error) {
	return s.FindPageFiltered(ctx, BuildUserFilter(criteria), req)
}

// SetAvatar records a new avatar path for the user and returns the
// updated user together with the previous path, so the caller can
// remove the superseded file.
func (s *UserService) SetAvatar(
	ctx context.Context,
	id uuid.UUID,
	path string,
) (dto.UserDTO, string, error) {
	var user *domain.User
	var previous string

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txUsers := s.users.WithTx(tx)

		var err error
		user, err = txUsers.GetActiveByID(ctx, id)
		if err != nil {
			return err
		}

		previous = user.AvatarPath
		user.AvatarPath = path

		return txUsers.Update(ctx, user)
	})
	if err != nil {
		return dto.UserDTO{}, "", err
	}

	return s.mapper.ToDTO(user), previous, nil
}
