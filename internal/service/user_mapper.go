package service

import (
	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/dto"
)

// userMapper converts between domain.User and dto.UserDTO.
// Password and username never travel through Merge: passwords change
// only via the dedicated password-change flow, and usernames are fixed
// at creation.
type userMapper struct{}

var _ Mapper[domain.User, dto.UserDTO] = userMapper{}

// ToEntity builds a new user from the DTO. The resulting user carries
// the plaintext password; hashing is the caller's responsibility.
func (userMapper) ToEntity(d dto.UserDTO) (*domain.User, error) {
	user, err := domain.NewUser(d.FullName, d.Email, d.Username, d.Password, d.Role)
	if err != nil {
		return nil, err
	}

	if d.DateOfBirth != nil {
		user.DateOfBirth = *d.DateOfBirth
	}
	user.PhoneNumber = d.PhoneNumber
	user.School = d.School
	user.AvatarPath = d.AvatarPath
	if d.Active != nil {
		user.Active = *d.Active
	}

	return user, err
}

// ToDTO projects a user into its transport form. Password fields are
// never populated.
func (userMapper) ToDTO(u *domain.User) dto.UserDTO {
	d := dto.UserDTO{
		ID:          u.ID,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		School:      u.School,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		Active:      &u.Active,
		AvatarPath:  u.AvatarPath,
	}
	if !u.DateOfBirth.IsZero() {
		dob := u.DateOfBirth
		d.DateOfBirth = &dob
	}
	return d
}

// Merge applies a partial DTO onto an existing user. Zero-valued DTO
// fields leave the user untouched; Active is a pointer so an explicit
// false still lands. The merged user is re-validated before returning.
func (userMapper) Merge(u *domain.User, d dto.UserDTO) error {
	if d.FullName != "" {
		u.FullName = d.FullName
	}
	if d.DateOfBirth != nil {
		u.DateOfBirth = *d.DateOfBirth
	}
	if d.PhoneNumber != "" {
		u.PhoneNumber = d.PhoneNumber
	}
	if d.School != "" {
		u.School = d.School
	}
	if d.Email != "" {
		u.Email = d.Email
	}
	if d.Role != "" {
		u.Role = d.Role
	}
	if d.Active != nil {
		u.Active = *d.Active
	}
	if d.AvatarPath != "" {
		u.AvatarPath = d.AvatarPath
	}

	return u.Validate()
}
