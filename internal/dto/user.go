// Package dto defines the transport representations exchanged at the API
// boundary. DTOs are projections of domain entities: sensitive fields are
// write-only (accepted on input, never echoed back).
package dto

import (
	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
)

// UserDTO is the external-facing projection of a user.
//
// It doubles as the partial-update payload: zero-valued fields mean
// "leave unchanged" when merging into an existing user (Active uses a
// pointer so that an explicit false survives the merge). Password is
// accepted on input but never populated on output.
type UserDTO struct {
	ID          uuid.UUID    `json:"id,omitempty"`
	FullName    string       `json:"full_name,omitempty"`
	DateOfBirth *domain.Date `json:"date_of_birth,omitempty"`
	PhoneNumber string       `json:"phone_number,omitempty"`
	School      string       `json:"school,omitempty"`
	Email       string       `json:"email,omitempty"    validate:"omitempty,email"`
	Username    string       `json:"username,omitempty" validate:"omitempty,min=4,max=50"`
	Password    string       `json:"password,omitempty" validate:"omitempty,min=6,max=72"`
	Role        domain.Role  `json:"role,omitempty"`
	Active      *bool        `json:"active,omitempty"`
	AvatarPath  string       `json:"avatar_path,omitempty"`
}

// UserCreateRequest is the payload for creating or registering a user.
// Username is optional; when absent it is generated from the full name.
type UserCreateRequest struct {
	FullName    string       `json:"full_name"               validate:"required"`
	DateOfBirth *domain.Date `json:"date_of_birth,omitempty"`
	PhoneNumber string       `json:"phone_number,omitempty"`
	School      string       `json:"school,omitempty"`
	Email       string       `json:"email"                   validate:"required,email"`
	Username    string       `json:"username,omitempty"      validate:"omitempty,min=4,max=50"`
	Password    string       `json:"password"                validate:"required,min=6,max=72"`
	Role        string       `json:"role"                    validate:"required,oneof=USER ADMIN"`
}

// UserUpdateRequest is the payload for a partial user update. Absent
// fields leave the corresponding entity fields untouched.
type UserUpdateRequest struct {
	FullName    string       `json:"full_name,omitempty"`
	DateOfBirth *domain.Date `json:"date_of_birth,omitempty"`
	PhoneNumber string       `json:"phone_number,omitempty"`
	School      string       `json:"school,omitempty"`
	Email       string       `json:"email,omitempty" validate:"omitempty,email"`
	Role        string       `json:"role,omitempty"  validate:"omitempty,oneof=USER ADMIN"`
	Active      *bool        `json:"active,omitempty"`
}

// DTO converts the update request into the partial UserDTO the generic
// service merges with. The role string has been validated upstream.
func (r UserUpdateRequest) DTO() UserDTO {
	return UserDTO{
		FullName:    r.FullName,
		DateOfBirth: r.DateOfBirth,
		PhoneNumber: r.PhoneNumber,
		School:      r.School,
		Email:       r.Email,
		Role:        domain.Role(r.Role),
		Active:      r.Active,
	}
}

// ChangePasswordRequest is the payload for changing a user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}

// SearchCriteria is the unordered set of optional filter clauses for a
// paginated user search. Absent fields impose no constraint; present
// clauses are combined with logical AND.
type SearchCriteria struct {
	FullName string
	Email    string
	Username string
	Role     *domain.Role
	School   string
	Phone    string
	FromDate *domain.Date
	ToDate   *domain.Date
	Active   *bool
}
