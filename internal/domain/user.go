package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyFullName       = errors.New("full name cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidPhoneNumber  = errors.New("invalid phone number format")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrDateOfBirthInFuture = errors.New("date of birth must be in the past")
)

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)
)

// User represents a managed user account.
// HashedPassword never leaves the store/service boundary; Password holds
// a plaintext value only transiently during registration or a password
// change, and is never serialized.
type User struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	DateOfBirth    Date      `json:"date_of_birth,omitempty"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	School         string    `json:"school,omitempty"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext, transient
	HashedPassword string    `json:"-"` // Never expose the hash
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	AvatarPath     string    `json:"avatar_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates an active User with a fresh UUID and timestamps.
// The caller is responsible for hashing the password before storage.
// Returns an error if validation fails.
func NewUser(fullName, email, username, password string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		FullName:  fullName,
		Email:     email,
		Username:  username,
		Password:  password,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the user's fields and returns the first failure found.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.FullName == "" {
		return ErrEmptyFullName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !emailPattern.MatchString(u.Email) {
		return ErrInvalidEmail
	}

	if u.PhoneNumber != "" && !phonePattern.MatchString(u.PhoneNumber) {
		return ErrInvalidPhoneNumber
	}

	if !u.DateOfBirth.IsZero() && u.DateOfBirth.After(DateOf(time.Now())) {
		return ErrDateOfBirthInFuture
	}

	if !u.Role.Valid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 6 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 { // bcrypt's practical limit
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from storage must carry a hash.
		return ErrEmptyPassword
	}

	return nil
}
