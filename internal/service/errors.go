package service

import "errors"

var (
	// ErrWrongPassword indicates the supplied current password does not
	// match the stored hash during a password change.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrUsernameTaken indicates an explicitly requested username is
	// already in use. Generated usernames never produce this error.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrEmailTaken indicates the email address is already registered.
	ErrEmailTaken = errors.New("email is already registered")
)
