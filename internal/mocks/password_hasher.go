package mocks

import (
	"errors"

	"github.com/rosterhq/roster-api/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher without the cost
// of real bcrypt. The default implementation prefixes passwords so a
// "hash" is distinguishable from its plaintext.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error

	HashErr error

	// CompareCalls counts Compare invocations, including ones routed
	// through CompareFn.
	CompareCalls int
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

const mockHashPrefix = "hashed:"

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return mockHashPrefix + password, nil
}

// Compare implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	m.CompareCalls++
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword != mockHashPrefix+password {
		return errors.New("password mismatch")
	}
	return nil
}
