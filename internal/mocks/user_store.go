package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/store"
)

// MockUserStore implements store.UserStore and the generic
// store.EntityStore backed by an in-memory map. Function fields
// override individual methods when set.
type MockUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User

	CreateFn           func(ctx context.Context, user *domain.User) error
	UpdateFn           func(ctx context.Context, user *domain.User) error
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsernameFn    func(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsernameFn func(ctx context.Context, username string) (bool, error)
	ExistsByEmailFn    func(ctx context.Context, email string) (bool, error)
	FindPageFn         func(ctx context.Context, filter *store.Filter, req store.PageRequest) (store.Page[*domain.User], error)

	// CreateErr short-circuits Create when set
	CreateErr error
}

// NewMockUserStore creates an empty in-memory user store.
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[uuid.UUID]*domain.User),
	}
}

// Compile-time interface checks
var (
	_ store.UserStore                = (*MockUserStore)(nil)
	_ store.EntityStore[domain.User] = (*MockUserStore)(nil)
)

// Seed inserts users directly, bypassing validation. For test setup.
func (m *MockUserStore) Seed(users ...*domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range users {
		copied := *u
		m.users[u.ID] = &copied
	}
}

// WithTx implements store.UserStore; the mock has no transactions.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

// WithQuerier implements store.EntityStore.
func (m *MockUserStore) WithQuerier(q store.DBTX) store.EntityStore[domain.User] { return m }

// Create implements store.UserStore.Create
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
		if existing.Username == user.Username {
			return store.ErrUsernameExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// Update implements store.UserStore.Update
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

// GetByID implements store.UserStore.GetByID
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetActiveByID implements store.UserStore.GetActiveByID
func (m *MockUserStore) GetActiveByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.GetByUsernameFn != nil {
		return m.GetByUsernameFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username && user.Active {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements store.UserStore.GetByEmail
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email && user.Active {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// ExistsByUsername implements store.UserStore.ExistsByUsername
func (m *MockUserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.ExistsByUsernameFn != nil {
		return m.ExistsByUsernameFn(ctx, username)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByEmail implements store.UserStore.ExistsByEmail
func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFn != nil {
		return m.ExistsByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ListActive implements store.UserStore.ListActive
func (m *MockUserStore) ListActive(ctx context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*domain.User
	for _, user := range m.users {
		if user.Active {
			copied := *user
			users = append(users, &copied)
		}
	}
	sortByID(users)
	return users, nil
}

// ListByRole implements store.UserStore.ListByRole
func (m *MockUserStore) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []*domain.User
	for _, user := range m.users {
		if user.Active && user.Role == role {
			copied := *user
			users = append(users, &copied)
		}
	}
	sortByID(users)
	return users, nil
}

// FindPage implements store.UserStore.FindPage. The default
// implementation ignores the filter's column semantics beyond the
// active flag; tests exercising real filtering set FindPageFn or use
// the postgres store.
func (m *MockUserStore) FindPage(
	ctx context.Context,
	filter *store.Filter,
	req store.PageRequest,
) (store.Page[*domain.User], error) {
	if m.FindPageFn != nil {
		return m.FindPageFn(ctx, filter, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	activeOnly := false
	for _, c := range filter.Conditions() {
		if c.Column == "active" && c.Op == store.OpEq && c.Value == true {
			activeOnly = true
		}
	}

	var all []*domain.User
	for _, user := range m.users {
		if activeOnly && !user.Active {
			continue
		}
		copied := *user
		all = append(all, &copied)
	}
	sortByID(all)

	total := int64(len(all))
	start := req.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + req.Size
	if end > len(all) {
		end = len(all)
	}
	return store.NewPage(all[start:end], req, total), nil
}

// SoftDelete implements store.UserStore.SoftDelete
func (m *MockUserStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok || !user.Active {
		return store.ErrUserNotFound
	}
	user.Active = false
	return nil
}

// Delete implements store.UserStore.Delete
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func sortByID(users []*domain.User) {
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID.String() < users[j].ID.String()
	})
}
