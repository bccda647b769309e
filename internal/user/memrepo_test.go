// AngelaMos | 2026
// memrepo_test.go

package user

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/carterperez-dev/templates/user-service/internal/core"
)

var errInvalidEncoding = errors.New(`invalid byte sequence for encoding "UTF8" (SQLSTATE 22021)`)

// memRepository mimics the Postgres repository closely enough for service
// and handler tests: unique username and email, known permission ids,
// case-insensitive substring filters, id ordering and rejection of text
// Postgres cannot store.
type memRepository struct {
	mu     sync.Mutex
	users  []User
	perms  []Permission
	nextID int64
}

func newMemRepository() *memRepository {
	return &memRepository{
		perms: []Permission{
			{ID: PermissionIDAdmin, Name: "admin"},
			{ID: PermissionIDGuest, Name: "guest"},
			{ID: PermissionIDUser, Name: "user"},
		},
		nextID: 1,
	}
}

func (m *memRepository) permissionName(id int64) (string, bool) {
	for _, p := range m.perms {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}

func (m *memRepository) Create(_ context.Context, u *User, permissionIDs []int64) error {
	for _, field := range []string{u.Username, u.Name, u.Surname, u.Email} {
		if !core.IsStorableText(field) {
			return errInvalidEncoding
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}

	names := make([]string, 0, len(permissionIDs))
	for _, id := range permissionIDs {
		name, ok := m.permissionName(id)
		if !ok {
			return ErrUnknownPermission
		}
		names = append(names, name)
	}

	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.Permissions = names
	m.users = append(m.users, *u)

	return nil
}

func (m *memRepository) find(match func(*User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if match(&m.users[i]) {
			cp := m.users[i]
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (m *memRepository) GetByID(_ context.Context, id int64) (*User, error) {
	return m.find(func(u *User) bool { return u.ID == id })
}

func (m *memRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	return m.find(func(u *User) bool { return u.Username == username })
}

func (m *memRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	return m.find(func(u *User) bool { return u.Email == email })
}

func (m *memRepository) UpdatePassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].PasswordHash = hash
			return nil
		}
	}
	return core.ErrNotFound
}

func containsFold(field, filter string) bool {
	return filter == "" || strings.Contains(strings.ToLower(field), strings.ToLower(filter))
}

func (m *memRepository) List(_ context.Context, params ListUsersParams) ([]User, error) {
	for _, filter := range []string{params.Name, params.Surname, params.Email} {
		if !core.IsStorableText(filter) {
			return nil, errInvalidEncoding
		}
	}
	params.Normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []User{}
	for _, u := range m.users {
		if containsFold(u.Name, params.Name) &&
			containsFold(u.Surname, params.Surname) &&
			containsFold(u.Email, params.Email) {
			matched = append(matched, u)
		}
	}

	if params.Skip >= len(matched) {
		return []User{}, nil
	}
	end := min(params.Skip+params.Limit, len(matched))

	return matched[params.Skip:end], nil
}

func (m *memRepository) ListPermissions(context.Context) ([]Permission, error) {
	return slices.Clone(m.perms), nil
}

func (m *memRepository) CountPermissions(_ context.Context, ids []int64) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := m.permissionName(id); ok {
			n++
		}
	}
	return n, nil
}

func (m *memRepository) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}
