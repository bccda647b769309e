// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/user-service/internal/auth"
	"github.com/carterperez-dev/templates/user-service/internal/core"
)

type Service struct {
	repo   Repository
	hasher core.PasswordHasher
}

func NewService(repo Repository, hasher core.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// GetByUsername satisfies auth.UserProvider.
func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	id int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// CreateUser rejects a taken email or username before hashing, then relies
// on the unique constraints for the race between check and insert.
func (s *Service) CreateUser(
	ctx context.Context,
	req CreateUserRequest,
) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.CreateUser",
		attribute.String("user.username", req.Username))
	defer span.End()

	if err := s.ensureAvailable(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	permissionIDs := req.PermissionIDs()
	if len(permissionIDs) > 0 {
		known, err := s.repo.CountPermissions(ctx, permissionIDs)
		if err != nil {
			core.SetSpanError(ctx, err)
			return nil, err
		}
		if known != len(permissionIDs) {
			return nil, ErrUnknownPermission
		}
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     req.Username,
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: passwordHash,
	}

	if err := s.repo.Create(ctx, user, permissionIDs); err != nil {
		if !errors.Is(err, core.ErrDuplicateKey) && !errors.Is(err, core.ErrInvalidInput) {
			core.SetSpanError(ctx, err)
		}
		return nil, err
	}

	return user, nil
}

func (s *Service) ensureAvailable(ctx context.Context, username, email string) error {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case !errors.Is(err, core.ErrNotFound):
		return err
	}

	_, err = s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUsernameTaken
	case !errors.Is(err, core.ErrNotFound):
		return err
	}

	return nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.GetUser", attribute.Int64("user.id", id))
	defer span.End()

	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, error) {
	ctx, span := core.StartSpan(ctx, "user.ListUsers",
		attribute.Int("list.skip", params.Skip),
		attribute.Int("list.limit", params.Limit))
	defer span.End()

	users, err := s.repo.List(ctx, params)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return users, nil
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

type seedUser struct {
	username, name, surname, email string
	permission                     int64
}

var seedUsers = []seedUser{
	{"John", "John", "Doe", "john.doe@example.com", PermissionIDAdmin},
	{"Jane", "Jane", "Doe", "jane.doe@example.com", PermissionIDUser},
}

// Seed creates the demo accounts when the users table is empty and reports
// how many it created.
func (s *Service) Seed(ctx context.Context, password string) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	created := 0
	for _, su := range seedUsers {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return created, fmt.Errorf("hash seed password: %w", err)
		}

		u := &User{
			Username:     su.username,
			Name:         su.name,
			Surname:      su.surname,
			Email:        su.email,
			PasswordHash: hash,
		}
		if err := s.repo.Create(ctx, u, []int64{su.permission}); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				slog.WarnContext(ctx, "seed user already exists", "username", su.username)
				continue
			}
			return created, fmt.Errorf("seed %s: %w", su.username, err)
		}
		created++
	}

	return created, nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Permissions:  []string(u.Permissions),
	}
}
