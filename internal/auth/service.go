// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/user-service/internal/core"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTypeBearer = "bearer"

type UserInfo struct {
	ID           int64
	Username     string
	PasswordHash string
	Permissions  []string
}

// UserProvider is the slice of the credential store that authentication
// needs. It returns core.ErrNotFound for unknown usernames.
type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// PasswordVerifier is implemented by *core.Hasher.
type PasswordVerifier interface {
	VerifyTimingSafe(password string, encodedHash *string) (bool, error)
	NeedsRehash(encodedHash string) bool
	Hash(password string) (string, error)
}

type LoginRecorder interface {
	ObserveLogin(result string)
}

type Service struct {
	tokens       *TokenManager
	userProvider UserProvider
	hasher       PasswordVerifier
	recorder     LoginRecorder
}

func NewService(
	tokens *TokenManager,
	userProvider UserProvider,
	hasher PasswordVerifier,
	recorder LoginRecorder,
) *Service {
	return &Service{
		tokens:       tokens,
		userProvider: userProvider,
		hasher:       hasher,
		recorder:     recorder,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*TokenResponse, error) {
	ctx, span := core.StartSpan(ctx, "auth.Login",
		attribute.String("user.username", req.Username))
	defer span.End()

	if !core.IsStorableText(req.Username) {
		//nolint:errcheck // same work as an unknown username
		_, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
		s.observe(core.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	user, err := s.userProvider.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _ = s.hasher.VerifyTimingSafe(req.Password, nil)
			s.observe(core.LoginFailure)
			return nil, ErrInvalidCredentials
		}
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := s.hasher.VerifyTimingSafe(req.Password, &user.PasswordHash)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		s.observe(core.LoginFailure)
		return nil, ErrInvalidCredentials
	}

	s.rehashIfNeeded(ctx, user, req.Password)

	token, _, err := s.tokens.Issue(user.Username)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.observe(core.LoginSuccess)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
	}, nil
}

// ResolveCurrentUser verifies the token and loads the user it names. A
// valid token for a user that no longer exists is rejected.
func (s *Service) ResolveCurrentUser(
	ctx context.Context,
	token string,
) (*Principal, error) {
	username, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.userProvider.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve user %q: %w", username, core.ErrUnauthorized)
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return &Principal{
		ID:          user.ID,
		Username:    user.Username,
		Permissions: user.Permissions,
	}, nil
}

func (s *Service) rehashIfNeeded(
	ctx context.Context,
	user *UserInfo,
	password string,
) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}

	newHash, err := s.hasher.Hash(password)
	if err != nil {
		slog.WarnContext(ctx, "rehash password", "user_id", user.ID, "error", err)
		return
	}

	if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
		slog.WarnContext(ctx, "store rehashed password", "user_id", user.ID, "error", err)
	}
}

func (s *Service) observe(result string) {
	if s.recorder != nil {
		s.recorder.ObserveLogin(result)
	}
}
