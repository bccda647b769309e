// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/user-service/internal/config"
	"github.com/carterperez-dev/templates/user-service/internal/core"
)

// TokenManager issues and verifies HS256 access tokens. Tokens are signed
// with the current key and verified against the current and previous keys,
// matched by kid.
type TokenManager struct {
	signingKey jwk.Key
	keys       jwk.Set
	config     config.JWTConfig
	now        func() time.Time
}

func NewTokenManager(cfg config.JWTConfig) (*TokenManager, error) {
	signingKey, err := newHMACKey(cfg.KeyID, cfg.Secret)
	if err != nil {
		return nil, err
	}

	keys := jwk.NewSet()
	if addErr := keys.AddKey(signingKey); addErr != nil {
		return nil, fmt.Errorf("add signing key: %w", addErr)
	}

	for _, prev := range cfg.PreviousKeys {
		key, keyErr := newHMACKey(prev.ID, prev.Secret)
		if keyErr != nil {
			return nil, keyErr
		}
		if addErr := keys.AddKey(key); addErr != nil {
			return nil, fmt.Errorf("add previous key %s: %w", prev.ID, addErr)
		}
	}

	return &TokenManager{
		signingKey: signingKey,
		keys:       keys,
		config:     cfg,
		now:        time.Now,
	}, nil
}

func newHMACKey(keyID, secret string) (jwk.Key, error) {
	key, err := jwk.Import([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("import key %s: %w", keyID, err)
	}

	if setErr := key.Set(jwk.KeyIDKey, keyID); setErr != nil {
		return nil, fmt.Errorf("set key id: %w", setErr)
	}
	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return key, nil
}

func (m *TokenManager) TTL() time.Duration {
	return m.config.AccessTokenExpire
}

func (m *TokenManager) KeyID() string {
	return m.config.KeyID
}

// Issue signs an access token for subject, which is the username.
func (m *TokenManager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.config.AccessTokenExpire)

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Issuer(m.config.Issuer).
		Audience([]string{m.config.Audience}).
		Subject(subject).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), m.signingKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return string(signed), expiresAt, nil
}

// Verify returns the subject of a valid token. Any failure yields no
// subject at all.
func (m *TokenManager) Verify(
	_ context.Context,
	tokenString string,
) (string, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKeySet(m.keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.config.Issuer),
		jwt.WithAudience(m.config.Audience),
		jwt.WithClock(jwt.ClockFunc(m.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return "", fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return "", fmt.Errorf(
			"verify token: missing subject: %w",
			core.ErrTokenInvalid,
		)
	}

	return subject, nil
}
