// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/user-service/internal/auth"
	"github.com/carterperez-dev/templates/user-service/internal/core"
)

type resolverFunc func(ctx context.Context, token string) (*auth.Principal, error)

func (f resolverFunc) ResolveCurrentUser(ctx context.Context, token string) (*auth.Principal, error) {
	return f(ctx, token)
}

var principals = map[string]*auth.Principal{
	"admin-token": {ID: 1, Username: "JackDoe", Permissions: []string{auth.PermissionAdmin}},
	"user-token":  {ID: 2, Username: "Jane", Permissions: []string{auth.PermissionUser}},
	"guest-token": {ID: 3, Username: "HarryDoe", Permissions: []string{auth.PermissionGuest}},
}

func stubResolver() PrincipalResolver {
	return resolverFunc(func(_ context.Context, token string) (*auth.Principal, error) {
		switch token {
		case "expired-token":
			return nil, core.ErrTokenExpired
		case "deleted-user-token":
			return nil, core.ErrUnauthorized
		case "db-down-token":
			return nil, errors.New("connection refused")
		}
		if p, ok := principals[token]; ok {
			return p, nil
		}
		return nil, core.ErrTokenInvalid
	})
}

func protected(roles ...string) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetPrincipal(r.Context())
		w.Header().Set("X-Principal", p.Username)
		w.WriteHeader(http.StatusOK)
	})
	return Authenticator(stubResolver())(RequireRole(roles...)(ok))
}

func doRequest(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/list_users/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticatorStatuses(t *testing.T) {
	h := protected(auth.AdminOrUser...)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"garbage token", "garbage", http.StatusUnauthorized},
		{"expired token", "expired-token", http.StatusUnauthorized},
		{"unknown user", "deleted-user-token", http.StatusUnauthorized},
		{"store failure", "db-down-token", http.StatusInternalServerError},
		{"guest forbidden", "guest-token", http.StatusForbidden},
		{"user allowed", "user-token", http.StatusOK},
		{"admin allowed", "admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireRoleAdminOnly(t *testing.T) {
	h := protected(auth.AdminOnly...)

	assert.Equal(t, http.StatusForbidden, doRequest(h, "user-token").Code)

	rec := doRequest(h, "admin-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JackDoe", rec.Header().Get("X-Principal"))
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := doRequest(h, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExtractToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":    "abc",
		"bearer abc":    "abc",
		"Bearer  abc ":  "abc",
		"Basic abc":     "",
		"Bearer":        "",
		"":              "",
	}

	for header, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, ExtractToken(req), header)
	}
}
