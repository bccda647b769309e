// AngelaMos | 2026
// handler_test.go

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenRouter(t *testing.T) (http.Handler, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t)
	f.addUser(t, 1, "JackDoe", PermissionAdmin)

	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, nil)
	return r, f
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTokenEndpointForm(t *testing.T) {
	h, _ := newTokenRouter(t)

	rec := postForm(h, url.Values{"username": {"JackDoe"}, "password": {testPassword}})
	require.Equal(t, http.StatusOK, rec.Code)

	var body TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
}

func TestTokenEndpointJSON(t *testing.T) {
	h, _ := newTokenRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/token",
		strings.NewReader(`{"username":"JackDoe","password":"G*qE/6r$"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenEndpointWrongPassword(t *testing.T) {
	h, _ := newTokenRouter(t)

	rec := postForm(h, url.Values{"username": {"JackDoe"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	assert.Contains(t, rec.Body.String(), "incorrect username or password")
}

func TestTokenEndpointBadCredentialShapesAreUnauthorized(t *testing.T) {
	h, _ := newTokenRouter(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"long unknown username", strings.Repeat("x", 200), testPassword},
		{"invalid utf8 username", "Jack\xffDoe", testPassword},
		{"nul in username", "Jack\x00Doe", testPassword},
		{"password over bcrypt limit", "JackDoe", "Aa1!" + strings.Repeat("x", 76)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postForm(h, url.Values{"username": {tt.username}, "password": {tt.password}})
			assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
		})
	}
}

func TestTokenEndpointMissingFields(t *testing.T) {
	h, _ := newTokenRouter(t)

	rec := postForm(h, url.Values{"username": {"JackDoe"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTokenEndpointUsesLimiter(t *testing.T) {
	f := newServiceFixture(t)

	blocked := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}

	r := chi.NewRouter()
	NewHandler(f.svc).RegisterRoutes(r, blocked)

	rec := postForm(r, url.Values{"username": {"JackDoe"}, "password": {testPassword}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
