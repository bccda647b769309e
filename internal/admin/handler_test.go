// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/user-service/internal/auth"
	"github.com/carterperez-dev/templates/user-service/internal/middleware"
)

func passthrough(next http.Handler) http.Handler { return next }

func asPrincipal(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithPrincipal(r.Context(), &auth.Principal{
				ID:          1,
				Username:    "admin",
				Permissions: perms,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter(h *Handler, authenticator func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r, authenticator, middleware.RequireAdmin)
	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestCountersAdminOnly(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Counters: func() (map[string]float64, error) {
			return map[string]float64{"/token": 3, "/list_users/": 1}, nil
		},
	})

	rec := get(newRouter(h, asPrincipal(auth.PermissionAdmin)), "/counters")
	require.Equal(t, http.StatusOK, rec.Code)

	var counts map[string]float64
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&counts))
	assert.Equal(t, float64(3), counts["/token"])

	rec = get(newRouter(h, asPrincipal(auth.PermissionUser)), "/counters")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = get(newRouter(h, passthrough), "/counters")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCountersError(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Counters: func() (map[string]float64, error) {
			return nil, errors.New("gather failed")
		},
	})

	rec := get(newRouter(h, asPrincipal(auth.PermissionAdmin)), "/counters")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSystemStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
		UserCount: func(context.Context) (int, error) { return 7, nil },
	})

	rec := get(newRouter(h, asPrincipal(auth.PermissionAdmin)), "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.True(t, stats.Database.Healthy)
	assert.False(t, stats.Redis.Healthy)
	require.NotNil(t, stats.Users)
	assert.Equal(t, 7, stats.Users.Total)
	assert.NotEmpty(t, stats.Runtime.GoVersion)
	assert.Nil(t, stats.Database.Stats)
}

func TestRuntimeStats(t *testing.T) {
	h := NewHandler(HandlerConfig{})

	rec := get(newRouter(h, asPrincipal(auth.PermissionAdmin)), "/admin/stats/runtime")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats RuntimeStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Positive(t, stats.NumCPU)
}
