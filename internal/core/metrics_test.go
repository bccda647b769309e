// AngelaMos | 2026
// metrics_test.go

package core

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteCountsSumsAcrossStatuses(t *testing.T) {
	m := NewMetrics()

	m.RequestStarted()
	m.ObserveRequest(http.MethodGet, "/list_users", http.StatusOK, time.Millisecond)
	m.RequestStarted()
	m.ObserveRequest(http.MethodGet, "/list_users", http.StatusForbidden, time.Millisecond)
	m.RequestStarted()
	m.ObserveRequest(http.MethodPost, "/token", http.StatusUnauthorized, time.Millisecond)

	counts, err := m.RouteCounts()
	require.NoError(t, err)

	assert.Equal(t, 2.0, counts["/list_users"])
	assert.Equal(t, 1.0, counts["/token"])
	assert.NotContains(t, counts, "/create_user")
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	m := NewMetrics()
	m.RequestStarted()
	m.ObserveRequest(http.MethodPost, "/create_user", http.StatusOK, time.Millisecond)
	m.ObserveLogin(LoginFailure)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `http_requests_total{method="POST",route="/create_user",status="200"} 1`)
	assert.Contains(t, string(body), `auth_login_attempts_total{result="failure"} 1`)
}
