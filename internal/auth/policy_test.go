// AngelaMos | 2026
// policy_test.go

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/templates/user-service/internal/core"
)

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name        string
		permissions []string
		allowed     []string
		wantErr     bool
	}{
		{"admin passes admin only", []string{PermissionAdmin}, AdminOnly, false},
		{"user fails admin only", []string{PermissionUser}, AdminOnly, true},
		{"user passes admin or user", []string{PermissionUser}, AdminOrUser, false},
		{"guest fails admin or user", []string{PermissionGuest}, AdminOrUser, true},
		{"any match is enough", []string{PermissionGuest, PermissionAdmin}, AdminOnly, false},
		{"no permissions", nil, AdminOrUser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Principal{ID: 1, Username: "someone", Permissions: tt.permissions}
			err := RequireRole(p, tt.allowed...)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrForbidden)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRequireRoleNilPrincipal(t *testing.T) {
	assert.ErrorIs(t, RequireRole(nil, AdminOnly...), core.ErrForbidden)
}
