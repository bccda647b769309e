// AngelaMos | 2026
// policy.go

package auth

import (
	"fmt"
	"slices"

	"github.com/carterperez-dev/templates/user-service/internal/core"
)

const (
	PermissionAdmin = "admin"
	PermissionGuest = "guest"
	PermissionUser  = "user"
)

var (
	AdminOnly   = []string{PermissionAdmin}
	AdminOrUser = []string{PermissionAdmin, PermissionUser}
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ID          int64
	Username    string
	Permissions []string
}

func (p *Principal) HasAny(allowed ...string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if slices.Contains(allowed, perm) {
			return true
		}
	}
	return false
}

// RequireRole passes when the principal holds at least one of the allowed
// permission names.
func RequireRole(p *Principal, allowed ...string) error {
	if p.HasAny(allowed...) {
		return nil
	}
	return fmt.Errorf("require one of %v: %w", allowed, core.ErrForbidden)
}
