// AngelaMos | 2026
// dto.go

package user

import (
	"slices"
	"time"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// Password is bounded in bytes, not runes: bcrypt accepts at most 72.
type CreateUserRequest struct {
	Username    string  `json:"username"    validate:"required,text,min=3,max=50"`
	Name        string  `json:"name"        validate:"required,text,min=1,max=100"`
	Surname     string  `json:"surname"     validate:"required,text,min=1,max=100"`
	Email       string  `json:"email"       validate:"required,text,email,max=255"`
	Permissions []int64 `json:"permissions" validate:"omitempty,dive,gt=0"`
	Password    string  `json:"password"    validate:"required,min=8,max_bytes=72,strong_password"`
}

// PermissionIDs returns the requested ids without duplicates, in the order
// first seen.
func (r CreateUserRequest) PermissionIDs() []int64 {
	ids := make([]int64, 0, len(r.Permissions))
	for _, id := range r.Permissions {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Email       string    `json:"email"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListUsersParams struct {
	Skip    int    `json:"skip"    validate:"gte=0"`
	Limit   int    `json:"limit"   validate:"gte=1,lte=100"`
	Name    string `json:"name"    validate:"text,max=100"`
	Surname string `json:"surname" validate:"text,max=100"`
	Email   string `json:"email"   validate:"text,max=255"`
}

// Normalize caps the page size for callers that bypass validation.
func (p *ListUsersParams) Normalize() {
	if p.Limit > maxListLimit {
		p.Limit = maxListLimit
	}
}

func ToUserResponse(u *User) UserResponse {
	perms := []string(u.Permissions)
	if perms == nil {
		perms = []string{}
	}

	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Surname:     u.Surname,
		Email:       u.Email,
		Permissions: perms,
		CreatedAt:   u.CreatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}
