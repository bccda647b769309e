// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID           int64          `db:"id"`
	Username     string         `db:"username"`
	Name         string         `db:"name"`
	Surname      string         `db:"surname"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	Permissions  pq.StringArray `db:"permissions"`
	CreatedAt    time.Time      `db:"created_at"`
}

type Permission struct {
	ID   int64  `db:"id"   json:"id"`
	Name string `db:"name" json:"name"`
}

const (
	PermissionIDAdmin int64 = 1
	PermissionIDGuest int64 = 2
	PermissionIDUser  int64 = 3
)
