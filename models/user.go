package models

import "github.com/uptrace/bun"

// User is a portal user with bcrypt-hashed password. Role gates the
// result-entry and phase-processing operations.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int    `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,notnull,unique" json:"username"`
	Password string `bun:"password,notnull" json:"-"`
	Role     string `bun:"role,notnull,default:'viewer'" json:"role"`
}

// User roles.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)
