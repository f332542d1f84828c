package models

import "github.com/uptrace/bun"

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleReceptionist Role = "receptionist"
	RoleAccountant   Role = "accountant"
	RoleStaff        Role = "staff"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,notnull,unique" json:"username"`
	Role     Role   `bun:"role,notnull" json:"role"`
}

// Session is the authenticated identity threaded explicitly into every
// policy-gated call. A nil *Session is an unauthenticated caller.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
