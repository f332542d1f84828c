package models

import "github.com/uptrace/bun"

type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID    int64  `bun:"id,pk,autoincrement" json:"id"`
	Name  string `bun:"name,notnull" json:"name"`
	Phone string `bun:"phone" json:"phone"`
	Email string `bun:"email" json:"email"`
}
