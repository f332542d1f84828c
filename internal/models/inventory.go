package models

import (
	"time"

	"github.com/uptrace/bun"
)

type InventoryItem struct {
	bun.BaseModel `bun:"table:inventory_items"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Name     string `bun:"name,notnull,unique" json:"name"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`
}

// InventoryUsage is the audit trail of consumption; rows are append-only.
type InventoryUsage struct {
	bun.BaseModel `bun:"table:inventory_usage"`

	ID       int64     `bun:"id,pk,autoincrement" json:"id"`
	ItemID   int64     `bun:"item_id,notnull" json:"item_id"`
	Quantity int       `bun:"quantity,notnull" json:"quantity"`
	UsedOn   time.Time `bun:"used_on,notnull" json:"used_on"`
}

type AddStockRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type ConsumeStockRequest struct {
	Quantity int `json:"quantity"`
}
