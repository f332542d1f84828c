package models

import "github.com/uptrace/bun"

type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID    int64   `bun:"id,pk,autoincrement" json:"id"`
	Name  string  `bun:"name,notnull" json:"name"`
	Price float64 `bun:"price,notnull" json:"price"`
}

// ServiceOrder captures the price at order time; the subtotal is never
// re-derived from the catalog later.
type ServiceOrder struct {
	bun.BaseModel `bun:"table:service_orders"`

	ID        int64   `bun:"id,pk,autoincrement" json:"id"`
	BookingID int64   `bun:"booking_id,notnull" json:"booking_id"`
	ServiceID int64   `bun:"service_id,notnull" json:"service_id"`
	Quantity  int     `bun:"quantity,notnull" json:"quantity"`
	Subtotal  float64 `bun:"subtotal,notnull" json:"subtotal"`
}

// ServiceRecipe ties a catalog service to the stock item it consumes.
// Units is the stock drawn per ordered unit of the service.
type ServiceRecipe struct {
	bun.BaseModel `bun:"table:service_recipes"`

	ServiceID int64 `bun:"service_id,pk" json:"service_id"`
	ItemID    int64 `bun:"item_id,notnull" json:"item_id"`
	Units     int   `bun:"units,notnull" json:"units"`
}

type ServiceOrderRequest struct {
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}
