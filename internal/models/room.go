package models

import "github.com/uptrace/bun"

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomReserved    RoomStatus = "reserved"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

type Room struct {
	bun.BaseModel `bun:"table:rooms"`

	ID     int64      `bun:"id,pk,autoincrement" json:"id"`
	Number string     `bun:"number,notnull" json:"number"`
	Type   string     `bun:"room_type,notnull" json:"type"`
	Price  float64    `bun:"price,notnull" json:"price"`
	Status RoomStatus `bun:"status,notnull" json:"status"`
}

type MaintenanceStatus string

const (
	MaintenanceOpen   MaintenanceStatus = "open"
	MaintenanceClosed MaintenanceStatus = "closed"
)

// MaintenanceIssue takes a room out of service until housekeeping closes it.
type MaintenanceIssue struct {
	bun.BaseModel `bun:"table:maintenance_issues"`

	ID     int64             `bun:"id,pk,autoincrement" json:"id"`
	RoomID int64             `bun:"room_id,notnull" json:"room_id"`
	Issue  string            `bun:"issue,notnull" json:"issue"`
	Status MaintenanceStatus `bun:"status,notnull" json:"status"`
}

type MaintenanceRequest struct {
	Issue string `json:"issue"`
}
