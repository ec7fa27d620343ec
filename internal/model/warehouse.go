package model

import "time"

// Warehouse is a named storage location row in the `warehouses` table.
type Warehouse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
