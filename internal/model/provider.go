package model

import "time"

// Provider is a supplier contact row in the `providers` table. It carries
// the same contact shape as Client but lives in its own table.
type Provider struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
