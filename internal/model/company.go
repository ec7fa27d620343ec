package model

import "time"

// Company is a tenant record in the `companies` table. At most one row may
// have IsPrimary set at any time; promoting a new primary demotes the rest
// inside the same transaction. A company cannot be deleted while accounts
// still reference it.
type Company struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
