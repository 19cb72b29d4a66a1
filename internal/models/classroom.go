package models

import (
	"time"

	"github.com/lib/pq"
)

// Classroom represents a bookable room. Rooms are treated as a fungible pool
// by the generator; equipment tags are carried for presentation only.
type Classroom struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Capacity  int            `db:"capacity" json:"capacity"`
	Equipment pq.StringArray `db:"equipment" json:"equipment"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
