package models

import (
	"time"
)

// Location is the place a case is filed against. One location can accumulate
// many cases over time; locations are immutable once created.
type Location struct {
	CreatedAt  time.Time `json:"created_at"`
	Address    string    `json:"address"`
	Community  string    `json:"community"`
	UnitNumber string    `json:"unit_number"`
	Longitude  float64   `json:"longitude"`
	Latitude   float64   `json:"latitude"`
	ID         int64     `json:"id"`
}
