package database

import "time"

// Image is one entry of an upload draft.
type Image struct {
	ID          string    `json:"id" db:"id"`
	Preview     string    `json:"preview" db:"preview"` // data URL
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	PriceMinor  int64     `json:"priceMinor" db:"price_minor"`
	Rank        string    `json:"rank" db:"rank"` // LexoRank string to maintain ordering
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
