package cart

import "time"

// Cart is keyed by its owner: a user has at most one cart at a time.
type Cart struct {
	UserID    string    `json:"user_id" db:"user_id"`
	IsPaid    bool      `json:"is_paid" db:"is_paid"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []Item `json:"items" db:"-"`
}

type Item struct {
	UserID     string    `json:"-" db:"user_id"`
	PropertyID string    `json:"property_id" db:"property_id"`
	Title      string    `json:"title" db:"title"`
	Price      float64   `json:"price" db:"price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
