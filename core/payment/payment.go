package payment

import (
	"math"
	"time"
)

type Payment struct {
	ID        string    `json:"id" db:"payment_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	CartID    string    `json:"cart_id" db:"cart_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Reference string    `json:"reference" db:"reference"`
	Verified  bool      `json:"verified" db:"verified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MinorUnits converts a major-unit total to the gateway's minor units
// (kobo for naira): 350.50 becomes 35050.
func MinorUnits(total float64) int64 {
	return int64(math.Round(total * 100))
}
