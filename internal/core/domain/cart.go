package domain

import "time"

// CartEntry copies the menu item fields at the time it was added. FoodID
// is not checked against the catalog.
type CartEntry struct {
	ID       string    `json:"_id"`
	Email    string    `json:"email"`
	FoodID   string    `json:"food_id"`
	Name     string    `json:"name"`
	Maker    string    `json:"maker"`
	Image    string    `json:"image"`
	Category string    `json:"category"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}
