package domain

import "time"

type User struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	AdminID   string    `json:"admin_id,omitempty"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
}
