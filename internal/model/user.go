package model

import "time"

// User is a chat platform user. ID is the platform user id, assigned by
// the transport and immutable once stored.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	ChatID    int64     `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Favorite is a shared drink-name row referenced by any number of users.
// Popularity counts add events across all users.
type Favorite struct {
	ID         int64  `json:"id"`
	DrinkName  string `json:"drink_name"`
	Popularity int64  `json:"popularity"`
}

// InventoryItem is a shared ingredient-name row, presence only. No
// quantity is tracked.
type InventoryItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
