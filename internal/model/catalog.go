package model

import "time"

// Drink is a single catalog recipe. Name keeps the case it was imported
// with; all lookups compare case-insensitively.
type Drink struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Page      string    `json:"page"`
	GarnishID *int64    `json:"garnish_id"`
	CreatedAt time.Time `json:"created_at"`

	// Loaded by the store on single-drink lookups.
	Ingredients []Ingredient `json:"ingredients,omitempty"`
	Garnish     *Garnish     `json:"garnish,omitempty"`
}

// Ingredient is one distinct (name, quantity, measurement) combination
// observed in the catalog. Popularity counts recipe-line references.
type Ingredient struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Measurement string  `json:"measurement"`
	Popularity  int64   `json:"popularity"`
	SimpleID    *int64  `json:"simple_id"`

	// Category is the linked simple-category name, empty when unlinked.
	Category string `json:"category,omitempty"`
}

// SimpleCategory collapses brand and variant ingredient names into one
// canonical uppercase name ("BOURBON"). Population counts how many
// ingredient references were mapped to it.
type SimpleCategory struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Population int64  `json:"population"`
}

type Garnish struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
