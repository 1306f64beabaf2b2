// Package makeable resolves which catalog drinks a user can assemble
// from their inventory. Matching happens on simplified ingredient names
// so a generic inventory entry ("Bourbon") satisfies any recipe calling
// for a specific bottle mapped to the same category.
package makeable

import (
	"log/slog"
	"sort"

	"bottender/internal/ingredient"
	"bottender/internal/model"
	"bottender/internal/store"
)

type Resolver struct {
	catalog *store.CatalogStore
	users   *store.UserStore
	logger  *slog.Logger
}

func NewResolver(catalog *store.CatalogStore, users *store.UserStore, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: catalog, users: users, logger: logger}
}

// Makeable returns the sorted names of every drink whose full simplified
// requirement set is contained in the user's simplified inventory set.
//
// Two phases: first narrow to drinks reachable from at least one owned
// ingredient's category, then verify full containment per candidate.
// Inventory items that resolve to no known ingredient contribute
// nothing and are skipped silently; an empty inventory yields an empty
// result, never an error.
func (r *Resolver) Makeable(userID int64) ([]string, error) {
	items, err := r.users.ListInventory(userID)
	if err != nil {
		return nil, err
	}

	// Phase 0: simplified inventory set S.
	inventory := make(map[string]bool, len(items))
	for _, item := range items {
		ing, err := r.catalog.FirstIngredientByNameContains(item.Name)
		if err != nil {
			return nil, err
		}
		if ing == nil {
			r.logger.Debug("inventory item resolves to no ingredient", "item", item.Name)
			continue
		}
		inventory[ingredient.Simplify(ing.Name, ing.Category)] = true
	}
	if len(inventory) == 0 {
		return nil, nil
	}

	// Phase 1: candidate drinks reachable from any owned category.
	candidates := make(map[string]bool)
	for simplified := range inventory {
		names, err := r.catalog.DrinkNamesUsingSimplified(simplified)
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			candidates[n] = true
		}
	}

	// Phase 2: keep candidates whose requirement set is a subset of S.
	var result []string
	for name := range candidates {
		drink, err := r.catalog.GetDrinkByName(name)
		if err != nil {
			return nil, err
		}
		if drink == nil {
			continue
		}
		if requirementsMet(drink.Ingredients, inventory) {
			result = append(result, drink.Name)
		}
	}

	sort.Strings(result)
	r.logger.Debug("computed makeable drinks", "user_id", userID, "count", len(result))
	return result, nil
}

// requirementsMet reports whether every simplified required ingredient
// is present in the inventory set. A drink with no ingredients is
// vacuously makeable.
func requirementsMet(required []model.Ingredient, inventory map[string]bool) bool {
	for _, ing := range required {
		if !inventory[ingredient.Simplify(ing.Name, ing.Category)] {
			return false
		}
	}
	return true
}
