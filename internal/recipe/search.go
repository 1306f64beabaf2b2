package recipe

import (
	"bottender/internal/model"
	"bottender/internal/store"
)

// maxSearchTerms caps how many drink names one search may carry. Terms
// beyond the cap are ignored; shorter lists are padded with a sentinel
// that cannot match any stored name, so the combined predicate sent to
// the store always has the same shape.
const maxSearchTerms = 4

const noMatchSentinel = "\x00N/A\x00"

// Search composes catalog lookups into the chat-facing query operations.
type Search struct {
	catalog *store.CatalogStore
}

func NewSearch(catalog *store.CatalogStore) *Search {
	return &Search{catalog: catalog}
}

// ByNameContains returns all drinks whose name contains any of up to
// four search terms. Empty input returns no results, never an error.
func (s *Search) ByNameContains(terms []string) ([]model.Drink, error) {
	padded := make([]string, 0, maxSearchTerms)
	for _, t := range terms {
		if t == "" {
			continue
		}
		padded = append(padded, t)
		if len(padded) == maxSearchTerms {
			break
		}
	}
	if len(padded) == 0 {
		return nil, nil
	}
	for len(padded) < maxSearchTerms {
		padded = append(padded, noMatchSentinel)
	}
	return s.catalog.FindDrinksByAnyNameContains(padded)
}

// ByNameExact returns the drink with exactly this name, or nil.
func (s *Search) ByNameExact(name string) (*model.Drink, error) {
	return s.catalog.GetDrinkByName(name)
}

// ByIngredient returns the names of all drinks that use an ingredient
// whose name contains the term.
func (s *Search) ByIngredient(ingredientName string) ([]string, error) {
	return s.catalog.DrinkNamesByIngredientContains(ingredientName)
}
