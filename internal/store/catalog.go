package store

import (
	"database/sql"
	"fmt"
	"strings"

	"bottender/internal/model"
)

// CatalogStore holds the shared drink/ingredient/garnish/category catalog.
// Reads are lock-free; multi-step mutations run in a transaction.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// the upsert helpers can run standalone or inside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// --- Drink methods ---

func scanDrink(scanner interface{ Scan(...any) error }) (*model.Drink, error) {
	var d model.Drink
	var garnishID sql.NullInt64
	err := scanner.Scan(&d.ID, &d.Name, &d.Page, &garnishID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	if garnishID.Valid {
		d.GarnishID = &garnishID.Int64
	}
	return &d, nil
}

const drinkCols = `id, name, page, garnish_id, created_at`

// GetDrinkByName returns the drink with exactly this name (compare is
// case-insensitive, the stored case is returned) with its ingredient and
// garnish associations loaded. Returns (nil, nil) when absent.
func (s *CatalogStore) GetDrinkByName(name string) (*model.Drink, error) {
	row := s.db.QueryRow(`SELECT `+drinkCols+` FROM drinks WHERE name = ?`, name)
	d, err := scanDrink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get drink: %w", err)
	}
	if err := s.loadDrink(d); err != nil {
		return nil, err
	}
	return d, nil
}

// FirstDrinkLike returns the first drink whose name matches the LIKE
// pattern. A pattern without wildcards behaves as a case-insensitive
// exact lookup. Returns (nil, nil) when nothing matches.
func (s *CatalogStore) FirstDrinkLike(pattern string) (*model.Drink, error) {
	row := s.db.QueryRow(`SELECT `+drinkCols+` FROM drinks WHERE name LIKE ? ORDER BY name ASC LIMIT 1`, pattern)
	d, err := scanDrink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first drink like: %w", err)
	}
	if err := s.loadDrink(d); err != nil {
		return nil, err
	}
	return d, nil
}

// FindDrinksByNameContains returns all drinks whose name contains the
// term, associations loaded, ordered by name.
func (s *CatalogStore) FindDrinksByNameContains(term string) ([]model.Drink, error) {
	return s.FindDrinksByAnyNameContains([]string{term})
}

// FindDrinksByAnyNameContains returns drinks whose name contains any of
// the given terms, as one combined OR predicate. Callers cap and pad the
// term list; an empty list matches nothing.
func (s *CatalogStore) FindDrinksByAnyNameContains(terms []string) ([]model.Drink, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	conds := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, t := range terms {
		conds[i] = `name LIKE '%' || ? || '%'`
		args[i] = t
	}

	query := `SELECT ` + drinkCols + ` FROM drinks WHERE ` + strings.Join(conds, " OR ") + ` ORDER BY name ASC`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find drinks: %w", err)
	}
	defer rows.Close()

	var drinks []model.Drink
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan drink: %w", err)
		}
		drinks = append(drinks, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range drinks {
		if err := s.loadDrink(&drinks[i]); err != nil {
			return nil, err
		}
	}
	return drinks, nil
}

// CreateDrink inserts a drink and its ingredient/garnish associations in
// one transaction. Returns ErrDuplicate when the name is already taken.
func (s *CatalogStore) CreateDrink(name, page string, ingredientIDs []int64, garnishID *int64) (*model.Drink, error) {
	var gID sql.NullInt64
	if garnishID != nil {
		gID = sql.NullInt64{Int64: *garnishID, Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO drinks (name, page, garnish_id) VALUES (?, ?, ?)`,
		name, page, gID,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert drink: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, ingID := range ingredientIDs {
		// OR IGNORE: a repeated ingredient reference within one recipe
		// is an association conflict, recovered as a no-op.
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO drink_ingredients (drink_id, ingredient_id, position) VALUES (?, ?, ?)`,
			id, ingID, i,
		); err != nil {
			return nil, fmt.Errorf("associate ingredient: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit drink: %w", err)
	}
	return s.GetDrinkByName(name)
}

// ImportLine is one parsed recipe line of a catalog row.
type ImportLine struct {
	Name        string
	Quantity    float64
	Measurement string
	Category    string // simple category keyword match, "" when none
}

// ImportDrink persists one catalog row in a single transaction: the
// drink, its ingredient rows (popularity +1 per reference), category
// links and population, and the optional garnish. The drink row is
// inserted first, so a duplicate name returns ErrDuplicate before any
// counter moves; any later failure rolls the counters back with the
// rest of the row.
func (s *CatalogStore) ImportDrink(name, page string, lines []ImportLine, garnishName string) (*model.Drink, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO drinks (name, page) VALUES (?, ?)`, name, page)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert drink: %w", err)
	}
	drinkID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for i, line := range lines {
		ing, err := insertOrGetIngredient(tx, line.Name, line.Quantity, line.Measurement)
		if err != nil {
			return nil, err
		}

		if line.Category != "" && ing.SimpleID == nil {
			cat, err := insertOrGetCategory(tx, line.Category)
			if err != nil {
				return nil, err
			}
			if err := linkIngredientCategory(tx, ing.ID, cat.ID); err != nil {
				return nil, err
			}
		}

		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO drink_ingredients (drink_id, ingredient_id, position) VALUES (?, ?, ?)`,
			drinkID, ing.ID, i,
		); err != nil {
			return nil, fmt.Errorf("associate ingredient: %w", err)
		}
	}

	if garnishName != "" {
		garnish, err := insertOrGetGarnish(tx, garnishName)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(`UPDATE drinks SET garnish_id = ? WHERE id = ?`, garnish.ID, drinkID); err != nil {
			return nil, fmt.Errorf("set garnish: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit drink: %w", err)
	}
	return s.GetDrinkByName(name)
}

// loadDrink fills the drink's ingredient list (with linked category
// names) and garnish.
func (s *CatalogStore) loadDrink(d *model.Drink) error {
	rows, err := s.db.Query(
		`SELECT i.id, i.name, i.quantity, i.measurement, i.popularity, i.simple_id, COALESCE(sc.name, '')
		 FROM ingredients i
		 JOIN drink_ingredients di ON di.ingredient_id = i.id
		 LEFT JOIN simple_categories sc ON sc.id = i.simple_id
		 WHERE di.drink_id = ?
		 ORDER BY di.position ASC`,
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("load drink ingredients: %w", err)
	}
	defer rows.Close()

	d.Ingredients = nil
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return fmt.Errorf("scan ingredient: %w", err)
		}
		d.Ingredients = append(d.Ingredients, *ing)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if d.GarnishID != nil {
		var g model.Garnish
		err := s.db.QueryRow(`SELECT id, name FROM garnishes WHERE id = ?`, *d.GarnishID).Scan(&g.ID, &g.Name)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("load garnish: %w", err)
		}
		if err == nil {
			d.Garnish = &g
		}
	}
	return nil
}

// --- Ingredient methods ---

func scanIngredient(scanner interface{ Scan(...any) error }) (*model.Ingredient, error) {
	var ing model.Ingredient
	var simpleID sql.NullInt64
	err := scanner.Scan(&ing.ID, &ing.Name, &ing.Quantity, &ing.Measurement, &ing.Popularity, &simpleID, &ing.Category)
	if err != nil {
		return nil, err
	}
	if simpleID.Valid {
		ing.SimpleID = &simpleID.Int64
	}
	return &ing, nil
}

const ingredientCols = `i.id, i.name, i.quantity, i.measurement, i.popularity, i.simple_id, COALESCE(sc.name, '')`
const ingredientFrom = ` FROM ingredients i LEFT JOIN simple_categories sc ON sc.id = i.simple_id `

// InsertOrGetIngredient returns the ingredient row for this exact
// (name, quantity, measurement) combination, creating it if absent. The
// popularity counter is incremented exactly once per call, atomically
// with the fetch-or-create decision.
func (s *CatalogStore) InsertOrGetIngredient(name string, quantity float64, measurement string) (*model.Ingredient, error) {
	return insertOrGetIngredient(s.db, name, quantity, measurement)
}

func insertOrGetIngredient(q dbtx, name string, quantity float64, measurement string) (*model.Ingredient, error) {
	_, err := q.Exec(
		`INSERT INTO ingredients (name, quantity, measurement, popularity) VALUES (?, ?, ?, 1)
		 ON CONFLICT (name, quantity, measurement) DO UPDATE SET popularity = popularity + 1`,
		name, quantity, measurement,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert ingredient: %w", err)
	}

	row := q.QueryRow(
		`SELECT `+ingredientCols+ingredientFrom+`WHERE i.name = ? AND i.quantity = ? AND i.measurement = ?`,
		name, quantity, measurement,
	)
	ing, err := scanIngredient(row)
	if err != nil {
		return nil, fmt.Errorf("get ingredient: %w", err)
	}
	return ing, nil
}

// LinkIngredientCategory points the ingredient at a simple category.
// Re-linking to the same category is a no-op.
func (s *CatalogStore) LinkIngredientCategory(ingredientID, categoryID int64) error {
	return linkIngredientCategory(s.db, ingredientID, categoryID)
}

func linkIngredientCategory(q dbtx, ingredientID, categoryID int64) error {
	_, err := q.Exec(`UPDATE ingredients SET simple_id = ? WHERE id = ?`, categoryID, ingredientID)
	if err != nil {
		return fmt.Errorf("link ingredient category: %w", err)
	}
	return nil
}

// FindIngredientsByNameContains returns all ingredients whose name
// contains the term, ordered by popularity.
func (s *CatalogStore) FindIngredientsByNameContains(term string) ([]model.Ingredient, error) {
	rows, err := s.db.Query(
		`SELECT `+ingredientCols+ingredientFrom+`WHERE i.name LIKE '%' || ? || '%' ORDER BY i.popularity DESC, i.name ASC`,
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("find ingredients: %w", err)
	}
	defer rows.Close()

	var ings []model.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ings = append(ings, *ing)
	}
	return ings, rows.Err()
}

// FirstIngredientByNameContains returns the most popular ingredient whose
// name contains the term, or (nil, nil) when nothing matches.
func (s *CatalogStore) FirstIngredientByNameContains(term string) (*model.Ingredient, error) {
	row := s.db.QueryRow(
		`SELECT `+ingredientCols+ingredientFrom+`WHERE i.name LIKE '%' || ? || '%' ORDER BY i.popularity DESC, i.id ASC LIMIT 1`,
		term,
	)
	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("first ingredient: %w", err)
	}
	return ing, nil
}

// --- Simple category methods ---

// InsertOrGetCategory returns the simple category with this name,
// creating it if absent. Population is incremented once per call, one
// call per mapped ingredient reference.
func (s *CatalogStore) InsertOrGetCategory(name string) (*model.SimpleCategory, error) {
	return insertOrGetCategory(s.db, name)
}

func insertOrGetCategory(q dbtx, name string) (*model.SimpleCategory, error) {
	_, err := q.Exec(
		`INSERT INTO simple_categories (name, population) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET population = population + 1`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert category: %w", err)
	}

	var c model.SimpleCategory
	err = q.QueryRow(`SELECT id, name, population FROM simple_categories WHERE name = ?`, name).
		Scan(&c.ID, &c.Name, &c.Population)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &c, nil
}

// FindCategoriesByNameContains returns categories whose name contains
// the term.
func (s *CatalogStore) FindCategoriesByNameContains(term string) ([]model.SimpleCategory, error) {
	rows, err := s.db.Query(
		`SELECT id, name, population FROM simple_categories WHERE name LIKE '%' || ? || '%' ORDER BY name ASC`,
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer rows.Close()

	var cats []model.SimpleCategory
	for rows.Next() {
		var c model.SimpleCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Population); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// --- Garnish methods ---

// InsertOrGetGarnish returns the garnish with this name, creating it if
// absent.
func (s *CatalogStore) InsertOrGetGarnish(name string) (*model.Garnish, error) {
	return insertOrGetGarnish(s.db, name)
}

func insertOrGetGarnish(q dbtx, name string) (*model.Garnish, error) {
	if _, err := q.Exec(`INSERT OR IGNORE INTO garnishes (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("upsert garnish: %w", err)
	}

	var g model.Garnish
	err := q.QueryRow(`SELECT id, name FROM garnishes WHERE name = ?`, name).Scan(&g.ID, &g.Name)
	if err != nil {
		return nil, fmt.Errorf("get garnish: %w", err)
	}
	return &g, nil
}

// --- Resolution and reverse-index queries ---

// ResolveForInventory checks free-text inventory input against known
// ingredient names first, then simple-category names. Returns the
// canonical name of the first match, or "" when nothing matches. This is
// the gate before accepting a typed inventory entry; it never errors on
// a plain miss.
func (s *CatalogStore) ResolveForInventory(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	ing, err := s.FirstIngredientByNameContains(input)
	if err != nil {
		return "", err
	}
	if ing != nil {
		return ing.Name, nil
	}

	var name string
	err = s.db.QueryRow(
		`SELECT name FROM simple_categories WHERE name LIKE '%' || ? || '%' ORDER BY population DESC, id ASC LIMIT 1`,
		input,
	).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}
	return name, nil
}

// DrinkNamesUsingSimplified returns the names of all drinks that require
// at least one ingredient whose simplified name equals s. An unlinked
// ingredient's simplified name is its own name uppercased.
func (s *CatalogStore) DrinkNamesUsingSimplified(simplified string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT d.name
		 FROM drinks d
		 JOIN drink_ingredients di ON di.drink_id = d.id
		 JOIN ingredients i ON i.id = di.ingredient_id
		 LEFT JOIN simple_categories sc ON sc.id = i.simple_id
		 WHERE COALESCE(sc.name, UPPER(i.name)) = ?
		 ORDER BY d.name ASC`,
		simplified,
	)
	if err != nil {
		return nil, fmt.Errorf("drinks using simplified: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan drink name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// DrinkNamesByIngredientContains returns the names of all drinks using
// any ingredient whose name contains the term.
func (s *CatalogStore) DrinkNamesByIngredientContains(term string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT d.name
		 FROM drinks d
		 JOIN drink_ingredients di ON di.drink_id = d.id
		 JOIN ingredients i ON i.id = di.ingredient_id
		 WHERE i.name LIKE '%' || ? || '%'
		 ORDER BY d.name ASC`,
		term,
	)
	if err != nil {
		return nil, fmt.Errorf("drinks by ingredient: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan drink name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
