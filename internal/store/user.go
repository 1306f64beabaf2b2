package store

import (
	"database/sql"
	"fmt"

	"bottender/internal/model"
)

// UserStore holds chat users and their favorite/inventory associations.
// Favorite and inventory rows are shared across users; a user owns only
// the association, never the row.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.FirstName, &u.LastName, &u.ChatID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, first_name, last_name, chat_id, created_at`

// Create stores a new user under their platform id. Returns ErrDuplicate
// when the id is already registered.
func (s *UserStore) Create(id int64, firstName, lastName string, chatID int64) (*model.User, error) {
	_, err := s.db.Exec(
		`INSERT INTO users (id, first_name, last_name, chat_id) VALUES (?, ?, ?, ?)`,
		id, firstName, lastName, chatID,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the user with this platform id, or (nil, nil) when not
// registered.
func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Delete removes the user and their associations. Shared favorite and
// inventory rows referenced by other users are left untouched.
func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// --- Favorites ---

// AddFavorite associates a drink name with the user, creating the shared
// favorite row if absent. The row's popularity is incremented once per
// successful association; a duplicate association rolls the whole
// operation back and returns ErrAssociationConflict.
func (s *UserStore) AddFavorite(userID int64, drinkName string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO favorites (drink_name, popularity) VALUES (?, 1)
		 ON CONFLICT (drink_name) DO UPDATE SET popularity = popularity + 1`,
		drinkName,
	); err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}

	var favID int64
	if err := tx.QueryRow(`SELECT id FROM favorites WHERE drink_name = ?`, drinkName).Scan(&favID); err != nil {
		return fmt.Errorf("get favorite id: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO user_favorites (user_id, favorite_id) VALUES (?, ?)`, userID, favID)
	if isUniqueViolation(err) {
		return ErrAssociationConflict
	}
	if err != nil {
		return fmt.Errorf("associate favorite: %w", err)
	}

	return tx.Commit()
}

// RemoveFavorite drops the user's association with a favorite drink.
// Returns ErrNotFound when the drink is not in the user's list; the
// shared favorite row is never deleted.
func (s *UserStore) RemoveFavorite(userID int64, drinkName string) error {
	result, err := s.db.Exec(
		`DELETE FROM user_favorites
		 WHERE user_id = ? AND favorite_id = (SELECT id FROM favorites WHERE drink_name = ?)`,
		userID, drinkName,
	)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFavorites returns the user's favorite drinks, ordered by name.
func (s *UserStore) ListFavorites(userID int64) ([]model.Favorite, error) {
	rows, err := s.db.Query(
		`SELECT f.id, f.drink_name, f.popularity
		 FROM favorites f
		 JOIN user_favorites uf ON uf.favorite_id = f.id
		 WHERE uf.user_id = ?
		 ORDER BY f.drink_name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favs []model.Favorite
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.ID, &f.DrinkName, &f.Popularity); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

// GetFavorite returns the shared favorite row for a drink name, or
// (nil, nil) when no user has ever favorited it.
func (s *UserStore) GetFavorite(drinkName string) (*model.Favorite, error) {
	var f model.Favorite
	err := s.db.QueryRow(`SELECT id, drink_name, popularity FROM favorites WHERE drink_name = ?`, drinkName).
		Scan(&f.ID, &f.DrinkName, &f.Popularity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &f, nil
}

// --- Inventory ---

// AddInventory associates an item name with the user, creating the
// shared row if absent. A duplicate association rolls back and returns
// ErrAssociationConflict.
func (s *UserStore) AddInventory(userID int64, itemName string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO inventory_items (name) VALUES (?)`, itemName); err != nil {
		return fmt.Errorf("upsert inventory item: %w", err)
	}

	var itemID int64
	if err := tx.QueryRow(`SELECT id FROM inventory_items WHERE name = ?`, itemName).Scan(&itemID); err != nil {
		return fmt.Errorf("get inventory item id: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO user_inventory (user_id, item_id) VALUES (?, ?)`, userID, itemID)
	if isUniqueViolation(err) {
		return ErrAssociationConflict
	}
	if err != nil {
		return fmt.Errorf("associate inventory item: %w", err)
	}

	return tx.Commit()
}

// RemoveInventory drops the user's association with an inventory item.
// Returns ErrNotFound when the item is not in the user's inventory.
func (s *UserStore) RemoveInventory(userID int64, itemName string) error {
	result, err := s.db.Exec(
		`DELETE FROM user_inventory
		 WHERE user_id = ? AND item_id = (SELECT id FROM inventory_items WHERE name = ?)`,
		userID, itemName,
	)
	if err != nil {
		return fmt.Errorf("remove inventory item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListInventory returns the user's inventory items, ordered by name.
func (s *UserStore) ListInventory(userID int64) ([]model.InventoryItem, error) {
	rows, err := s.db.Query(
		`SELECT it.id, it.name
		 FROM inventory_items it
		 JOIN user_inventory ui ON ui.item_id = it.id
		 WHERE ui.user_id = ?
		 ORDER BY it.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer rows.Close()

	var items []model.InventoryItem
	for rows.Next() {
		var it model.InventoryItem
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
