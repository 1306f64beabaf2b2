package store

import (
	"errors"
	"testing"

	"bottender/internal/database"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateGetDelete(t *testing.T) {
	us := setupUserTestDB(t)

	user, err := us.Create(100, "Alice", "Smith", 200)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID != 100 {
		t.Errorf("id = %d, want 100", user.ID)
	}
	if user.FirstName != "Alice" {
		t.Errorf("first name = %q, want %q", user.FirstName, "Alice")
	}
	if user.ChatID != 200 {
		t.Errorf("chat id = %d, want 200", user.ChatID)
	}

	// Re-registering the same platform id is a duplicate.
	if _, err := us.Create(100, "Alice", "Smith", 200); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate create error = %v, want ErrDuplicate", err)
	}

	got, err := us.GetByID(100)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got == nil || got.FirstName != "Alice" {
		t.Errorf("got = %+v, want Alice", got)
	}

	// Unknown id is a nil miss.
	missing, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}

	if err := us.Delete(100); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	got, err = us.GetByID(100)
	if err != nil {
		t.Fatalf("get deleted user: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestFavorites(t *testing.T) {
	us := setupUserTestDB(t)

	alice, err := us.Create(1, "Alice", "", 1)
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := us.Create(2, "Bob", "", 2)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	if err := us.AddFavorite(alice.ID, "Old Fashioned"); err != nil {
		t.Fatalf("add favorite: %v", err)
	}

	fav, err := us.GetFavorite("Old Fashioned")
	if err != nil {
		t.Fatalf("get favorite: %v", err)
	}
	if fav == nil || fav.Popularity != 1 {
		t.Fatalf("favorite = %+v, want popularity 1", fav)
	}

	// A second user shares the row and bumps its popularity.
	if err := us.AddFavorite(bob.ID, "Old Fashioned"); err != nil {
		t.Fatalf("add favorite for bob: %v", err)
	}
	fav, _ = us.GetFavorite("Old Fashioned")
	if fav.Popularity != 2 {
		t.Errorf("popularity after second user = %d, want 2", fav.Popularity)
	}

	// Re-adding rolls back, leaving popularity untouched.
	if err := us.AddFavorite(alice.ID, "Old Fashioned"); !errors.Is(err, ErrAssociationConflict) {
		t.Fatalf("re-add error = %v, want ErrAssociationConflict", err)
	}
	fav, _ = us.GetFavorite("Old Fashioned")
	if fav.Popularity != 2 {
		t.Errorf("popularity after conflicting add = %d, want 2", fav.Popularity)
	}

	if err := us.AddFavorite(alice.ID, "Manhattan"); err != nil {
		t.Fatalf("add second favorite: %v", err)
	}

	favs, err := us.ListFavorites(alice.ID)
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favs) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favs))
	}
	if favs[0].DrinkName != "Manhattan" || favs[1].DrinkName != "Old Fashioned" {
		t.Errorf("favorites = %v, want alphabetical order", favs)
	}

	// Removing drops only this user's association.
	if err := us.RemoveFavorite(alice.ID, "Old Fashioned"); err != nil {
		t.Fatalf("remove favorite: %v", err)
	}
	favs, _ = us.ListFavorites(alice.ID)
	if len(favs) != 1 {
		t.Errorf("alice favorites after remove = %d, want 1", len(favs))
	}
	bobFavs, _ := us.ListFavorites(bob.ID)
	if len(bobFavs) != 1 {
		t.Errorf("bob favorites = %d, want 1 (shared row kept)", len(bobFavs))
	}

	// Removing an absent favorite reports not found.
	if err := us.RemoveFavorite(alice.ID, "Old Fashioned"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove absent error = %v, want ErrNotFound", err)
	}
	if err := us.RemoveFavorite(alice.ID, "Negroni"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove unknown error = %v, want ErrNotFound", err)
	}
}

func TestInventory(t *testing.T) {
	us := setupUserTestDB(t)

	alice, err := us.Create(1, "Alice", "", 1)
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := us.Create(2, "Bob", "", 2)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}

	for _, item := range []string{"rye whiskey", "angostura bitters"} {
		if err := us.AddInventory(alice.ID, item); err != nil {
			t.Fatalf("add inventory %q: %v", item, err)
		}
	}
	// Shared item row for a second user.
	if err := us.AddInventory(bob.ID, "rye whiskey"); err != nil {
		t.Fatalf("add inventory for bob: %v", err)
	}

	// Duplicate association is reported.
	if err := us.AddInventory(alice.ID, "rye whiskey"); !errors.Is(err, ErrAssociationConflict) {
		t.Errorf("re-add error = %v, want ErrAssociationConflict", err)
	}

	items, err := us.ListInventory(alice.ID)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Name != "angostura bitters" || items[1].Name != "rye whiskey" {
		t.Errorf("items = %v, want alphabetical order", items)
	}

	if err := us.RemoveInventory(alice.ID, "rye whiskey"); err != nil {
		t.Fatalf("remove inventory: %v", err)
	}
	items, _ = us.ListInventory(alice.ID)
	if len(items) != 1 {
		t.Errorf("alice inventory after remove = %d, want 1", len(items))
	}
	bobItems, _ := us.ListInventory(bob.ID)
	if len(bobItems) != 1 {
		t.Errorf("bob inventory = %d, want 1 (shared row kept)", len(bobItems))
	}

	if err := us.RemoveInventory(alice.ID, "vermouth"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove absent error = %v, want ErrNotFound", err)
	}

	// Empty inventory lists cleanly.
	empty, err := us.ListInventory(999)
	if err != nil {
		t.Fatalf("list empty inventory: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty inventory, got %d items", len(empty))
	}
}
