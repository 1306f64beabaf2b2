package bot

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bottender/internal/model"
	"bottender/internal/recipe"
	"bottender/internal/store"
)

const sorryReply = "Sorry, something went wrong on my end. Please try again."

// --- registration ---

func (b *Bot) cmdStart(in Incoming) []string {
	greeting := fmt.Sprintf("Hello %s, let's get started\n"+
		"You can type the command '/help' at any time to see a list of my commands.", in.FirstName)

	user, err := b.users.GetByID(in.UserID)
	if err != nil {
		b.logger.Error("look up user", "user_id", in.UserID, "error", err)
		return []string{sorryReply}
	}
	if user != nil {
		b.logger.Debug("user already registered", "user_id", in.UserID)
		return []string{greeting}
	}

	b.setState(in.ChatID, statePermission)
	return []string{
		greeting,
		"Now I'm going to ask for permission to track your data (Username, User ID).\n" +
			"This data will be used to keep track of your inventory and a list of your favorite drinks, " +
			"and it will be required to use some of my features.\n" +
			"Please type 'Yes' to give permission or 'No' to refuse",
	}
}

func (b *Bot) setupPermission(in Incoming, text string) []string {
	switch {
	case strings.Contains(strings.ToLower(text), "yes"):
		b.setState(in.ChatID, stateIdle)
		if _, err := b.users.Create(in.UserID, in.FirstName, in.LastName, in.ChatID); err != nil {
			if !errors.Is(err, store.ErrDuplicate) {
				b.logger.Error("create user", "user_id", in.UserID, "error", err)
				return []string{sorryReply}
			}
			// Raced by another message from the same user: already done.
		}
		b.logger.Info("registered user", "user_id", in.UserID, "first_name", in.FirstName)
		return []string{"Thanks! I will now begin storing your data. This will allow you to use the following commands:\n" +
			"/inv to fill in your inventory, /fav to get the recipes for your favorite drinks, and " +
			"/makeable to see a list of drinks that you can make with your current inventory"}
	case strings.Contains(strings.ToLower(text), "no"):
		b.setState(in.ChatID, stateIdle)
		return []string{"You have refused tracking. This will limit the commands that I am capable of using for you. " +
			"If you decide to allow tracking, you can send the /start command and go through this process again."}
	default:
		return []string{"Please respond either Yes or No"}
	}
}

// requireUser returns the registered user, or nil plus the reply to
// send when the command needs registration first.
func (b *Bot) requireUser(in Incoming) (*model.User, []string) {
	user, err := b.users.GetByID(in.UserID)
	if err != nil {
		b.logger.Error("look up user", "user_id", in.UserID, "error", err)
		return nil, []string{sorryReply}
	}
	if user == nil {
		b.logger.Warn("unregistered user attempted gated command", "user_id", in.UserID)
		return nil, []string{"You have not been added to the user database, so this command is currently unavailable.\n" +
			"If you want to use this function, please send the '/start' command and allow tracking your user info."}
	}
	return user, nil
}

// --- help ---

func (b *Bot) cmdHelp() []string {
	return []string{"Here are the available commands:" +
		"\n/drinks - send a drink name and get recipe" +
		"\n/ing - Returns list of drinks that use an ingredient" +
		"\n*/inv - Manage your drink inventory*" +
		"\n*/makeable - Show which drinks you can make with your inventory ingredients*" +
		"\n*/fav - Manage your favorite drinks, and get recipes for those you make most often" +
		"\n\n* Commands with an asterisk are only accessible if you have allowed your user data " +
		"to be tracked. If you want to allow this, send the command '/start' and allow tracking."}
}

// --- recipes ---

func (b *Bot) cmdDrinks(in Incoming, args []string) []string {
	if len(args) > 0 {
		return b.findRecipes(args)
	}
	b.setState(in.ChatID, stateRecipe)
	return []string{`Send up to four drink names (one word each), or send "Exit" to cancel`}
}

func (b *Bot) findRecipes(terms []string) []string {
	drinks, err := b.search.ByNameContains(terms)
	if err != nil {
		b.logger.Error("search drinks", "error", err)
		return []string{sorryReply}
	}
	if len(drinks) == 0 {
		return []string{"Sorry, no recipes found for that name"}
	}

	replies := make([]string, 0, len(drinks))
	for i := range drinks {
		replies = append(replies, recipe.Format(&drinks[i]))
	}
	return replies
}

func (b *Bot) cmdIngredient(args []string) []string {
	ingName := strings.Join(args, " ")
	if ingName == "" {
		return []string{"Send the ingredient with the command, like: /ing rye"}
	}

	names, err := b.search.ByIngredient(ingName)
	if err != nil {
		b.logger.Error("search by ingredient", "ingredient", ingName, "error", err)
		return []string{sorryReply}
	}
	if len(names) == 0 {
		return []string{fmt.Sprintf("No drinks found that use %s", ingName)}
	}
	return []string{
		fmt.Sprintf("Searching for drinks that use %s", ingName),
		strings.Join(names, "\n"),
	}
}

// --- favorites ---

func (b *Bot) cmdFavorites(in Incoming) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		return replies
	}

	favs, err := b.users.ListFavorites(user.ID)
	if err != nil {
		b.logger.Error("list favorites", "user_id", user.ID, "error", err)
		return []string{sorryReply}
	}
	if len(favs) == 0 {
		return []string{"You haven't added any favorites yet. Try typing /addfav to get started"}
	}

	var out []string
	for _, fav := range favs {
		drink, err := b.catalog.FirstDrinkLike(fav.DrinkName)
		if err != nil {
			b.logger.Error("look up favorite drink", "drink", fav.DrinkName, "error", err)
			continue
		}
		if drink == nil {
			continue
		}
		out = append(out, recipe.Format(drink))
	}
	return out
}

func (b *Bot) cmdAddFavorite(in Incoming) []string {
	if _, replies := b.requireUser(in); replies != nil {
		return replies
	}
	b.setState(in.ChatID, stateAddFav)
	return []string{"You have chosen to add a drink to your favorites list. " +
		"Please respond with the drink you want to add or type 'exit' to quit"}
}

func (b *Bot) addFavoriteDrink(in Incoming, text string) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		b.setState(in.ChatID, stateIdle)
		return replies
	}

	drink, err := b.catalog.FirstDrinkLike(text)
	if err != nil {
		b.logger.Error("look up drink", "name", text, "error", err)
		return []string{sorryReply}
	}

	if drink != nil {
		b.setState(in.ChatID, stateIdle)
		err := b.users.AddFavorite(user.ID, drink.Name)
		if errors.Is(err, store.ErrAssociationConflict) {
			b.logger.Debug("favorite already associated", "user_id", user.ID, "drink", drink.Name)
			return []string{fmt.Sprintf("%s is already in your favorites", drink.Name)}
		}
		if err != nil {
			b.logger.Error("add favorite", "user_id", user.ID, "drink", drink.Name, "error", err)
			return []string{sorryReply}
		}
		return []string{fmt.Sprintf("Great! I've added %s to your favorites", drink.Name)}
	}

	// No exact-ish match: offer contains matches as suggestions.
	matches, err := b.catalog.FindDrinksByNameContains(text)
	if err != nil {
		b.logger.Error("suggest drinks", "name", text, "error", err)
		return []string{sorryReply}
	}
	if len(matches) > 0 {
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return []string{fmt.Sprintf("Did you mean to send one of these drinks?:\n%s"+
			"\nIf so, please send the drink name again, or type 'exit' to leave",
			strings.Join(names, "\n"))}
	}

	b.setState(in.ChatID, stateIdle)
	return []string{"Sorry, I was unable to find a drink that matched"}
}

func (b *Bot) cmdRemoveFavorite(in Incoming) []string {
	if _, replies := b.requireUser(in); replies != nil {
		return replies
	}
	b.setState(in.ChatID, stateRemFav)
	return []string{"You have chosen to remove a drink from your favorites list. " +
		"Please respond to this message with the name of the drink you'd like to remove, " +
		"or send 'exit' to stop"}
}

func (b *Bot) removeFavoriteDrink(in Incoming, text string) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		b.setState(in.ChatID, stateIdle)
		return replies
	}

	err := b.users.RemoveFavorite(user.ID, text)
	if errors.Is(err, store.ErrNotFound) {
		return []string{fmt.Sprintf("%s is not in your favorites list. "+
			"Please send another drink name or type 'exit' to stop", recipe.Title(text))}
	}
	if err != nil {
		b.logger.Error("remove favorite", "user_id", user.ID, "drink", text, "error", err)
		return []string{sorryReply}
	}

	b.setState(in.ChatID, stateIdle)
	return []string{fmt.Sprintf("Removed %s from your favorites", recipe.Title(text))}
}

// --- inventory ---

func (b *Bot) cmdInventoryMenu(in Incoming) []string {
	if _, replies := b.requireUser(in); replies != nil {
		return replies
	}
	b.setState(in.ChatID, stateInvMenu)
	return []string{"You've chosen to manage your inventory. Please respond with one of the following options:" +
		"\n'add' - Add items to your inventory" +
		"\n'rem' - Remove items from your inventory" +
		"\n'list' - See a list of items currently in your inventory" +
		"\n'exit' - Exit this prompt"}
}

func (b *Bot) inventoryMenuChoice(in Incoming, text string) []string {
	switch strings.ToLower(text) {
	case "add":
		return b.cmdAddInventory(in)
	case "rem", "remove":
		return b.cmdRemoveInventory(in)
	case "list":
		return b.cmdListInventory(in)
	default:
		return []string{"Please respond with 'add', 'rem', 'list' or 'exit'"}
	}
}

func (b *Bot) cmdAddInventory(in Incoming) []string {
	if _, replies := b.requireUser(in); replies != nil {
		return replies
	}
	b.setState(in.ChatID, stateAddInv)
	return []string{"You've chosen to add to your inventory. Please respond with the item you want to add. " +
		"When you are finished, respond 'exit' to exit."}
}

func (b *Bot) addInventoryItem(in Incoming, text string) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		b.setState(in.ChatID, stateIdle)
		return replies
	}

	canonical, err := b.catalog.ResolveForInventory(text)
	if err != nil {
		b.logger.Error("resolve inventory input", "input", text, "error", err)
		return []string{sorryReply}
	}

	if canonical == "" {
		suggestions := b.similarNames(text)
		if len(suggestions) > 0 {
			return []string{fmt.Sprintf("No ingredient uses that name. Did you mean one of the following?\n%s",
				strings.Join(suggestions, "\n"))}
		}
		return []string{"Sorry, couldn't find any ingredients with similar names. " +
			"Please try again or type 'exit' to leave"}
	}

	err = b.users.AddInventory(user.ID, canonical)
	if errors.Is(err, store.ErrAssociationConflict) {
		b.logger.Debug("inventory item already associated", "user_id", user.ID, "item", canonical)
		return []string{fmt.Sprintf("%s is already in your inventory", recipe.Title(canonical))}
	}
	if err != nil {
		b.logger.Error("add inventory item", "user_id", user.ID, "item", canonical, "error", err)
		return []string{sorryReply}
	}
	return []string{fmt.Sprintf("Added %s to your inventory\n"+
		"Continue sending inventory items to add, or type 'exit' to stop", recipe.Title(canonical))}
}

// similarNames collects ingredient and category names containing the
// input, title-cased for display.
func (b *Bot) similarNames(input string) []string {
	var names []string

	ings, err := b.catalog.FindIngredientsByNameContains(input)
	if err != nil {
		b.logger.Error("suggest ingredients", "input", input, "error", err)
		return nil
	}
	for _, ing := range ings {
		names = append(names, recipe.Title(ing.Name))
	}

	cats, err := b.catalog.FindCategoriesByNameContains(input)
	if err != nil {
		b.logger.Error("suggest categories", "input", input, "error", err)
		return names
	}
	for _, c := range cats {
		names = append(names, recipe.Title(c.Name))
	}
	return names
}

func (b *Bot) cmdRemoveInventory(in Incoming) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		return replies
	}
	b.setState(in.ChatID, stateRemInv)
	return []string{
		b.inventoryListing(user.ID),
		"You've chosen to remove from your inventory. Please respond with the item you want to remove. " +
			"When you are finished, respond 'exit' to exit.",
	}
}

func (b *Bot) removeInventoryItem(in Incoming, text string) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		b.setState(in.ChatID, stateIdle)
		return replies
	}

	err := b.users.RemoveInventory(user.ID, text)
	if errors.Is(err, store.ErrNotFound) {
		b.logger.Warn("inventory item not present", "user_id", user.ID, "item", text)
		return []string{fmt.Sprintf("%s is not in your inventory", recipe.Title(text))}
	}
	if err != nil {
		b.logger.Error("remove inventory item", "user_id", user.ID, "item", text, "error", err)
		return []string{sorryReply}
	}
	return []string{
		fmt.Sprintf("Removing %s from inventory.", recipe.Title(text)),
		fmt.Sprintf("Type another item to remove from your inventory. \n%s", b.inventoryListing(user.ID)),
	}
}

func (b *Bot) cmdListInventory(in Incoming) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		return replies
	}
	b.setState(in.ChatID, stateIdle)
	return []string{b.inventoryListing(user.ID)}
}

func (b *Bot) inventoryListing(userID int64) string {
	items, err := b.users.ListInventory(userID)
	if err != nil {
		b.logger.Error("list inventory", "user_id", userID, "error", err)
		return sorryReply
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = recipe.Title(item.Name)
	}
	return fmt.Sprintf("Here is your current inventory:\n%s", strings.Join(names, "\n"))
}

// --- makeability ---

func (b *Bot) cmdMakeable(in Incoming) []string {
	user, replies := b.requireUser(in)
	if user == nil {
		return replies
	}

	names, err := b.resolver.Makeable(user.ID)
	if err != nil {
		b.logger.Error("compute makeable", "user_id", user.ID, "error", err)
		return []string{sorryReply}
	}

	reply := fmt.Sprintf("With your current inventory you can make %d drinks:\n%s",
		len(names), strings.Join(names, "\n"))
	return []string{reply}
}

// --- admin ---

func (b *Bot) cmdAdmin(in Incoming, sess *session, args []string) []string {
	if b.adminHash == nil {
		return []string{"Admin access is not configured."}
	}
	if len(args) != 1 {
		return []string{"Usage: /admin <password>"}
	}
	if err := bcrypt.CompareHashAndPassword(b.adminHash, []byte(args[0])); err != nil {
		b.logger.Warn("failed admin attempt", "user_id", in.UserID)
		return []string{"That password didn't match."}
	}

	sess.admin = true
	b.logger.Info("admin unlocked", "user_id", in.UserID)
	return []string{"Admin commands unlocked. Send /import to reload the catalog."}
}

func (b *Bot) cmdImport(sess *session) []string {
	if !sess.admin {
		return []string{"This command requires admin access. Send /admin <password> first."}
	}
	if b.catalogPath == "" {
		return []string{"No catalog file is configured."}
	}

	res, err := b.importer.ImportFile(b.catalogPath)
	if err != nil {
		b.logger.Error("catalog import", "path", b.catalogPath, "error", err)
		return []string{sorryReply}
	}
	return []string{fmt.Sprintf("Catalog import finished: %d drinks imported, %d rows skipped", res.Drinks, res.Skipped)}
}
