// Package bot is the conversation controller: it routes chat commands
// to the catalog, user store, search and makeability engine, and keeps
// the per-chat conversation state (multi-step add/remove flows). It
// knows nothing about the wire transport; the server hands it incoming
// messages and sends back whatever replies it returns.
package bot

import (
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"bottender/internal/importer"
	"bottender/internal/makeable"
	"bottender/internal/recipe"
	"bottender/internal/store"
)

// Incoming is one chat message from the transport.
type Incoming struct {
	UserID    int64
	ChatID    int64
	FirstName string
	LastName  string
	Text      string
}

// Conversation states for multi-step flows.
type state int

const (
	stateIdle state = iota
	statePermission
	stateRecipe
	stateAddFav
	stateRemFav
	stateInvMenu
	stateAddInv
	stateRemInv
)

type session struct {
	state state
	admin bool
}

// Config holds bot behavior settings.
type Config struct {
	// AdminPassword unlocks /import when matched via /admin. Empty
	// disables admin commands entirely.
	AdminPassword string

	// CatalogPath is the CSV file re-read by /import.
	CatalogPath string
}

type Bot struct {
	catalog     *store.CatalogStore
	users       *store.UserStore
	search      *recipe.Search
	resolver    *makeable.Resolver
	importer    *importer.Importer
	adminHash   []byte
	catalogPath string
	logger      *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*session
}

func New(catalog *store.CatalogStore, users *store.UserStore, search *recipe.Search, resolver *makeable.Resolver, imp *importer.Importer, cfg Config, logger *slog.Logger) *Bot {
	b := &Bot{
		catalog:     catalog,
		users:       users,
		search:      search,
		resolver:    resolver,
		importer:    imp,
		catalogPath: cfg.CatalogPath,
		logger:      logger,
		sessions:    make(map[int64]*session),
	}
	if cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("hash admin password", "error", err)
		} else {
			b.adminHash = hash
		}
	}
	return b
}

// Handle processes one incoming message and returns the replies to send
// back to the same chat, in order. It never returns an error: store
// failures are logged and reported to the user as a generic apology.
func (b *Bot) Handle(in Incoming) []string {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil
	}

	sess := b.session(in.ChatID)

	if strings.EqualFold(text, "exit") {
		b.setState(in.ChatID, stateIdle)
		return []string{"Bye!"}
	}

	if strings.HasPrefix(text, "/") {
		return b.handleCommand(in, sess, text)
	}

	return b.continueConversation(in, sess, text)
}

func (b *Bot) handleCommand(in Incoming, sess *session, text string) []string {
	fields := strings.Fields(text)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	// A fresh command abandons any flow in progress.
	b.setState(in.ChatID, stateIdle)

	switch cmd {
	case "/start":
		return b.cmdStart(in)
	case "/help":
		return b.cmdHelp()
	case "/drinks":
		return b.cmdDrinks(in, args)
	case "/ing":
		return b.cmdIngredient(args)
	case "/fav":
		return b.cmdFavorites(in)
	case "/addfav":
		return b.cmdAddFavorite(in)
	case "/remfav":
		return b.cmdRemoveFavorite(in)
	case "/inv":
		return b.cmdInventoryMenu(in)
	case "/addinv":
		return b.cmdAddInventory(in)
	case "/reminv":
		return b.cmdRemoveInventory(in)
	case "/listinv":
		return b.cmdListInventory(in)
	case "/makeable":
		return b.cmdMakeable(in)
	case "/admin":
		return b.cmdAdmin(in, sess, args)
	case "/import":
		return b.cmdImport(sess)
	default:
		return []string{"I don't know that command. Type /help to see what I can do."}
	}
}

func (b *Bot) continueConversation(in Incoming, sess *session, text string) []string {
	switch sess.state {
	case statePermission:
		return b.setupPermission(in, text)
	case stateRecipe:
		b.setState(in.ChatID, stateIdle)
		return b.findRecipes(strings.Fields(text))
	case stateAddFav:
		return b.addFavoriteDrink(in, text)
	case stateRemFav:
		return b.removeFavoriteDrink(in, text)
	case stateInvMenu:
		return b.inventoryMenuChoice(in, text)
	case stateAddInv:
		return b.addInventoryItem(in, text)
	case stateRemInv:
		return b.removeInventoryItem(in, text)
	default:
		return []string{"I wasn't expecting that. Type /help to see a list of my commands."}
	}
}

// --- session bookkeeping ---

func (b *Bot) session(chatID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	return s
}

func (b *Bot) setState(chatID int64, st state) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[chatID]
	if !ok {
		s = &session{}
		b.sessions[chatID] = s
	}
	s.state = st
}
