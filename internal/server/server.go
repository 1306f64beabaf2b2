// Package server wires the stores, search, makeability engine, importer
// and bot controller together and exposes them over HTTP: a websocket
// chat endpoint plus a couple of operational routes.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bottender/internal/backup"
	"bottender/internal/bot"
	"bottender/internal/importer"
	"bottender/internal/makeable"
	"bottender/internal/middleware"
	"bottender/internal/recipe"
	"bottender/internal/store"
	ws "bottender/internal/websocket"
)

// Config carries the settings the server needs beyond its dependencies.
type Config struct {
	AdminPassword string
	CatalogPath   string
}

type Server struct {
	db        *sql.DB
	hub       *ws.Hub
	catalog   *store.CatalogStore
	users     *store.UserStore
	importer  *importer.Importer
	bot       *bot.Bot
	backupMgr *backup.Manager
	limiter   *middleware.RateLimiter
	logger    *slog.Logger
}

func New(db *sql.DB, cfg Config, backupMgr *backup.Manager, logger *slog.Logger) *Server {
	catalog := store.NewCatalogStore(db)
	users := store.NewUserStore(db)

	search := recipe.NewSearch(catalog)
	resolver := makeable.NewResolver(catalog, users, logger.With("component", "makeable"))
	imp := importer.New(catalog, logger.With("component", "importer"))

	b := bot.New(catalog, users, search, resolver, imp, bot.Config{
		AdminPassword: cfg.AdminPassword,
		CatalogPath:   cfg.CatalogPath,
	}, logger.With("component", "bot"))

	return &Server{
		db:        db,
		hub:       ws.NewHub(logger.With("component", "websocket")),
		catalog:   catalog,
		users:     users,
		importer:  imp,
		bot:       b,
		backupMgr: backupMgr,
		limiter:   middleware.NewRateLimiter(),
		logger:    logger,
	}
}

// Importer returns the catalog importer for startup loading.
func (s *Server) Importer() *importer.Importer {
	return s.importer
}

// Hub returns the websocket hub, used for shutdown notices.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/backup/status", s.backupStatusHandler)

	chat := ws.HandleChat(s.hub, func(in ws.Inbound) []string {
		return s.bot.Handle(bot.Incoming{
			UserID:    in.UserID,
			ChatID:    in.ChatID,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Text:      in.Text,
		})
	}, s.logger.With("component", "websocket"))

	// Cap connection attempts per IP so a misbehaving client can't churn
	// through websocket handshakes.
	wsLimit := middleware.RateLimit(s.limiter, middleware.RealIP, 10, time.Minute)
	mux.Handle("GET /ws", wsLimit(chat))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) backupStatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.backupMgr.Status())
}
